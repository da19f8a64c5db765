package telegram

import (
	"fmt"
	"strings"
)

var validFilterFields = map[string]bool{
	"message": true,
	"title":   true,
}

// Filterer drops messages by case-insensitive keyword rules from the channel
// configuration.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run splits messages into kept and filtered, preserving order. The reason is
// returned for each filtered message.
func (f *Filterer) Run(channel *Channel, messages []Message, channelConfig *Config) ([]Message, map[int64]string) {
	if len(channelConfig.Filters) == 0 {
		return messages, nil
	}

	kept := make([]Message, 0, len(messages))
	reasons := make(map[int64]string)
	for _, message := range messages {
		if isFiltered, reason := f.applyFilters(channel, message, channelConfig.Filters); isFiltered {
			reasons[message.ID] = reason
			continue
		}
		kept = append(kept, message)
	}

	return kept, reasons
}

func (f *Filterer) applyFilters(channel *Channel, message Message, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(channel, message, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(channel *Channel, message Message, field string) string {
	switch field {
	case "message":
		return message.Text
	case "title":
		if channel != nil {
			return channel.Title
		}
	}
	return ""
}
