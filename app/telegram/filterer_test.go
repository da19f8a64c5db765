package telegram

import (
	"strings"
	"testing"
)

func TestFilterer_NoFilters(t *testing.T) {
	filterer := NewFilterer()
	messages := []Message{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}

	kept, reasons := filterer.Run(&Channel{Title: "Test"}, messages, &Config{})

	if len(kept) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(kept))
	}
	if len(reasons) != 0 {
		t.Errorf("Expected no filter reasons, got %v", reasons)
	}
}

func TestFilterer_ExcludeAndInclude(t *testing.T) {
	filterer := NewFilterer()
	messages := []Message{
		{ID: 1, Text: "ዋጋ 1500 ብር - new shoes"},
		{ID: 2, Text: "Join our giveaway now!"},
		{ID: 3, Text: "Good morning everyone"},
		{ID: 4, Text: "PRICE 900 birr"},
	}

	config := &Config{
		Filters: []ConfigFilter{
			{Field: "message", Excludes: []string{"giveaway"}},
			{Field: "message", Includes: []string{"ዋጋ", "price"}},
		},
	}

	kept, reasons := filterer.Run(&Channel{Title: "Shop"}, messages, config)

	if len(kept) != 2 || kept[0].ID != 1 || kept[1].ID != 4 {
		t.Errorf("Expected messages 1 and 4 to remain, got %+v", kept)
	}
	if !strings.Contains(reasons[2], "contains 'giveaway'") {
		t.Errorf("Unexpected reason for message 2: %q", reasons[2])
	}
	if !strings.Contains(reasons[3], "does not contain any of") {
		t.Errorf("Unexpected reason for message 3: %q", reasons[3])
	}
}

func TestFilterer_TitleField(t *testing.T) {
	filterer := NewFilterer()
	config := &Config{
		Filters: []ConfigFilter{{Field: "title", Excludes: []string{"archive"}}},
	}

	kept, _ := filterer.Run(&Channel{Title: "Old Archive"}, []Message{{ID: 1, Text: "x"}}, config)
	if len(kept) != 0 {
		t.Errorf("Expected every message filtered by channel title, got %d", len(kept))
	}
}
