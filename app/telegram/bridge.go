package telegram

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

const channelPlaceholder = "{channel}"

var _ Source = (*BridgeSource)(nil)

// BridgeSource reads a channel through an RSS/Atom bridge such as RSSHub.
// The URL template must contain {channel}; the access key is sent as the
// "key" query parameter.
type BridgeSource struct {
	fetcher
	gofeedParser *gofeed.Parser
	urlTemplate  string
	accessKey    string
}

func NewBridgeSource(httpClient *http.Client, urlTemplate, accessKey, userAgent string) *BridgeSource {
	return &BridgeSource{
		fetcher:      fetcher{httpClient: httpClient, userAgent: userAgent},
		gofeedParser: gofeed.NewParser(),
		urlTemplate:  urlTemplate,
		accessKey:    accessKey,
	}
}

func (s *BridgeSource) Fetch(ctx context.Context, username string, limit int) (*Channel, []Message, error) {
	feedURL, err := s.channelURL(username)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.fetch(ctx, feedURL)
	if err != nil {
		return nil, nil, err
	}

	return s.Parse(username, data, limit)
}

func (s *BridgeSource) channelURL(username string) (string, error) {
	if !strings.Contains(s.urlTemplate, channelPlaceholder) {
		return "", fmt.Errorf("bridge URL template has no %s placeholder", channelPlaceholder)
	}

	u, err := url.Parse(strings.ReplaceAll(s.urlTemplate, channelPlaceholder, url.PathEscape(username)))
	if err != nil {
		return "", fmt.Errorf("invalid bridge URL: %w", err)
	}

	if s.accessKey != "" {
		q := u.Query()
		q.Set("key", s.accessKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Parse converts a bridge feed into channel messages, newest first as the
// bridge lists them.
func (s *BridgeSource) Parse(username string, data []byte, limit int) (*Channel, []Message, error) {
	feed, err := s.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	channel := &Channel{
		Username: username,
		Title:    bridgeTitle(feed.Title, username),
	}

	messages := make([]Message, 0, len(feed.Items))
	for _, item := range feed.Items {
		if limit > 0 && len(messages) >= limit {
			break
		}

		id, ok := postID(item.Link)
		if !ok {
			id, ok = postID(item.GUID)
		}
		if !ok {
			continue
		}

		m := Message{
			ID:       id,
			Text:     fragmentText(item.Description),
			PhotoURL: itemImage(item),
		}
		if m.Text == "" {
			m.Text = fragmentText(item.Content)
		}
		if item.PublishedParsed != nil {
			m.Date = item.PublishedParsed
		}

		messages = append(messages, m)
	}

	return channel, messages, nil
}

// bridgeTitle strips the decoration bridges add, e.g. "Shewa Brand - Telegram Channel".
func bridgeTitle(title, username string) string {
	title = strings.TrimSpace(title)
	for _, suffix := range []string{" - Telegram Channel", " - Telegram"} {
		title = strings.TrimSuffix(title, suffix)
	}
	if title == "" {
		return username
	}
	return title
}

func itemImage(item *gofeed.Item) string {
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}
