package telegram

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const DefaultPreviewURL = "https://t.me/s/"

var backgroundImage = regexp.MustCompile(`background-image:\s*url\(['"]?([^'")]+)['"]?\)`)

var _ Source = (*PreviewSource)(nil)

// PreviewSource reads the public web preview of a channel, one page of
// roughly twenty posts at a time, walking back with ?before=<id>.
type PreviewSource struct {
	fetcher
	baseURL string
}

func NewPreviewSource(httpClient *http.Client, baseURL, userAgent string) *PreviewSource {
	if baseURL == "" {
		baseURL = DefaultPreviewURL
	}
	return &PreviewSource{
		fetcher: fetcher{httpClient: httpClient, userAgent: userAgent},
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
	}
}

func (s *PreviewSource) Fetch(ctx context.Context, username string, limit int) (*Channel, []Message, error) {
	channel := &Channel{Username: username}
	var messages []Message
	var before int64

	for {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		page, err := s.fetchPage(ctx, username, before)
		if err != nil {
			if len(messages) == 0 {
				return nil, nil, err
			}
			return nil, nil, fmt.Errorf("failed after %d messages: %w", len(messages), err)
		}

		if channel.Title == "" {
			channel.Title = page.title
		}

		older := 0
		for _, m := range page.messages {
			if before != 0 && m.ID >= before {
				continue
			}
			messages = append(messages, m)
			older++
			if limit > 0 && len(messages) >= limit {
				break
			}
		}

		slog.Debug("Preview page fetched", "channel", username, "before", before, "messages", older)

		if older == 0 || (limit > 0 && len(messages) >= limit) {
			break
		}
		before = messages[len(messages)-1].ID
		if before <= 1 {
			break
		}
	}

	if channel.Title == "" && len(messages) == 0 {
		return nil, nil, fmt.Errorf("channel %q not found or has no public preview", username)
	}
	if channel.Title == "" {
		channel.Title = username
	}

	return channel, messages, nil
}

type previewPage struct {
	title    string
	messages []Message
}

func (s *PreviewSource) fetchPage(ctx context.Context, username string, before int64) (*previewPage, error) {
	pageURL := s.baseURL + url.PathEscape(username)
	if before > 0 {
		pageURL += "?before=" + strconv.FormatInt(before, 10)
	}

	data, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return parsePreview(data)
}

// parsePreview extracts channel title and posts from a preview page. Posts
// are returned newest first.
func parsePreview(data []byte) (*previewPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse preview HTML: %w", err)
	}

	page := &previewPage{
		title: strings.TrimSpace(doc.Find(".tgme_channel_info_header_title").First().Text()),
	}

	doc.Find(".tgme_widget_message[data-post]").Each(func(_ int, sel *goquery.Selection) {
		post, _ := sel.Attr("data-post")
		id, ok := postID(post)
		if !ok {
			return
		}

		m := Message{ID: id}

		if text := sel.Find(".tgme_widget_message_text").First(); text.Length() > 0 {
			m.Text = htmlText(text)
		}

		if datetime, ok := sel.Find(".tgme_widget_message_date time").First().Attr("datetime"); ok {
			if t, err := time.Parse(time.RFC3339, datetime); err == nil {
				m.Date = &t
			}
		}

		if style, ok := sel.Find(".tgme_widget_message_photo_wrap").First().Attr("style"); ok {
			if match := backgroundImage.FindStringSubmatch(style); match != nil {
				m.PhotoURL = match[1]
			}
		}

		page.messages = append(page.messages, m)
	})

	sort.Slice(page.messages, func(i, j int) bool {
		return page.messages[i].ID > page.messages[j].ID
	})

	return page, nil
}

// postID parses "channel/1234" and "https://t.me/channel/1234".
func postID(post string) (int64, bool) {
	i := strings.LastIndex(post, "/")
	if i < 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(post[i+1:]), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
