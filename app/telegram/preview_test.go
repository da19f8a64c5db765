package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func previewPost(username string, id int64, text, photo string) string {
	photoHTML := ""
	if photo != "" {
		photoHTML = fmt.Sprintf(`<a class="tgme_widget_message_photo_wrap" href="https://t.me/%s/%d" style="width:800px;background-image:url('%s')"></a>`, username, id, photo)
	}
	return fmt.Sprintf(`
<div class="tgme_widget_message_wrap js-widget_message_wrap">
  <div class="tgme_widget_message js-widget_message" data-post="%s/%d">
    %s
    <div class="tgme_widget_message_text js-message_text" dir="auto">%s</div>
    <div class="tgme_widget_message_footer">
      <a class="tgme_widget_message_date" href="https://t.me/%s/%d"><time datetime="2025-06-25T11:26:%02d+00:00" class="time">11:26</time></a>
    </div>
  </div>
</div>`, username, id, photoHTML, text, username, id, id%60)
}

func previewHTML(title string, posts ...string) string {
	return `<!DOCTYPE html><html><body>
<div class="tgme_channel_info_header_title"><span dir="auto">` + title + `</span></div>
<section class="tgme_channel_history">` + strings.Join(posts, "\n") + `</section></body></html>`
}

func TestParsePreview(t *testing.T) {
	html := previewHTML("Shewa Brand",
		previewPost("Shewabrand", 41, "ዋጋ: 1500 ብር<br/>አዲስ አበባ", "https://cdn.example.com/a.jpg"),
		previewPost("Shewabrand", 42, "<b>New</b> stock &amp; more", ""),
	)

	page, err := parsePreview([]byte(html))
	if err != nil {
		t.Fatal(err)
	}

	if page.title != "Shewa Brand" {
		t.Errorf("Expected title 'Shewa Brand', got %q", page.title)
	}
	if len(page.messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(page.messages))
	}

	newest := page.messages[0]
	if newest.ID != 42 {
		t.Errorf("Expected newest first (42), got %d", newest.ID)
	}
	if newest.Text != "New stock & more" {
		t.Errorf("Unexpected text %q", newest.Text)
	}
	if newest.PhotoURL != "" {
		t.Errorf("Expected no photo, got %q", newest.PhotoURL)
	}

	oldest := page.messages[1]
	if oldest.Text != "ዋጋ: 1500 ብር\nአዲስ አበባ" {
		t.Errorf("Expected <br> to become a line break, got %q", oldest.Text)
	}
	if oldest.PhotoURL != "https://cdn.example.com/a.jpg" {
		t.Errorf("Unexpected photo URL %q", oldest.PhotoURL)
	}
	if oldest.Date == nil || oldest.Date.Second() != 41 {
		t.Errorf("Unexpected date %v", oldest.Date)
	}
}

func TestPreviewSourcePaginates(t *testing.T) {
	requests := []string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RequestURI())
		if r.URL.Path != "/s/Shewabrand" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("User-Agent") != "tg-comb-test" {
			t.Errorf("Expected user agent header, got %q", r.Header.Get("User-Agent"))
		}

		var html string
		switch r.URL.Query().Get("before") {
		case "":
			html = previewHTML("Shewa Brand",
				previewPost("Shewabrand", 4, "four", ""),
				previewPost("Shewabrand", 5, "five", ""),
				previewPost("Shewabrand", 6, "six", ""))
		case "4":
			html = previewHTML("Shewa Brand",
				previewPost("Shewabrand", 2, "two", ""),
				previewPost("Shewabrand", 3, "three", ""))
		default:
			html = previewHTML("Shewa Brand")
		}
		fmt.Fprint(w, html)
	}))
	defer server.Close()

	source := NewPreviewSource(server.Client(), server.URL+"/s/", "tg-comb-test")

	channel, messages, err := source.Fetch(context.Background(), "Shewabrand", 0)
	if err != nil {
		t.Fatal(err)
	}

	if channel.Title != "Shewa Brand" {
		t.Errorf("Expected title 'Shewa Brand', got %q", channel.Title)
	}
	if channel.Link() != "https://t.me/Shewabrand" {
		t.Errorf("Unexpected channel link %q", channel.Link())
	}

	var ids []int64
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	if fmt.Sprint(ids) != "[6 5 4 3 2]" {
		t.Errorf("Expected ids [6 5 4 3 2], got %v", ids)
	}
	if len(requests) != 3 {
		t.Errorf("Expected 3 page requests, got %v", requests)
	}
}

func TestPreviewSourceRespectsLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, previewHTML("Gebeya",
			previewPost("gebeyaadama", 10, "a", ""),
			previewPost("gebeyaadama", 11, "b", ""),
			previewPost("gebeyaadama", 12, "c", "")))
	}))
	defer server.Close()

	source := NewPreviewSource(server.Client(), server.URL, "tg-comb-test")
	_, messages, err := source.Fetch(context.Background(), "gebeyaadama", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 || messages[0].ID != 12 || messages[1].ID != 11 {
		t.Errorf("Expected newest two messages, got %+v", messages)
	}
	if calls != 1 {
		t.Errorf("Expected a single request, got %d", calls)
	}
}

func TestPreviewSourceMissingChannel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>nothing here</body></html>")
	}))
	defer server.Close()

	source := NewPreviewSource(server.Client(), server.URL, "tg-comb-test")
	if _, _, err := source.Fetch(context.Background(), "nope", 10); err == nil {
		t.Error("Expected error for channel without preview")
	}
}

func TestPreviewSourceHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewPreviewSource(server.Client(), server.URL, "tg-comb-test")
	_, _, err := source.Fetch(context.Background(), "Shewabrand", 10)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("Expected HTTP 502 error, got %v", err)
	}
}

func TestPostID(t *testing.T) {
	tests := []struct {
		input string
		id    int64
		ok    bool
	}{
		{"Shewabrand/4210", 4210, true},
		{"https://t.me/Shewabrand/4210", 4210, true},
		{"Shewabrand", 0, false},
		{"Shewabrand/abc", 0, false},
		{"Shewabrand/0", 0, false},
	}

	for _, tt := range tests {
		id, ok := postID(tt.input)
		if id != tt.id || ok != tt.ok {
			t.Errorf("postID(%q) = %d, %v; expected %d, %v", tt.input, id, ok, tt.id, tt.ok)
		}
	}
}
