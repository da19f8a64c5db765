package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/lysyi3m/tg-comb/app/cfg"
	"github.com/lysyi3m/tg-comb/app/dataset"
)

const previewPage = `<!DOCTYPE html><html><body>
<div class="tgme_channel_info_header_title"><span dir="auto">Shewa Brand</span></div>
<section class="tgme_channel_history">
<div class="tgme_widget_message js-widget_message" data-post="Shewabrand/7">
  <div class="tgme_widget_message_text js-message_text" dir="auto">ዋጋ: 1500 ብር!!<br/>አዲስ አበባ</div>
  <a class="tgme_widget_message_date" href="https://t.me/Shewabrand/7"><time datetime="2025-06-25T11:26:07+00:00">11:26</time></a>
</div>
<div class="tgme_widget_message js-widget_message" data-post="Shewabrand/8">
  <div class="tgme_widget_message_text js-message_text" dir="auto">Price: 900 ETB</div>
  <a class="tgme_widget_message_date" href="https://t.me/Shewabrand/8"><time datetime="2025-06-25T11:27:00+00:00">11:27</time></a>
</div>
</section></body></html>`

func testConfig(t *testing.T, previewURL string, channels ...string) *cfg.Cfg {
	t.Helper()
	return &cfg.Cfg{
		Command:     cfg.CommandIngest,
		ChannelsDir: filepath.Join(t.TempDir(), "channels"),
		DataDir:     t.TempDir(),
		Timeout:     5,
		UserAgent:   "test",
		Ingest: cfg.IngestCfg{
			Channels:   channels,
			Limit:      100,
			Source:     cfg.SourcePreview,
			PreviewURL: previewURL,
			Preprocess: true,
		},
		Views: cfg.ViewsCfg{
			GroupColumn: dataset.ColumnChannelTitle,
			Seed:        7,
			Synthetic:   true,
		},
	}
}

func previewServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/s/Shewabrand" {
			w.Write([]byte(previewPage))
			return
		}
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPipeline(t *testing.T) {
	server := previewServer(t)
	appCfg := testConfig(t, server.URL+"/s/", "Shewabrand", "https://t.me/BrokenChannel")

	if err := runIngest(context.Background(), appCfg); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	rawPath, err := dataset.Latest(appCfg.RawDir(), dataset.RawPrefix)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := dataset.Read(rawPath)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Len() != 2 {
		t.Fatalf("Expected 2 raw records from the working channel, got %d", raw.Len())
	}
	records, err := raw.Records()
	if err != nil {
		t.Fatal(err)
	}
	if records[0].ChannelTitle != "Shewa Brand" || records[0].ChannelUsername != "https://t.me/Shewabrand" {
		t.Errorf("Unexpected channel columns %+v", records[0])
	}
	if records[0].Date == nil {
		t.Error("Expected message date to be stored")
	}

	preprocessedPath, err := dataset.Latest(appCfg.PreprocessedDir(), dataset.PreprocessedPrefix)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(preprocessedPath) != dataset.PreprocessedName(rawPath, time.Time{}) {
		t.Errorf("Expected preprocessed name to share the raw timestamp, got %s", preprocessedPath)
	}

	preprocessed, err := dataset.Read(preprocessedPath)
	if err != nil {
		t.Fatal(err)
	}
	messages, err := preprocessed.Column(dataset.ColumnMessage)
	if err != nil {
		t.Fatal(err)
	}
	expected := map[string]bool{"ዋጋ 1500 ብር አዲስ አበባ": true, "Price 900 ETB": true}
	for _, m := range messages {
		if !expected[m] {
			t.Errorf("Unexpected normalized message %q", m)
		}
	}

	if err := runViews(context.Background(), appCfg); err != nil {
		t.Fatalf("Views failed: %v", err)
	}
	withViews, err := dataset.Read(preprocessedPath)
	if err != nil {
		t.Fatal(err)
	}
	cells, err := withViews.Column(dataset.ColumnViews)
	if err != nil {
		t.Fatal(err)
	}
	for _, cell := range cells {
		v, err := strconv.Atoi(cell)
		if err != nil || v < 5 || v > 50000 {
			t.Errorf("Views value out of range: %q", cell)
		}
	}
}

func TestIngestAllChannelsFailed(t *testing.T) {
	server := previewServer(t)
	appCfg := testConfig(t, server.URL+"/s/", "BrokenChannel")

	if err := runIngest(context.Background(), appCfg); !errors.Is(err, errAllChannelsFailed) {
		t.Errorf("Expected errAllChannelsFailed, got %v", err)
	}
}

func TestIngestWithoutChannels(t *testing.T) {
	appCfg := testConfig(t, "http://127.0.0.1:0/s/")

	if err := runIngest(context.Background(), appCfg); !errors.Is(err, cfg.ErrNoChannels) {
		t.Errorf("Expected ErrNoChannels, got %v", err)
	}
}

func TestIngestChannelFiles(t *testing.T) {
	server := previewServer(t)
	appCfg := testConfig(t, server.URL+"/s/")
	appCfg.Ingest.Preprocess = false

	if err := os.MkdirAll(appCfg.ChannelsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	config := "username: Shewabrand\nsettings:\n  enabled: true\n  limit: 1\n"
	if err := os.WriteFile(filepath.Join(appCfg.ChannelsDir, "shewa.yml"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runIngest(context.Background(), appCfg); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	rawPath, err := dataset.Latest(appCfg.RawDir(), dataset.RawPrefix)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := dataset.Read(rawPath)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Len() != 1 {
		t.Errorf("Expected the per-channel limit of 1, got %d rows", raw.Len())
	}
	if _, err := dataset.Latest(appCfg.PreprocessedDir(), dataset.PreprocessedPrefix); err == nil {
		t.Error("Expected no preprocessed file without --preprocess")
	}
}

func TestPreprocessWithoutRawFiles(t *testing.T) {
	appCfg := testConfig(t, "")
	appCfg.Command = cfg.CommandPreprocess

	if err := runPreprocess(context.Background(), appCfg); err == nil {
		t.Error("Expected error when no raw file exists")
	}
}
