package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/tg-comb/app/dataset"
	"github.com/lysyi3m/tg-comb/app/telegram"
)

type ScrapeStats struct {
	Messages    int
	Filtered    int
	Media       int
	MediaErrors int
}

type ScrapeChannelTask struct {
	Task
	ChannelConfig *telegram.Config
	Stats         ScrapeStats
	source        telegram.Source
	filterer      *telegram.Filterer
	media         MediaDownloader
	writer        RecordWriter
}

// NewScrapeChannelTask builds the crawl of one channel. media may be nil to
// skip photo downloads for every channel.
func NewScrapeChannelTask(channelConfig *telegram.Config, source telegram.Source, filterer *telegram.Filterer, media MediaDownloader, writer RecordWriter) *ScrapeChannelTask {
	return &ScrapeChannelTask{
		Task:          NewTask(TaskTypeScrapeChannel, channelConfig.Name),
		ChannelConfig: channelConfig,
		source:        source,
		filterer:      filterer,
		media:         media,
		writer:        writer,
	}
}

func (t *ScrapeChannelTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if t.ChannelConfig.Settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(t.ChannelConfig.Settings.Timeout)*time.Second)
		defer cancel()
	}

	username := t.ChannelConfig.Username

	channel, messages, err := t.source.Fetch(ctx, username, t.ChannelConfig.Settings.Limit)
	if err != nil {
		return fmt.Errorf("failed to fetch channel: %w", err)
	}

	kept, reasons := t.filterer.Run(channel, messages, t.ChannelConfig)
	t.Stats.Filtered = len(reasons)
	for id, reason := range reasons {
		slog.Debug("Message filtered", "channel", username, "message_id", id, "reason", reason)
	}

	for _, message := range kept {
		record := dataset.Record{
			ChannelTitle:    channel.Title,
			ChannelUsername: channel.Link(),
			MessageID:       message.ID,
			Message:         message.Text,
			Date:            message.Date,
		}

		if t.media != nil && t.ChannelConfig.Settings.DownloadMedia && message.PhotoURL != "" {
			path, err := t.media.Download(ctx, username, message)
			if err != nil {
				slog.Warn("Failed to download media", "channel", username, "message_id", message.ID, "error", err)
				t.Stats.MediaErrors++
			} else {
				record.MediaPath = path
				t.Stats.Media++
			}
		}

		if err := t.writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
		t.Stats.Messages++
	}

	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush records: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"channel", username,
		"title", channel.Title,
		"duration", t.GetDuration(),
		"messages", t.Stats.Messages,
		"filtered", t.Stats.Filtered,
		"media", t.Stats.Media,
		"media_errors", t.Stats.MediaErrors)

	return nil
}
