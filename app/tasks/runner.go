package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/tg-comb/app/telegram"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is the result of crawling one channel.
type Outcome struct {
	Channel  string
	Status   Status
	Stats    ScrapeStats
	Duration time.Duration
	Err      error
}

// Runner crawls channels one after another, one attempt each. A failing
// channel is logged and recorded; the remaining channels still run.
type Runner struct {
	source   telegram.Source
	filterer *telegram.Filterer
	media    MediaDownloader
}

func NewRunner(source telegram.Source, filterer *telegram.Filterer, media MediaDownloader) *Runner {
	return &Runner{
		source:   source,
		filterer: filterer,
		media:    media,
	}
}

func (r *Runner) Run(ctx context.Context, configs []*telegram.Config, writer RecordWriter) []Outcome {
	outcomes := make([]Outcome, 0, len(configs))

	for _, channelConfig := range configs {
		if ctx.Err() != nil {
			outcomes = append(outcomes, Outcome{Channel: channelConfig.Name, Status: StatusSkipped, Err: ctx.Err()})
			continue
		}

		if !channelConfig.Settings.Enabled {
			slog.Debug("Channel disabled, skipping", "channel", channelConfig.Name)
			outcomes = append(outcomes, Outcome{Channel: channelConfig.Name, Status: StatusSkipped})
			continue
		}

		slog.Info("Scraping channel", "channel", channelConfig.Username, "limit", channelConfig.Settings.Limit)

		task := NewScrapeChannelTask(channelConfig, r.source, r.filterer, r.media, writer)
		outcomes = append(outcomes, r.executeTask(ctx, task))
	}

	return outcomes
}

func (r *Runner) executeTask(ctx context.Context, task *ScrapeChannelTask) Outcome {
	task.Start()

	err := task.Execute(ctx)

	outcome := Outcome{
		Channel:  task.GetTarget(),
		Status:   StatusSuccess,
		Stats:    task.Stats,
		Duration: task.GetDuration(),
	}

	if err != nil {
		slog.Error("Failed to scrape channel", "type", string(task.GetType()), "id", task.GetID(), "channel", task.GetTarget(), "error", err)
		outcome.Status = StatusFailed
		outcome.Err = err
	}

	return outcome
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) map[Status]int {
	counts := map[Status]int{StatusSuccess: 0, StatusFailed: 0, StatusSkipped: 0}
	for _, o := range outcomes {
		counts[o.Status]++
	}
	return counts
}
