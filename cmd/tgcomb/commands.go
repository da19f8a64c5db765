package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/lysyi3m/tg-comb/app/api"
	"github.com/lysyi3m/tg-comb/app/cfg"
	"github.com/lysyi3m/tg-comb/app/dataset"
	"github.com/lysyi3m/tg-comb/app/tasks"
	"github.com/lysyi3m/tg-comb/app/telegram"
	"github.com/lysyi3m/tg-comb/app/views"
)

var errAllChannelsFailed = errors.New("every channel failed")

// runIngest crawls every configured channel once into a new raw file.
func runIngest(ctx context.Context, appCfg *cfg.Cfg) error {
	configCache := telegram.NewConfigCache(appCfg.ChannelsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load channel configurations: %w", err)
	}

	for _, channel := range appCfg.Ingest.Channels {
		if _, err := configCache.Add(channel, appCfg.Ingest.Limit, appCfg.Ingest.Media); err != nil {
			return err
		}
	}

	if configCache.GetConfigCount() == 0 {
		return fmt.Errorf("%w: use --channel, TG_CHANNELS or %s/<name>.yml", cfg.ErrNoChannels, appCfg.ChannelsDir)
	}

	slog.Info("Channel configurations loaded", "count", configCache.GetConfigCount(), "source", appCfg.Ingest.Source)

	httpClient := &http.Client{Timeout: time.Duration(appCfg.Timeout) * time.Second}

	var source telegram.Source
	switch appCfg.Ingest.Source {
	case cfg.SourceBridge:
		source = telegram.NewBridgeSource(httpClient, appCfg.Ingest.BridgeURL, appCfg.Ingest.BridgeKey, appCfg.UserAgent)
	default:
		source = telegram.NewPreviewSource(httpClient, appCfg.Ingest.PreviewURL, appCfg.UserAgent)
	}

	media := telegram.NewMediaDownloader(httpClient, appCfg.MediaDir(), appCfg.UserAgent)
	runner := tasks.NewRunner(source, telegram.NewFilterer(), media)

	startedAt := time.Now()
	rawPath := filepath.Join(appCfg.RawDir(), dataset.TimestampedName(dataset.RawPrefix, startedAt))

	writer, err := dataset.Create(rawPath)
	if err != nil {
		return err
	}

	outcomes := runner.Run(ctx, configCache.GetConfigs(), writer)

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close raw data: %w", err)
	}

	counts := tasks.Summarize(outcomes)
	for _, outcome := range outcomes {
		if outcome.Status == tasks.StatusFailed {
			slog.Error("Channel failed", "channel", outcome.Channel, "error", outcome.Err)
		}
	}
	slog.Info("Ingest completed",
		"path", rawPath,
		"records", writer.Count(),
		"success", counts[tasks.StatusSuccess],
		"failed", counts[tasks.StatusFailed],
		"skipped", counts[tasks.StatusSkipped],
		"duration", time.Since(startedAt))

	if counts[tasks.StatusSuccess] == 0 && counts[tasks.StatusFailed] > 0 {
		return errAllChannelsFailed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if appCfg.Ingest.Preprocess {
		output := filepath.Join(appCfg.PreprocessedDir(), dataset.PreprocessedName(rawPath, startedAt))
		return executeTask(ctx, tasks.NewPreprocessTask(rawPath, output))
	}

	return nil
}

func runPreprocess(ctx context.Context, appCfg *cfg.Cfg) error {
	input := appCfg.Preprocess.Input
	if input == "" {
		latest, err := dataset.Latest(appCfg.RawDir(), dataset.RawPrefix)
		if err != nil {
			return err
		}
		input = latest
	}

	output := appCfg.Preprocess.Output
	if output == "" {
		output = filepath.Join(appCfg.PreprocessedDir(), dataset.PreprocessedName(input, time.Now()))
	}

	return executeTask(ctx, tasks.NewPreprocessTask(input, output))
}

func runViews(ctx context.Context, appCfg *cfg.Cfg) error {
	input := appCfg.Views.Input
	if input == "" {
		latest, err := dataset.Latest(appCfg.PreprocessedDir(), dataset.PreprocessedPrefix)
		if err != nil {
			return err
		}
		input = latest
	}

	generator := views.NewGenerator(views.NewSampler(appCfg.Views.Seed))
	return executeTask(ctx, tasks.NewGenerateViewsTask(input, appCfg.Views.GroupColumn, generator))
}

func runServe(ctx context.Context, appCfg *cfg.Cfg) error {
	handler := api.NewHandler(appCfg.Version,
		api.Stage{Name: "raw", Dir: appCfg.RawDir(), Prefix: dataset.RawPrefix},
		api.Stage{Name: "preprocessed", Dir: appCfg.PreprocessedDir(), Prefix: dataset.PreprocessedPrefix},
	)
	server := api.NewServer(handler, appCfg.Serve.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Serve.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Serve.Port, "data_dir", appCfg.DataDir)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}

func executeTask(ctx context.Context, task tasks.TaskInterface) error {
	task.Start()

	if err := task.Execute(ctx); err != nil {
		slog.Error("Task failed", "type", string(task.GetType()), "id", task.GetID(), "target", task.GetTarget(), "error", err)
		return err
	}

	return nil
}
