package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lysyi3m/tg-comb/app/cfg"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	if err := appCfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "command", appCfg.Command, "error", err)
		os.Exit(1)
	}

	slog.Info("Starting TG Comb", "version", appCfg.Version, "command", appCfg.Command)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch appCfg.Command {
	case cfg.CommandIngest:
		err = runIngest(ctx, appCfg)
	case cfg.CommandPreprocess:
		err = runPreprocess(ctx, appCfg)
	case cfg.CommandViews:
		err = runViews(ctx, appCfg)
	case cfg.CommandServe:
		err = runServe(ctx, appCfg)
	}

	if err != nil {
		slog.Error("Command failed", "command", appCfg.Command, "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
