package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	ErrMissingCredentials = errors.New("missing bridge credentials")
	ErrNoChannels         = errors.New("no channels configured")
	ErrNotSynthetic       = errors.New("views are fabricated, pass --synthetic to confirm")
)

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type ingestCommand struct {
	Channels   []string `long:"channel" short:"c" env:"TG_CHANNELS" env-delim:"," description:"Channel username or t.me link (repeatable)"`
	Limit      int      `long:"limit" env:"TG_LIMIT" default:"3000" description:"Maximum messages per channel"`
	Source     string   `long:"source" env:"TG_SOURCE" default:"preview" choice:"preview" choice:"bridge" description:"Where messages are read from"`
	PreviewURL string   `long:"preview-url" env:"TG_PREVIEW_URL" default:"https://t.me/s/" description:"Base URL of the public web preview"`
	BridgeURL  string   `long:"bridge-url" env:"TG_BRIDGE_URL" description:"RSS bridge URL template with a {channel} placeholder"`
	BridgeKey  string   `long:"bridge-key" env:"TG_BRIDGE_KEY" description:"RSS bridge access key"`
	Media      bool     `long:"media" env:"TG_MEDIA" description:"Download message photos"`
	Preprocess bool     `long:"preprocess" description:"Also write the preprocessed file"`
}

type preprocessCommand struct {
	Input  string `long:"input" short:"i" description:"Raw CSV file (default: newest in the raw directory)"`
	Output string `long:"output" short:"o" description:"Output CSV file (default: derived from the input name)"`
}

type viewsCommand struct {
	Input       string `long:"input" short:"i" description:"Preprocessed CSV file (default: newest in the preprocessed directory)"`
	GroupColumn string `long:"group-column" default:"Channel Title" description:"Column whose values share a popularity factor"`
	Seed        uint64 `long:"seed" env:"VIEWS_SEED" description:"Random seed, 0 picks one from the clock"`
	Synthetic   bool   `long:"synthetic" description:"Acknowledge that the generated view counts are fabricated"`
}

type serveCommand struct {
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
}

type rawCfg struct {
	// Application configuration
	ChannelsDir string `long:"channels-dir" env:"TG_CHANNELS_DIR" default:"./channels" description:"Directory containing channel configuration files"`
	DataDir     string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for raw, preprocessed and media output"`
	Timeout     int    `long:"timeout" env:"TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"TG Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Africa/Addis_Ababa)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Ingest     ingestCommand     `command:"ingest" description:"Crawl the configured channels once and write a raw CSV"`
	Preprocess preprocessCommand `command:"preprocess" description:"Normalize the Message column of a raw CSV"`
	Views      viewsCommand      `command:"views" description:"Add synthetic view counts to a preprocessed CSV"`
	Serve      serveCommand      `command:"serve" description:"Serve the produced CSV files over HTTP"`
}

var globalCfg *Cfg

// Load reads .env, then the environment and command-line arguments. It
// returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := Parse(os.Args[1:])
	if err != nil || cfg == nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	globalCfg = cfg

	return cfg, nil
}

// Parse builds a Cfg from args and the environment without side effects.
func Parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ChannelsDir: raw.ChannelsDir,
		DataDir:     raw.DataDir,
		Timeout:     raw.Timeout,
		Ingest: IngestCfg{
			Channels:   splitChannels(raw.Ingest.Channels),
			Limit:      raw.Ingest.Limit,
			Source:     raw.Ingest.Source,
			PreviewURL: raw.Ingest.PreviewURL,
			BridgeURL:  raw.Ingest.BridgeURL,
			BridgeKey:  raw.Ingest.BridgeKey,
			Media:      raw.Ingest.Media,
			Preprocess: raw.Ingest.Preprocess,
		},
		Preprocess: PreprocessCfg{
			Input:  raw.Preprocess.Input,
			Output: raw.Preprocess.Output,
		},
		Views: ViewsCfg{
			Input:       raw.Views.Input,
			GroupColumn: raw.Views.GroupColumn,
			Seed:        raw.Views.Seed,
			Synthetic:   raw.Views.Synthetic,
		},
		Serve: ServeCfg{
			Port:         raw.Serve.Port,
			APIAccessKey: raw.Serve.APIAccessKey,
		},
		UserAgent: raw.UserAgent,
		Timezone:  raw.Timezone,
		Debug:     raw.Debug,
		Version:   GetVersion(),
	}

	if parser.Active != nil {
		cfg.Command = parser.Active.Name
	}

	return cfg, nil
}

// Validate checks the settings of the selected command. It runs before any
// network activity.
func (c *Cfg) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}

	switch c.Command {
	case CommandIngest:
		if c.Ingest.Limit <= 0 {
			return fmt.Errorf("limit must be positive, got %d", c.Ingest.Limit)
		}
		if c.Ingest.Source == SourceBridge {
			var missing []string
			if c.Ingest.BridgeURL == "" {
				missing = append(missing, "TG_BRIDGE_URL")
			}
			if c.Ingest.BridgeKey == "" {
				missing = append(missing, "TG_BRIDGE_KEY")
			}
			if len(missing) > 0 {
				return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
			}
		}
	case CommandViews:
		if !c.Views.Synthetic {
			return ErrNotSynthetic
		}
		if c.Views.GroupColumn == "" {
			return errors.New("group column must not be empty")
		}
	}

	return nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// splitChannels accepts both repeated flags and comma separated values.
func splitChannels(values []string) []string {
	var channels []string
	for _, value := range values {
		for _, channel := range strings.Split(value, ",") {
			if channel = strings.TrimSpace(channel); channel != "" {
				channels = append(channels, channel)
			}
		}
	}
	return channels
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
