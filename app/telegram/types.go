package telegram

import (
	"context"
	"time"
)

type Channel struct {
	Username string
	Title    string
}

// Link is the public address written to the Channel Username column.
func (c Channel) Link() string {
	return "https://t.me/" + c.Username
}

type Message struct {
	ID       int64
	Text     string
	Date     *time.Time
	PhotoURL string
}

// Source returns up to limit messages of a channel, newest first. A limit of
// zero or less means every message the source can reach.
type Source interface {
	Fetch(ctx context.Context, username string, limit int) (*Channel, []Message, error)
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Username string         `yaml:"username"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled       bool `yaml:"enabled"`
	Limit         int  `yaml:"limit"`
	DownloadMedia bool `yaml:"download_media"`
	Timeout       int  `yaml:"timeout"` // seconds for the whole channel crawl
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
