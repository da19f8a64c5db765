package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	RawPrefix          = "telegram_data_"
	PreprocessedPrefix = "telegram_data_preprocessed_"

	timestampLayout = "20060102_150405"
)

// Artifact describes a CSV file produced by one of the pipeline stages.
type Artifact struct {
	Name       string    `json:"name"`
	Path       string    `json:"-"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// TimestampedName builds names like telegram_data_20250625_142643.csv.
func TimestampedName(prefix string, t time.Time) string {
	return prefix + t.Format(timestampLayout) + ".csv"
}

// PreprocessedName derives the preprocessed file name from a raw file name so
// both stages of one crawl share a timestamp. Other names get the time t.
func PreprocessedName(rawPath string, t time.Time) string {
	base := filepath.Base(rawPath)
	if strings.HasPrefix(base, RawPrefix) && !strings.HasPrefix(base, PreprocessedPrefix) && filepath.Ext(base) == ".csv" {
		return PreprocessedPrefix + strings.TrimPrefix(base, RawPrefix)
	}
	return TimestampedName(PreprocessedPrefix, t)
}

// List returns the CSV files in dir whose name starts with prefix, newest
// first. A missing directory is not an error.
func List(dir, prefix string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || filepath.Ext(name) != ".csv" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		artifacts = append(artifacts, Artifact{
			Name:       name,
			Path:       filepath.Join(dir, name),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		if !artifacts[i].ModifiedAt.Equal(artifacts[j].ModifiedAt) {
			return artifacts[i].ModifiedAt.After(artifacts[j].ModifiedAt)
		}
		return artifacts[i].Name > artifacts[j].Name
	})

	return artifacts, nil
}

// Latest returns the path of the newest artifact in dir.
func Latest(dir, prefix string) (string, error) {
	artifacts, err := List(dir, prefix)
	if err != nil {
		return "", err
	}
	if len(artifacts) == 0 {
		return "", fmt.Errorf("no %s*.csv files in %s", prefix, dir)
	}
	return artifacts[0].Path, nil
}
