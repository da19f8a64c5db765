package telegram

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// MediaDownloader stores message photos as <dir>/<username>_<id>.jpg.
type MediaDownloader struct {
	fetcher
	dir string
}

func NewMediaDownloader(httpClient *http.Client, dir, userAgent string) *MediaDownloader {
	return &MediaDownloader{
		fetcher: fetcher{httpClient: httpClient, userAgent: userAgent},
		dir:     dir,
	}
}

func (d *MediaDownloader) Download(ctx context.Context, username string, m Message) (string, error) {
	if m.PhotoURL == "" {
		return "", nil
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	data, err := d.fetch(ctx, m.PhotoURL)
	if err != nil {
		return "", fmt.Errorf("failed to download photo: %w", err)
	}

	path := filepath.Join(d.dir, fmt.Sprintf("%s_%d.jpg", username, m.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	return path, nil
}
