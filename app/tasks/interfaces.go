package tasks

import (
	"context"

	"github.com/lysyi3m/tg-comb/app/dataset"
	"github.com/lysyi3m/tg-comb/app/telegram"
)

// RecordWriter receives the records of one channel, then Flush. Satisfied by
// *dataset.Writer.
type RecordWriter interface {
	Write(r dataset.Record) error
	Flush() error
}

// MediaDownloader stores a message photo and returns its local path.
// Satisfied by *telegram.MediaDownloader.
type MediaDownloader interface {
	Download(ctx context.Context, username string, m telegram.Message) (string, error)
}

var (
	_ RecordWriter    = (*dataset.Writer)(nil)
	_ MediaDownloader = (*telegram.MediaDownloader)(nil)
	_ TaskInterface   = (*ScrapeChannelTask)(nil)
	_ TaskInterface   = (*PreprocessTask)(nil)
	_ TaskInterface   = (*GenerateViewsTask)(nil)
)
