package dataset

import (
	"errors"
	"time"
)

// Column names shared by the raw and preprocessed artifacts.
const (
	ColumnChannelTitle    = "Channel Title"
	ColumnChannelUsername = "Channel Username"
	ColumnMessageID       = "Message ID"
	ColumnMessage         = "Message"
	ColumnDate            = "Date"
	ColumnMediaPath       = "Media Path"
	ColumnViews           = "Views"
)

// RecordColumns is the header written for every crawl.
var RecordColumns = []string{
	ColumnChannelTitle,
	ColumnChannelUsername,
	ColumnMessageID,
	ColumnMessage,
	ColumnDate,
	ColumnMediaPath,
}

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrEmptyFile      = errors.New("file has no header row")
)

// Record is one ingested message. Empty Message, nil Date and empty MediaPath
// are written as empty cells.
type Record struct {
	ChannelTitle    string
	ChannelUsername string
	MessageID       int64
	Message         string
	Date            *time.Time
	MediaPath       string
}
