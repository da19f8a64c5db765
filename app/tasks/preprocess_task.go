package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/tg-comb/app/dataset"
	"github.com/lysyi3m/tg-comb/app/text"
)

// PreprocessTask rewrites the Message column of a raw export with the text
// normalizer and stores the result as a new file. Other columns are copied.
type PreprocessTask struct {
	Task
	Input  string
	Output string
	Rows   int
}

func NewPreprocessTask(input, output string) *PreprocessTask {
	return &PreprocessTask{
		Task:   NewTask(TaskTypePreprocess, input),
		Input:  input,
		Output: output,
	}
}

func (t *PreprocessTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ds, err := dataset.Read(t.Input)
	if err != nil {
		return fmt.Errorf("failed to load raw data: %w", err)
	}

	if err := ds.MapColumn(dataset.ColumnMessage, text.Normalize); err != nil {
		return fmt.Errorf("failed to normalize messages: %w", err)
	}

	if err := dataset.Write(t.Output, ds); err != nil {
		return fmt.Errorf("failed to store preprocessed data: %w", err)
	}
	t.Rows = ds.Len()

	slog.Info("Task completed",
		"type", t.GetType(),
		"input", t.Input,
		"output", t.Output,
		"duration", t.GetDuration(),
		"rows", t.Rows)

	return nil
}
