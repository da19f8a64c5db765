package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/tg-comb/app/dataset"
	"github.com/lysyi3m/tg-comb/app/views"
)

// GenerateViewsTask patches fabricated view counts onto a preprocessed file
// in place.
type GenerateViewsTask struct {
	Task
	Path        string
	GroupColumn string
	Summary     views.Summary
	generator   *views.Generator
}

func NewGenerateViewsTask(path, groupColumn string, generator *views.Generator) *GenerateViewsTask {
	return &GenerateViewsTask{
		Task:        NewTask(TaskTypeGenerateViews, path),
		Path:        path,
		GroupColumn: groupColumn,
		generator:   generator,
	}
}

func (t *GenerateViewsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ds, err := dataset.Read(t.Path)
	if err != nil {
		return fmt.Errorf("failed to load preprocessed data: %w", err)
	}

	if _, ok := ds.ColumnIndex(t.GroupColumn); !ok {
		slog.Warn("Group column missing, all rows share one popularity factor", "column", t.GroupColumn, "path", t.Path)
	}

	values, err := t.generator.Run(ds, t.GroupColumn)
	if err != nil {
		return fmt.Errorf("failed to generate views: %w", err)
	}

	if err := dataset.Write(t.Path, ds); err != nil {
		return fmt.Errorf("failed to store views: %w", err)
	}

	t.Summary = views.Summarize(values)

	slog.Warn("Synthetic view counts written",
		"path", t.Path,
		"group_column", t.GroupColumn,
		"rows", t.Summary.Count)
	slog.Info("Task completed",
		"type", t.GetType(),
		"path", t.Path,
		"duration", t.GetDuration(),
		"min", t.Summary.Min,
		"max", t.Summary.Max,
		"mean", fmt.Sprintf("%.1f", t.Summary.Mean))

	return nil
}
