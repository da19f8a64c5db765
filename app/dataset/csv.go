package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Read loads a comma separated file with a header row. A leading UTF-8 BOM,
// as written by spreadsheet tools and utf-8-sig exporters, is dropped.
func Read(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	ds, err := ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ds, nil
}

func ReadFrom(r io.Reader) (*Dataset, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	ds := New(header...)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", ds.Len()+1, err)
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

// Write stores the dataset at path. The file is written next to its final
// location and renamed into place, so an existing file is either fully
// replaced or left as it was.
func Write(path string, ds *Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteTo(tmp, ds); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func WriteTo(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(ds.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// Writer streams records to a new file during a crawl.
type Writer struct {
	file  *os.File
	csv   *csv.Writer
	count int
}

func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}

	w := &Writer{file: f, csv: csv.NewWriter(f)}
	if err := w.csv.Write(RecordColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return w, nil
}

func (w *Writer) Write(r Record) error {
	cells := r.cells()
	row := make([]string, len(RecordColumns))
	for i, name := range RecordColumns {
		row[i] = cells[name]
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write record %d: %w", r.MessageID, err)
	}
	w.count++
	return nil
}

func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// Count is the number of records written so far.
func (w *Writer) Count() int {
	return w.count
}

func (w *Writer) Path() string {
	return w.file.Name()
}

func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	return w.file.Close()
}
