package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout matches the ISO-8601 form Python exporters write
// (offset written as +00:00 rather than Z).
const DateLayout = "2006-01-02T15:04:05-07:00"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Dataset is an ordered table of string cells. Columns are addressed by
// header name; columns this package does not know about are carried through.
type Dataset struct {
	Header []string
	Rows   [][]string
}

func New(header ...string) *Dataset {
	return &Dataset{Header: append([]string(nil), header...)}
}

func NewRecords() *Dataset {
	return New(RecordColumns...)
}

func (d *Dataset) Len() int {
	return len(d.Rows)
}

func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, h := range d.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Value returns the cell of row i in the named column. A missing column or a
// short row reports ok == false.
func (d *Dataset) Value(i int, name string) (string, bool) {
	idx, ok := d.ColumnIndex(name)
	if !ok || i < 0 || i >= len(d.Rows) || idx >= len(d.Rows[i]) {
		return "", false
	}
	return d.Rows[i][idx], true
}

// Column returns every cell of the named column; short rows yield "".
func (d *Dataset) Column(name string) ([]string, error) {
	idx, ok := d.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	values := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, nil
}

// SetColumn overwrites the named column in place, or appends it to the header
// when it does not exist yet. Other columns are left untouched.
func (d *Dataset) SetColumn(name string, values []string) error {
	if len(values) != len(d.Rows) {
		return fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(d.Rows))
	}

	idx, ok := d.ColumnIndex(name)
	if !ok {
		d.Header = append(d.Header, name)
		idx = len(d.Header) - 1
	}

	for i := range d.Rows {
		row := d.Rows[i]
		for len(row) <= idx {
			row = append(row, "")
		}
		row[idx] = values[i]
		d.Rows[i] = row
	}
	return nil
}

// MapColumn rewrites every cell of the named column with fn.
func (d *Dataset) MapColumn(name string, fn func(string) string) error {
	values, err := d.Column(name)
	if err != nil {
		return err
	}
	for i, v := range values {
		values[i] = fn(v)
	}
	return d.SetColumn(name, values)
}

// Append adds a record as a row laid out by the dataset header.
func (d *Dataset) Append(r Record) {
	cells := r.cells()
	row := make([]string, len(d.Header))
	for i, h := range d.Header {
		row[i] = cells[h]
	}
	d.Rows = append(d.Rows, row)
}

// Records decodes every row into a Record. Message ID and Date must parse
// when present.
func (d *Dataset) Records() ([]Record, error) {
	records := make([]Record, 0, len(d.Rows))
	for i := range d.Rows {
		r, err := d.Record(i)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (d *Dataset) Record(i int) (Record, error) {
	var r Record
	r.ChannelTitle, _ = d.Value(i, ColumnChannelTitle)
	r.ChannelUsername, _ = d.Value(i, ColumnChannelUsername)
	r.Message, _ = d.Value(i, ColumnMessage)
	r.MediaPath, _ = d.Value(i, ColumnMediaPath)

	if v, _ := d.Value(i, ColumnMessageID); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("row %d: invalid message id %q: %w", i+1, v, err)
		}
		r.MessageID = id
	}

	if v, _ := d.Value(i, ColumnDate); v != "" {
		date, err := ParseDate(v)
		if err != nil {
			return Record{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		r.Date = &date
	}

	return r, nil
}

func (r Record) cells() map[string]string {
	cells := map[string]string{
		ColumnChannelTitle:    r.ChannelTitle,
		ColumnChannelUsername: r.ChannelUsername,
		ColumnMessageID:       strconv.FormatInt(r.MessageID, 10),
		ColumnMessage:         r.Message,
		ColumnMediaPath:       r.MediaPath,
	}
	if r.Date != nil {
		cells[ColumnDate] = r.Date.Format(DateLayout)
	}
	return cells
}

func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
