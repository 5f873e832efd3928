// Package eventlog reads clickstream event logs from CSV files.
package eventlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ecomfunnel/models"
	"ecomfunnel/utils"
)

// Column names of the event log header.
const (
	ColumnEventDate = "event_date"
	ColumnSession   = "session"
	ColumnUser      = "user"
	ColumnPageType  = "page_type"
	ColumnEventType = "event_type"
	ColumnProduct   = "product"
)

var requiredColumns = []string{ColumnEventDate, ColumnSession, ColumnUser, ColumnPageType, ColumnEventType}

// Reader decodes events one row at a time.
type Reader struct {
	csv     *csv.Reader
	closer  io.Closer
	path    string
	columns map[string]int
	line    int
}

// Open opens path and validates its header row.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	r, err := NewReader(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader wraps an already open source. name is used in error messages.
func NewReader(src io.Reader, name string) (*Reader, error) {
	cr := csv.NewReader(src)
	cr.ReuseRecord = true

	r := &Reader{csv: cr, path: name}

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, r.wrapReadError(err)
	}
	r.line = 1

	r.columns = make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		r.columns[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := r.columns[col]; !ok {
			return nil, &ParseError{Line: 1, Column: col, Err: errors.New("required column missing from header")}
		}
	}
	return r, nil
}

// Next returns the next event, or io.EOF after the last row.
func (r *Reader) Next() (models.Event, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return models.Event{}, io.EOF
	}
	if err != nil {
		return models.Event{}, r.wrapReadError(err)
	}
	r.line, _ = r.csv.FieldPos(0)
	return r.decode(record)
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) field(record []string, column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func (r *Reader) decode(record []string) (models.Event, error) {
	raw := r.field(record, ColumnEventDate)
	eventDate, err := utils.ParseTimestamp(raw)
	if err != nil {
		return models.Event{}, &ParseError{Line: r.line, Column: ColumnEventDate, Value: raw, Err: err}
	}

	ev := models.Event{
		EventDate: eventDate,
		Session:   strings.TrimSpace(r.field(record, ColumnSession)),
		User:      strings.TrimSpace(r.field(record, ColumnUser)),
		PageType:  strings.TrimSpace(r.field(record, ColumnPageType)),
		EventType: strings.TrimSpace(r.field(record, ColumnEventType)),
	}
	for _, req := range []struct{ column, value string }{
		{ColumnSession, ev.Session},
		{ColumnUser, ev.User},
		{ColumnPageType, ev.PageType},
		{ColumnEventType, ev.EventType},
	} {
		if req.value == "" {
			return models.Event{}, &ParseError{Line: r.line, Column: req.column, Err: errors.New("value is required")}
		}
	}

	raw = r.field(record, ColumnProduct)
	ev.Product, err = utils.ParseProductID(raw)
	if err != nil {
		return models.Event{}, &ParseError{Line: r.line, Column: ColumnProduct, Value: raw, Err: err}
	}
	return ev, nil
}

func (r *Reader) wrapReadError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return &IOError{Path: r.path, Err: err}
}

// Load reads the whole event log into memory, preserving row order.
func Load(path string) ([]models.Event, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var events []models.Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
}

// ReadChunks streams the event log to fn in batches of at most size events.
// The slice passed to fn is reused between calls.
func ReadChunks(path string, size int, fn func(chunk []models.Event) error) error {
	if size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", size)
	}
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	chunk := make([]models.Event, 0, size)
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		chunk = append(chunk, ev)
		if len(chunk) == size {
			if err := fn(chunk); err != nil {
				return err
			}
			chunk = chunk[:0]
		}
	}
	if len(chunk) > 0 {
		return fn(chunk)
	}
	return nil
}
