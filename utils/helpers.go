package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for event timestamps. Values without a zone are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 style timestamp.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", value)
}

// FormatTimestamp renders t the way it is written to report files.
func FormatTimestamp(t time.Time) string {
	if t.Location() == time.UTC {
		if t.Nanosecond() != 0 {
			return t.Format("2006-01-02 15:04:05.999999")
		}
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.999999-07:00")
}

// CalendarDate truncates t to midnight of its own calendar day, in its own zone.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseProductID parses a nullable product id. Empty and NaN-like values are
// absent; integral floats such as "42.0" are accepted.
func ParseProductID(value string) (*int64, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "nan", "null", "none", "<na>":
		return nil, nil
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return &id, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", value, err)
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<53 {
		return nil, fmt.Errorf("product id %q is not an integer", value)
	}
	id := int64(f)
	return &id, nil
}
