package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01 10:15:30", time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)},
		{"2024-03-01T10:15:30", time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)},
		{"2024-03-01T10:15:30Z", time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)},
		{"2024-03-01 10:15:30.250", time.Date(2024, 3, 1, 10, 15, 30, 250e6, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{" 2024-03-01 10:15 ", time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)},
		{"2024-03-01T09:30", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
	}
}

func TestParseTimestampWithOffset(t *testing.T) {
	got, err := ParseTimestamp("2024-03-01T23:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Day())
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 21, 30, 0, 0, time.UTC)))
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-01", "01/03/2024"} {
		_, err := ParseTimestamp(in)
		assert.Error(t, err, in)
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "2024-03-01 10:15:30", FormatTimestamp(time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)))
	assert.Equal(t, "2024-03-01 10:15:30.5", FormatTimestamp(time.Date(2024, 3, 1, 10, 15, 30, 500e6, time.UTC)))

	zone := time.FixedZone("", 2*3600)
	assert.Equal(t, "2024-03-01 10:15:30+02:00", FormatTimestamp(time.Date(2024, 3, 1, 10, 15, 30, 0, zone)))
}

func TestCalendarDate(t *testing.T) {
	got := CalendarDate(time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseProductID(t *testing.T) {
	id, err := ParseProductID("1234")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(1234), *id)

	id, err = ParseProductID("1234.0")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(1234), *id)

	for _, in := range []string{"", "nan", "NaN", "null"} {
		id, err := ParseProductID(in)
		require.NoError(t, err, in)
		assert.Nil(t, id, in)
	}

	_, err = ParseProductID("12.5")
	assert.Error(t, err)
	_, err = ParseProductID("abc")
	assert.Error(t, err)
}
