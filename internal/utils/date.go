package utils

import (
	"errors"  // Error values
	"strings" // Whitespace trimming
	"time"    // Date parsing
)

// ErrInvalidDate is returned when no known layout matches
var ErrInvalidDate = errors.New("invalid date format")

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses s and returns its wall-clock reading. Any zone offset in s
// decides the calendar fields but is not kept.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return WallClock(t), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// WallClock drops the location of t and keeps its calendar fields, truncated to seconds
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
