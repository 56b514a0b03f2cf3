package domain

import (
	"fmt"
	"time"
)

// TimestampLayout is the fixed YYYY-MM-DD HH:MM:SS layout used in listings and files.
const TimestampLayout = "2006-01-02 15:04:05"

// ParseTimestamp parses s against TimestampLayout. Timestamps are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDateTime, s)
	}
	return t, nil
}

// FormatTimestamp renders t using TimestampLayout in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
