package util

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar date format accepted on every input surface.
const DateLayout = "2006-01-02"

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight. Full
// timestamps are accepted too and truncated to their UTC day.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, ok := ParseTime(s); ok {
		return TruncateDay(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want %s", s, DateLayout)
}

// ParseDateDefault parses a date or returns def when s is empty.
func ParseDateDefault(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	return ParseDate(s)
}

// TruncateDay returns UTC midnight of t's UTC calendar day.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultRange is the ten years ending on now's calendar day.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	end := TruncateDay(now)
	return end.AddDate(-10, 0, 0), end
}
