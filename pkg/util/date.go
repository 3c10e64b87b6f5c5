package util

import (
	"strconv"
	"time"
)

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

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// AlignFromTo rounds the time range down to candle-interval boundaries.
func AlignFromTo(from, to time.Time, interval string) (time.Time, time.Time) {
	var d time.Duration
	switch interval {
	case "15m":
		d = 15 * time.Minute
	case "4h":
		d = 4 * time.Hour
	case "1d":
		d = 24 * time.Hour
	default: // 1h
		d = time.Hour
	}
	return from.Truncate(d), to.Truncate(d)
}
