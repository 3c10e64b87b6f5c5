package repository

// Interval is a candle interval accepted by the candle provider.
type Interval string

const (
	I15m Interval = "15m"
	I1h  Interval = "1h"
	I4h  Interval = "4h"
	I1d  Interval = "1d"
)

// IsValidInterval returns true if iv is a supported candle interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case I15m, I1h, I4h, I1d:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the default candle interval.
func DefaultInterval() Interval { return I1h }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}
