// Package indicator provides pure technical-indicator functions over price
// and candle series. All functions are deterministic and never fail: short
// input yields a defined degraded result (empty series, neutral value)
// instead of an error, so the signal pipeline always produces output.
package indicator

// SMA computes the simple moving average series.
// Returns an empty slice if len(series) < period.
func SMA(series []float64, period int) []float64 {
	if period <= 0 || len(series) < period {
		return nil
	}
	out := make([]float64, 0, len(series)-period+1)
	sum := 0.0
	for i, v := range series {
		sum += v
		if i >= period {
			sum -= series[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// EMA computes the exponential moving average series, seeded with the SMA of
// the first period values and smoothed with k = 2/(period+1).
// A single-element input returns that value regardless of period; otherwise
// the result is empty if len(series) < period.
func EMA(series []float64, period int) []float64 {
	if len(series) == 1 {
		return []float64{series[0]}
	}
	if period <= 0 || len(series) < period {
		return nil
	}
	k := 2.0 / float64(period+1)
	seed := 0.0
	for _, v := range series[:period] {
		seed += v
	}
	seed /= float64(period)

	out := make([]float64, 0, len(series)-period+1)
	out = append(out, seed)
	prev := seed
	for _, v := range series[period:] {
		prev = v*k + prev*(1-k)
		out = append(out, prev)
	}
	return out
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
