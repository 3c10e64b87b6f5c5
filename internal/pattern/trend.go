// Package pattern implements higher-level detectors on top of the
// indicator package: EMA trend alignment, RSI divergence, volume profile
// and Bollinger squeeze. Like the indicators they are pure and return
// labeled sentinel results on short input.
package pattern

import (
	"math"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/indicator"
)

// EMA periods for the trend stack.
const (
	trendFastPeriod = 9
	trendMidPeriod  = 21
	trendSlowPeriod = 50
)

// EMATrend classifies the trend from the 9/21/50 EMA stack.
// Full alignment (price > EMA9 > EMA21 > EMA50, or the inverse) is a
// strong trend with strength scaled by the EMA9/EMA50 separation.
// Partial alignment against the mid EMA is a plain up/down. Requires 50
// prices, otherwise "unknown".
func EMATrend(prices []float64) models.TrendResult {
	if len(prices) < trendSlowPeriod {
		return models.TrendResult{Trend: models.TrendUnknown}
	}

	price := prices[len(prices)-1]
	fast := lastOf(indicator.EMA(prices, trendFastPeriod))
	mid := lastOf(indicator.EMA(prices, trendMidPeriod))
	slow := lastOf(indicator.EMA(prices, trendSlowPeriod))

	switch {
	case price > fast && fast > mid && mid > slow:
		return models.TrendResult{Trend: models.TrendStrongUp, Strength: trendStrength(fast, slow)}
	case price < fast && fast < mid && mid < slow:
		return models.TrendResult{Trend: models.TrendStrongDown, Strength: trendStrength(fast, slow)}
	case price > mid && fast > mid:
		return models.TrendResult{Trend: models.TrendUp, Strength: 50}
	case price < mid && fast < mid:
		return models.TrendResult{Trend: models.TrendDown, Strength: 50}
	default:
		return models.TrendResult{Trend: models.TrendSideways, Strength: 0}
	}
}

// trendStrength maps the fast/slow EMA separation to [0,100]: 5%
// separation or more saturates the scale.
func trendStrength(fast, slow float64) float64 {
	if slow == 0 {
		return 0
	}
	sep := math.Abs(fast-slow) / slow * 100
	return math.Min(100, sep*20)
}

func lastOf(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
