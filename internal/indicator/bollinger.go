package indicator

import (
	"math"

	"SignalPulse/internal/domain/models"
)

// DefaultBollingerPeriod is the conventional Bollinger band window.
const DefaultBollingerPeriod = 20

// BollingerBands computes the bands over the trailing period using the
// population standard deviation. Degenerate fallback when len(prices) <
// period: bands collapsed onto the last price, bandwidth 0, percentB 0.5.
func BollingerBands(prices []float64, period int, stdDev float64) models.BollingerResult {
	if period <= 0 || len(prices) < period {
		p := last(prices)
		return models.BollingerResult{
			Upper: p, Middle: p, Lower: p,
			Bandwidth: 0, PercentB: 0.5,
		}
	}

	window := prices[len(prices)-period:]
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(period)

	variance := 0.0
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	sigma := math.Sqrt(variance / float64(period))

	res := models.BollingerResult{
		Upper:  mean + stdDev*sigma,
		Middle: mean,
		Lower:  mean - stdDev*sigma,
	}
	if res.Middle != 0 {
		res.Bandwidth = (res.Upper - res.Lower) / res.Middle * 100
	}

	price := prices[len(prices)-1]
	if width := res.Upper - res.Lower; width > 0 {
		res.PercentB = (price - res.Lower) / width
	} else {
		res.PercentB = 0.5
	}
	return res
}
