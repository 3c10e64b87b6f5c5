package pattern

import (
	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/indicator"
)

// Squeeze parameters: the current bandwidth must contract below
// squeezeFactor times the mean of the trailing squeezeSamples bandwidth
// readings.
const (
	squeezeFactor  = 0.7
	squeezeSamples = 20
)

// BBSqueeze reports whether the Bollinger bandwidth has contracted
// against its own recent history, with the breakout direction taken from
// the net change of the last 5 closes. Needs period+squeezeSamples
// prices for a full sample window, otherwise no squeeze.
func BBSqueeze(prices []float64, period int) models.SqueezeResult {
	if period <= 0 || len(prices) < period+squeezeSamples {
		return models.SqueezeResult{}
	}

	// Bandwidth trail over the trailing squeezeSamples endpoints,
	// current reading last.
	sum := 0.0
	current := 0.0
	for i := 0; i < squeezeSamples; i++ {
		end := len(prices) - squeezeSamples + i + 1
		bw := indicator.BollingerBands(prices[:end], period, 2).Bandwidth
		sum += bw
		current = bw
	}
	mean := sum / squeezeSamples

	res := models.SqueezeResult{
		Squeeze: mean > 0 && current < squeezeFactor*mean,
	}
	res.Direction = prices[len(prices)-1] - prices[len(prices)-5]
	return res
}
