package indicator

import "SignalPulse/internal/domain/models"

// Conventional MACD periods.
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACD computes the MACD line, signal line and histogram for the latest
// price. The fast EMA series is longer than the slow one by slow-fast
// samples; the lines are aligned on the slow series. Returns an all-zero
// result with a neutral histogram trend if len(prices) < slow.
func MACD(prices []float64, fast, slow, signal int) models.MACDResult {
	if len(prices) < slow || fast >= slow {
		return models.MACDResult{Trend: models.HistNeutral}
	}

	emaFast := EMA(prices, fast)
	emaSlow := EMA(prices, slow)
	offset := slow - fast

	macdLine := make([]float64, len(emaSlow))
	for i := range emaSlow {
		macdLine[i] = emaFast[i+offset] - emaSlow[i]
	}

	signalLine := EMA(macdLine, signal)

	res := models.MACDResult{
		MACD:   last(macdLine),
		Signal: last(signalLine),
		Trend:  models.HistNeutral,
	}
	res.Histogram = res.MACD - res.Signal

	// Histogram trail aligned on the signal series.
	if len(signalLine) > 0 {
		sigOffset := len(macdLine) - len(signalLine)
		hist := make([]float64, len(signalLine))
		for i := range signalLine {
			hist[i] = macdLine[i+sigOffset] - signalLine[i]
		}
		if len(hist) >= 4 {
			if hist[len(hist)-1] > hist[len(hist)-4] {
				res.Trend = models.HistGrowing
			} else {
				res.Trend = models.HistShrinking
			}
		}
	}
	return res
}
