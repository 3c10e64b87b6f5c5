package pattern

import "SignalPulse/internal/domain/models"

// DefaultDivergenceLookback is the trailing window scanned for
// price/RSI divergence.
const DefaultDivergenceLookback = 20

// RSIDivergence detects a single bullish or bearish divergence between
// price and the RSI trail within the trailing lookback window.
//
// Local extrema use a 5-point rule: a value strictly below (above) both
// neighbors on each side. The last two qualifying price lows are compared
// against the RSI at the same positions; a lower price low with a higher
// RSI low is bullish, strength = the RSI delta. Bearish is symmetric on
// the last two highs. Bullish is checked first; at most one divergence is
// reported per call. This is a window heuristic, not swing detection.
func RSIDivergence(prices, rsiSeries []float64, lookback int) models.DivergenceResult {
	none := models.DivergenceResult{Type: models.DivergenceNone}
	if lookback < 5 || len(prices) < 5 || len(rsiSeries) < 5 {
		return none
	}

	// Align the two series on their tails; the RSI trail is shorter than
	// the price series by the warmup period.
	n := lookback
	if len(prices) < n {
		n = len(prices)
	}
	if len(rsiSeries) < n {
		n = len(rsiSeries)
	}
	price := prices[len(prices)-n:]
	rsi := rsiSeries[len(rsiSeries)-n:]

	if lows := localExtrema(price, true); len(lows) >= 2 {
		a, b := lows[len(lows)-2], lows[len(lows)-1]
		if price[b] < price[a] && rsi[b] > rsi[a] {
			return models.DivergenceResult{
				Type:     models.DivergenceBullish,
				Strength: rsi[b] - rsi[a],
			}
		}
	}
	if highs := localExtrema(price, false); len(highs) >= 2 {
		a, b := highs[len(highs)-2], highs[len(highs)-1]
		if price[b] > price[a] && rsi[b] < rsi[a] {
			return models.DivergenceResult{
				Type:     models.DivergenceBearish,
				Strength: rsi[a] - rsi[b],
			}
		}
	}
	return none
}

// localExtrema returns indices that are strictly below (lows) or above
// (highs) both neighbors on each side.
func localExtrema(series []float64, lows bool) []int {
	var out []int
	for i := 2; i < len(series)-2; i++ {
		v := series[i]
		if lows {
			if v < series[i-1] && v < series[i-2] && v < series[i+1] && v < series[i+2] {
				out = append(out, i)
			}
		} else {
			if v > series[i-1] && v > series[i-2] && v > series[i+1] && v > series[i+2] {
				out = append(out, i)
			}
		}
	}
	return out
}
