package indicator

// DefaultRSIPeriod is the conventional Wilder RSI period.
const DefaultRSIPeriod = 14

// RSI computes the latest Relative Strength Index value using Wilder
// smoothing. Returns 50 (neutral) when fewer than period+1 prices are
// available.
func RSI(prices []float64, period int) float64 {
	series := RSISeries(prices, period)
	if len(series) == 0 {
		return 50
	}
	return series[len(series)-1]
}

// RSISeries computes the full trailing RSI trail with Wilder smoothing.
// The first value corresponds to prices[period]; divergence detection
// aligns it against the price tail. Empty when fewer than period+1 prices
// are available.
func RSISeries(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]float64, 0, len(prices)-period)
	out = append(out, rsiValue(avgGain, avgLoss))

	p := float64(period)
	for i := period + 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
