package indicator

import (
	"math"

	"SignalPulse/internal/domain/models"
)

// DefaultADXPeriod is the conventional Wilder ADX period.
const DefaultADXPeriod = 14

// ADX computes the Average Directional Index and the directional
// indicators with Wilder smoothing. Returns a zero result labeled "none"
// when fewer than period+1 candles are available.
func ADX(candles []models.Candle, period int) models.ADXResult {
	if period <= 0 || len(candles) < period+1 {
		return models.ADXResult{Trend: models.ADXNone}
	}

	n := len(candles) - 1
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i <= n; i++ {
		cur, prev := candles[i], candles[i-1]
		tr[i-1] = trueRange(cur, prev)

		up := cur.High - prev.High
		down := prev.Low - cur.Low
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}

	// Wilder-smoothed TR and DM; seeds are the means of the first period
	// samples, then avg = (avg*(period-1) + x) / period.
	sTR := wilderSeed(tr, period)
	sPlus := wilderSeed(plusDM, period)
	sMinus := wilderSeed(minusDM, period)

	p := float64(period)
	var dx []float64
	appendDX := func() {
		if sTR == 0 {
			return
		}
		plusDI := sPlus / sTR * 100
		minusDI := sMinus / sTR * 100
		if sum := plusDI + minusDI; sum > 0 {
			dx = append(dx, math.Abs(plusDI-minusDI)/sum*100)
		}
	}
	appendDX()
	for i := period; i < n; i++ {
		sTR = (sTR*(p-1) + tr[i]) / p
		sPlus = (sPlus*(p-1) + plusDM[i]) / p
		sMinus = (sMinus*(p-1) + minusDM[i]) / p
		appendDX()
	}

	res := models.ADXResult{}
	if sTR > 0 {
		res.PlusDI = sPlus / sTR * 100
		res.MinusDI = sMinus / sTR * 100
	}
	res.ADX = wilderAverage(dx, period)
	res.Trend = adxTrend(res)
	return res
}

// ATR computes the simple mean of the trailing period true ranges
// (non-Wilder variant, used for volatility normalization). Returns 0
// when fewer than period+1 candles are available.
func ATR(candles []models.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}
	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += trueRange(candles[i], candles[i-1])
	}
	return sum / float64(period)
}

func trueRange(cur, prev models.Candle) float64 {
	hl := cur.High - cur.Low
	hc := math.Abs(cur.High - prev.Close)
	lc := math.Abs(cur.Low - prev.Close)
	return math.Max(hl, math.Max(hc, lc))
}

// wilderSeed averages the first period samples; callers continue the
// recursive smoothing from there.
func wilderSeed(series []float64, period int) float64 {
	if len(series) < period {
		period = len(series)
	}
	if period == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series[:period] {
		sum += v
	}
	return sum / float64(period)
}

// wilderAverage smooths a full series: mean seed over the first period
// values, Wilder recursion over the rest. Falls back to the plain mean
// when fewer than period samples exist.
func wilderAverage(series []float64, period int) float64 {
	if len(series) == 0 {
		return 0
	}
	if len(series) < period {
		sum := 0.0
		for _, v := range series {
			sum += v
		}
		return sum / float64(len(series))
	}
	avg := wilderSeed(series, period)
	p := float64(period)
	for _, v := range series[period:] {
		avg = (avg*(p-1) + v) / p
	}
	return avg
}

func adxTrend(r models.ADXResult) models.ADXTrend {
	switch {
	case r.ADX >= 25 && r.PlusDI > r.MinusDI:
		return models.ADXStrongUp
	case r.ADX >= 25:
		return models.ADXStrongDown
	case r.ADX >= 20 && r.PlusDI > r.MinusDI:
		return models.ADXWeakUp
	case r.ADX >= 20:
		return models.ADXWeakDown
	default:
		return models.ADXRanging
	}
}
