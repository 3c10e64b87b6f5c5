package indicator

import "SignalPulse/internal/domain/models"

// DefaultPivotWindow is the trailing window used for pivot levels.
const DefaultPivotWindow = 20

// SupportResistance computes classic pivot levels over the trailing
// window: pivot = (H+L+C)/3 with H the window high, L the window low and
// C the last close; support = 2*pivot - H, resistance = 2*pivot - L.
// Returns a zero result when no candles are available.
func SupportResistance(candles []models.Candle, window int) models.Levels {
	if len(candles) == 0 || window <= 0 {
		return models.Levels{}
	}
	if len(candles) > window {
		candles = candles[len(candles)-window:]
	}

	high := candles[0].High
	low := candles[0].Low
	for _, c := range candles[1:] {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	close := candles[len(candles)-1].Close

	pivot := (high + low + close) / 3
	return models.Levels{
		Pivot:      pivot,
		Support:    2*pivot - high,
		Resistance: 2*pivot - low,
	}
}
