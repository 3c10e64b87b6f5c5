package pattern

import "SignalPulse/internal/domain/models"

// DefaultVolumeLookback is the trailing window for volume analysis; the
// ratio compares it against the preceding window of the same length.
const DefaultVolumeLookback = 14

// Volume profile gates.
const (
	buyPressureBull = 55.0
	buyPressureBear = 45.0
	volumeRatioMin  = 1.1
)

// VolumeProfile compares the trailing lookback window against the
// preceding one. Ratio is the mean-volume ratio between the two windows;
// buy pressure is the volume share of up candles (close >= open) in the
// trailing window. Price direction, buy pressure and an elevated ratio
// must agree for a confirming label; price against pressure is diverging.
// Needs 2*lookback candles, otherwise neutral.
func VolumeProfile(candles []models.Candle, lookback int) models.VolumeResult {
	neutral := models.VolumeResult{Profile: models.VolumeNeutral, Ratio: 1, BuyPressure: 50}
	if lookback <= 0 || len(candles) < 2*lookback {
		return neutral
	}

	recent := candles[len(candles)-lookback:]
	prior := candles[len(candles)-2*lookback : len(candles)-lookback]

	recentMean := meanVolume(recent)
	priorMean := meanVolume(prior)

	res := models.VolumeResult{Ratio: 1, BuyPressure: 50}
	if priorMean > 0 {
		res.Ratio = recentMean / priorMean
	}

	upVolume, total := 0.0, 0.0
	for _, c := range recent {
		total += c.Volume
		if c.Close >= c.Open {
			upVolume += c.Volume
		}
	}
	if total > 0 {
		res.BuyPressure = upVolume / total * 100
	}

	priceUp := recent[len(recent)-1].Close > recent[0].Close
	priceDown := recent[len(recent)-1].Close < recent[0].Close

	switch {
	case priceUp && res.BuyPressure > buyPressureBull && res.Ratio > volumeRatioMin:
		res.Profile = models.VolumeConfirmingUp
	case priceDown && res.BuyPressure < buyPressureBear && res.Ratio > volumeRatioMin:
		res.Profile = models.VolumeConfirmingDown
	case priceUp && res.BuyPressure < buyPressureBear,
		priceDown && res.BuyPressure > buyPressureBull:
		res.Profile = models.VolumeDiverging
	default:
		res.Profile = models.VolumeNeutral
	}
	return res
}

func meanVolume(candles []models.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range candles {
		sum += c.Volume
	}
	return sum / float64(len(candles))
}
