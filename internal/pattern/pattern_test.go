package pattern

import (
	"testing"

	"SignalPulse/internal/domain/models"
)

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

func risingPrices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func fallingPrices(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 200 - float64(i)
	}
	return out
}

// ────────────────────────────────────────────────────────────
// EMA trend
// ────────────────────────────────────────────────────────────

func TestEMATrend_StrongUp(t *testing.T) {
	res := EMATrend(risingPrices(60))
	if res.Trend != models.TrendStrongUp {
		t.Errorf("rising series: got %q, want %q", res.Trend, models.TrendStrongUp)
	}
	if res.Strength <= 0 || res.Strength > 100 {
		t.Errorf("strength out of range: %.4f", res.Strength)
	}
}

func TestEMATrend_StrongDown(t *testing.T) {
	res := EMATrend(fallingPrices(60))
	if res.Trend != models.TrendStrongDown {
		t.Errorf("falling series: got %q, want %q", res.Trend, models.TrendStrongDown)
	}
}

func TestEMATrend_Sideways(t *testing.T) {
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 100
	}
	res := EMATrend(flat)
	if res.Trend != models.TrendSideways {
		t.Errorf("flat series: got %q, want %q", res.Trend, models.TrendSideways)
	}
}

func TestEMATrend_InsufficientData(t *testing.T) {
	res := EMATrend(risingPrices(30))
	if res.Trend != models.TrendUnknown {
		t.Errorf("short series: got %q, want %q", res.Trend, models.TrendUnknown)
	}
}

// ────────────────────────────────────────────────────────────
// RSI divergence
// ────────────────────────────────────────────────────────────

// W-shaped window: 5-point local lows at index 3 (8.0) and index 9
// (7.5), local highs at index 6 (10.0) and index 14 (10.4).
var divergencePrices = []float64{
	10, 9.5, 9, 8, 9, 9.5, 10, 9.6, 9.2, 7.5,
	9.2, 9.6, 10, 10.2, 10.4, 10.3, 10.2, 10.1, 10.0, 9.9,
}

func flatRSI(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 50
	}
	return out
}

func TestRSIDivergence_Bullish(t *testing.T) {
	// Price makes a lower low (8.0 -> 7.5) while RSI makes a higher low
	// (30 -> 38).
	rsi := flatRSI(len(divergencePrices))
	rsi[3], rsi[9] = 30, 38

	res := RSIDivergence(divergencePrices, rsi, DefaultDivergenceLookback)
	if res.Type != models.DivergenceBullish {
		t.Fatalf("got %q, want %q", res.Type, models.DivergenceBullish)
	}
	if res.Strength != 8 {
		t.Errorf("strength: got %.4f, want 8", res.Strength)
	}
}

func TestRSIDivergence_Bearish(t *testing.T) {
	// Price makes a higher high (10.0 -> 10.4) while RSI makes a lower
	// high (70 -> 62); the lows do not diverge.
	rsi := flatRSI(len(divergencePrices))
	rsi[3], rsi[9] = 30, 25
	rsi[6], rsi[14] = 70, 62

	res := RSIDivergence(divergencePrices, rsi, DefaultDivergenceLookback)
	if res.Type != models.DivergenceBearish {
		t.Fatalf("got %q, want %q", res.Type, models.DivergenceBearish)
	}
	if res.Strength != 8 {
		t.Errorf("strength: got %.4f, want 8", res.Strength)
	}
}

func TestRSIDivergence_None(t *testing.T) {
	// Monotone series has no 5-point extrema at all.
	res := RSIDivergence(risingPrices(20), flatRSI(20), DefaultDivergenceLookback)
	if res.Type != models.DivergenceNone {
		t.Errorf("monotone series: got %q, want %q", res.Type, models.DivergenceNone)
	}

	res = RSIDivergence(divergencePrices[:4], flatRSI(4), DefaultDivergenceLookback)
	if res.Type != models.DivergenceNone {
		t.Errorf("short series: got %q, want %q", res.Type, models.DivergenceNone)
	}
}

// ────────────────────────────────────────────────────────────
// Volume profile
// ────────────────────────────────────────────────────────────

func volumeCandles(priorVol, recentVol float64, recentUp bool, lookback int) []models.Candle {
	out := make([]models.Candle, 0, 2*lookback)
	for i := 0; i < lookback; i++ {
		c := 100 + float64(i)
		out = append(out, models.Candle{Open: c, High: c + 1, Low: c - 1, Close: c, Volume: priorVol})
	}
	for i := 0; i < lookback; i++ {
		c := 115 + float64(i)
		candle := models.Candle{High: c + 2, Low: c - 2, Close: c, Volume: recentVol}
		if recentUp {
			candle.Open = c - 1
		} else {
			candle.Open = c + 1
		}
		out = append(out, candle)
	}
	return out
}

func TestVolumeProfile_ConfirmingUp(t *testing.T) {
	// Rising closes, every recent candle an up candle, volume 1.5x the
	// prior window.
	res := VolumeProfile(volumeCandles(100, 150, true, DefaultVolumeLookback), DefaultVolumeLookback)
	if res.Profile != models.VolumeConfirmingUp {
		t.Errorf("got %q, want %q", res.Profile, models.VolumeConfirmingUp)
	}
	if res.Ratio < 1.49 || res.Ratio > 1.51 {
		t.Errorf("ratio: got %.4f, want 1.5", res.Ratio)
	}
	if res.BuyPressure != 100 {
		t.Errorf("buy pressure: got %.4f, want 100", res.BuyPressure)
	}
}

func TestVolumeProfile_Diverging(t *testing.T) {
	// Closes still rise across the window but every candle closes below
	// its open, so buy pressure collapses to 0.
	res := VolumeProfile(volumeCandles(100, 150, false, DefaultVolumeLookback), DefaultVolumeLookback)
	if res.Profile != models.VolumeDiverging {
		t.Errorf("got %q, want %q", res.Profile, models.VolumeDiverging)
	}
	if res.BuyPressure != 0 {
		t.Errorf("buy pressure: got %.4f, want 0", res.BuyPressure)
	}
}

func TestVolumeProfile_InsufficientData(t *testing.T) {
	res := VolumeProfile(volumeCandles(100, 150, true, 5), DefaultVolumeLookback)
	if res.Profile != models.VolumeNeutral {
		t.Errorf("short input: got %q, want %q", res.Profile, models.VolumeNeutral)
	}
	if res.Ratio != 1 || res.BuyPressure != 50 {
		t.Errorf("short input sentinels: got ratio=%.2f pressure=%.2f, want 1/50", res.Ratio, res.BuyPressure)
	}
}

// ────────────────────────────────────────────────────────────
// Bollinger squeeze
// ────────────────────────────────────────────────────────────

func TestBBSqueeze_Detects(t *testing.T) {
	// 20 volatile prices alternating 95/105, then 20 flat at 100: the
	// current bandwidth is 0 against a positive trailing mean.
	prices := make([]float64, 40)
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			prices[i] = 95
		} else {
			prices[i] = 105
		}
	}
	for i := 20; i < 40; i++ {
		prices[i] = 100
	}

	res := BBSqueeze(prices, 20)
	if !res.Squeeze {
		t.Error("contracted tail: squeeze not detected")
	}
	if res.Direction != 0 {
		t.Errorf("flat tail direction: got %.4f, want 0", res.Direction)
	}
}

func TestBBSqueeze_NoSqueezeOnSteadyVolatility(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 95
		} else {
			prices[i] = 105
		}
	}
	if res := BBSqueeze(prices, 20); res.Squeeze {
		t.Error("steady volatility: squeeze falsely detected")
	}
}

func TestBBSqueeze_InsufficientData(t *testing.T) {
	res := BBSqueeze(risingPrices(25), 20)
	if res.Squeeze || res.Direction != 0 {
		t.Errorf("short input: got %+v, want zero result", res)
	}
}
