package classifier

import (
	"math"
	"strings"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
)

var testClock = func() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// trendCandles builds n candles whose closes move by step per bar, with
// small wicks and constant volume. Opens sit against the move direction
// so rising bars are up candles and falling bars are down candles.
func trendCandles(n int, start, step float64) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		c := start + step*float64(i)
		candle := models.Candle{
			Symbol: "TESTUSDT", Interval: "1h",
			High: c + 1, Low: c - 1, Close: c, Volume: 100,
		}
		candle.Open = c - step/2
		out[i] = candle
	}
	return out
}

func flatCandles(n int, price float64) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = models.Candle{
			Symbol: "TESTUSDT", Interval: "1h",
			Open: price, High: price, Low: price, Close: price, Volume: 100,
		}
	}
	return out
}

// ────────────────────────────────────────────────────────────
// Scenarios
// ────────────────────────────────────────────────────────────

func TestClassify_SustainedUptrendBuys(t *testing.T) {
	// 60 strictly increasing candles with stable volume.
	c := NewWithClock(testClock)
	sig := c.Classify("BTCUSDT", trendCandles(60, 100, 1), 12, models.NeutralMood())

	if sig.Action != models.ActionBuy {
		t.Fatalf("action: got %q, want BUY (raw=%.1f conf=%.1f reasons=%v)",
			sig.Action, sig.RawScore, sig.Confidence, sig.Reasons)
	}
	if sig.RawScore < 25 {
		t.Errorf("raw score: got %.1f, want >= 25", sig.RawScore)
	}
	if sig.Indicators.RSI <= 70 {
		t.Errorf("RSI in sustained uptrend: got %.1f, want > 70", sig.Indicators.RSI)
	}
	if trend := sig.Indicators.Trend.Trend; trend != models.TrendUp && trend != models.TrendStrongUp {
		t.Errorf("trend: got %q, want up or strong_up", trend)
	}
	if sig.Indicators.Divergence.Type != models.DivergenceNone {
		t.Errorf("divergence on monotone series: got %q, want none", sig.Indicators.Divergence.Type)
	}
}

func TestClassify_SustainedDowntrendSells(t *testing.T) {
	c := NewWithClock(testClock)
	sig := c.Classify("BTCUSDT", trendCandles(60, 200, -1), -12, models.NeutralMood())

	if sig.Action != models.ActionSell {
		t.Fatalf("action: got %q, want SELL (raw=%.1f conf=%.1f reasons=%v)",
			sig.Action, sig.RawScore, sig.Confidence, sig.Reasons)
	}
	if sig.RawScore > -25 {
		t.Errorf("raw score: got %.1f, want <= -25", sig.RawScore)
	}
}

func TestClassify_FlatSeriesHolds(t *testing.T) {
	// Open == high == low == close: the RSI avgLoss==0 path must not
	// divide by zero and the result stays HOLD.
	c := NewWithClock(testClock)
	sig := c.Classify("BTCUSDT", flatCandles(60, 100), 0, models.NeutralMood())

	if sig.Action != models.ActionHold {
		t.Fatalf("action: got %q, want HOLD (raw=%.1f reasons=%v)", sig.Action, sig.RawScore, sig.Reasons)
	}
	if math.IsNaN(sig.Indicators.RSI) || math.IsInf(sig.Indicators.RSI, 0) {
		t.Errorf("RSI on flat series: got %v", sig.Indicators.RSI)
	}
	if math.Abs(sig.Indicators.MACD.Histogram) > 1e-9 {
		t.Errorf("histogram on flat series: got %.6f, want 0", sig.Indicators.MACD.Histogram)
	}
	if sig.Indicators.Bollinger.Bandwidth != 0 {
		t.Errorf("bandwidth on flat series: got %.6f, want 0", sig.Indicators.Bollinger.Bandwidth)
	}
}

func TestClassify_InsufficientDataDegradesToHold(t *testing.T) {
	c := NewWithClock(testClock)
	for _, candles := range [][]models.Candle{
		nil,
		trendCandles(30, 100, 1),
		trendCandles(49, 200, -5),
	} {
		sig := c.Classify("BTCUSDT", candles, 40, models.MarketMood{FearGreed: 5, Label: "Extreme Fear"})
		if sig.Action != models.ActionHold {
			t.Errorf("%d candles: action %q, want HOLD", len(candles), sig.Action)
		}
		if sig.Score != 50 || sig.RawScore != 0 || sig.Confidence != 15 {
			t.Errorf("%d candles: got score=%d raw=%.1f conf=%.1f, want 50/0/15",
				len(candles), sig.Score, sig.RawScore, sig.Confidence)
		}
		if len(sig.Reasons) != 1 || !strings.Contains(sig.Reasons[0], "insufficient data") {
			t.Errorf("%d candles: reasons %v, want single insufficient-data reason", len(candles), sig.Reasons)
		}
	}
}

// ────────────────────────────────────────────────────────────
// Invariants
// ────────────────────────────────────────────────────────────

func TestClassify_OutputBounds(t *testing.T) {
	c := NewWithClock(testClock)
	inputs := [][]models.Candle{
		trendCandles(60, 100, 1),
		trendCandles(60, 200, -1),
		flatCandles(60, 100),
		trendCandles(120, 50, 0.5),
	}
	for _, candles := range inputs {
		for _, fg := range []int{0, 50, 100} {
			sig := c.Classify("TESTUSDT", candles, 7, models.MarketMood{FearGreed: fg})
			if sig.Confidence < 0 || sig.Confidence > 85 {
				t.Errorf("confidence out of [0,85]: %.1f", sig.Confidence)
			}
			if sig.RawScore < -100 || sig.RawScore > 100 {
				t.Errorf("raw score out of [-100,100]: %.1f", sig.RawScore)
			}
			if sig.Score < 0 || sig.Score > 100 {
				t.Errorf("display score out of [0,100]: %d", sig.Score)
			}
			want := int(math.Round(clamp((sig.RawScore+100)/2, 0, 100)))
			if sig.Score != want {
				t.Errorf("display score: got %d, want %d for raw %.1f", sig.Score, want, sig.RawScore)
			}
		}
	}
}

func TestResolveAction_Boundaries(t *testing.T) {
	cases := []struct {
		raw, conf float64
		want      models.Action
	}{
		{25, 0, models.ActionBuy},
		{24.9, 39, models.ActionHold},
		{15, 40, models.ActionBuy},
		{15, 39.9, models.ActionHold},
		{14.9, 85, models.ActionHold},
		{-25, 0, models.ActionSell},
		{-15, 40, models.ActionSell},
		{-15, 39.9, models.ActionHold},
		{0, 85, models.ActionHold},
	}
	for _, tc := range cases {
		if got := resolveAction(tc.raw, tc.conf); got != tc.want {
			t.Errorf("resolveAction(%.1f, %.1f): got %q, want %q", tc.raw, tc.conf, got, tc.want)
		}
	}
}

func TestDisplayScore_NeutralIsFifty(t *testing.T) {
	if got := displayScore(0); got != 50 {
		t.Errorf("displayScore(0): got %d, want 50", got)
	}
	if got := displayScore(100); got != 100 {
		t.Errorf("displayScore(100): got %d, want 100", got)
	}
	if got := displayScore(-100); got != 0 {
		t.Errorf("displayScore(-100): got %d, want 0", got)
	}
}

func TestStrengthLabel(t *testing.T) {
	cases := []struct {
		action    models.Action
		raw, conf float64
		want      string
	}{
		{models.ActionBuy, 55, 65, "STRONG BUY"},
		{models.ActionBuy, 40, 50, "BUY"},
		{models.ActionBuy, 26, 30, "WEAK BUY"},
		{models.ActionSell, -55, 65, "STRONG SELL"},
		{models.ActionSell, -26, 30, "WEAK SELL"},
		{models.ActionHold, 5, 80, "HOLD"},
	}
	for _, tc := range cases {
		if got := strengthLabel(tc.action, tc.raw, tc.conf); got != tc.want {
			t.Errorf("strengthLabel(%q, %.0f, %.0f): got %q, want %q", tc.action, tc.raw, tc.conf, got, tc.want)
		}
	}
}

func TestClassify_TimestampUsesClock(t *testing.T) {
	c := NewWithClock(testClock)
	sig := c.Classify("BTCUSDT", trendCandles(60, 100, 1), 0, models.NeutralMood())
	if !sig.Timestamp.Equal(testClock()) {
		t.Errorf("timestamp: got %v, want %v", sig.Timestamp, testClock())
	}
}

// ────────────────────────────────────────────────────────────
// Factors
// ────────────────────────────────────────────────────────────

func TestMACDHistogramSign_NoiseFloor(t *testing.T) {
	cases := []struct {
		macd models.MACDResult
		want int
	}{
		{models.MACDResult{MACD: 3.5, Histogram: 1e-12}, 0},
		{models.MACDResult{MACD: 3.5, Histogram: -1e-12}, 0},
		{models.MACDResult{MACD: 3.5, Histogram: 0.4}, 1},
		{models.MACDResult{MACD: -3.5, Histogram: -0.4}, -1},
		{models.MACDResult{MACD: 0, Histogram: 0.001}, 1},
		{models.MACDResult{MACD: 0, Histogram: 0}, 0},
	}
	for _, tc := range cases {
		if got := macdHistogramSign(tc.macd); got != tc.want {
			t.Errorf("macdHistogramSign(hist=%g, macd=%g): got %d, want %d",
				tc.macd.Histogram, tc.macd.MACD, got, tc.want)
		}
	}
}

func TestMACDFactor_IgnoresConvergedHistogram(t *testing.T) {
	// EMAs settled on a constant-slope series: the histogram holds only
	// float noise and its sign must not score.
	s := &scorer{}
	s.macdFactor(models.MACDResult{MACD: 2.8, Histogram: -3e-13, Trend: models.HistShrinking}, 1.2)
	if s.raw != 0 || len(s.reasons) != 0 {
		t.Errorf("converged histogram scored: raw=%.2f reasons=%v", s.raw, s.reasons)
	}
}

func TestADXMultiplier_ScalesDirectionalFactors(t *testing.T) {
	macd := models.MACDResult{MACD: 1.5, Histogram: 0.6, Trend: models.HistGrowing}
	cases := []struct {
		m    float64
		want float64
	}{
		{adxStrongMultiplier, 14.4},
		{adxMultiplier, 12},
		{adxRangingPenalty, 7.2},
	}
	for _, tc := range cases {
		s := &scorer{}
		s.macdFactor(macd, tc.m)
		if math.Abs(s.raw-tc.want) > 1e-9 {
			t.Errorf("macdFactor with m=%.1f: raw %.2f, want %.2f", tc.m, s.raw, tc.want)
		}
	}

	oversold := &scorer{}
	oversold.rsiFactor(25, models.TrendSideways, adxRangingPenalty)
	if math.Abs(oversold.raw-7.2) > 1e-9 {
		t.Errorf("rsiFactor(25) with ranging multiplier: raw %.2f, want 7.2", oversold.raw)
	}
}

func TestDivergenceFactor_WeightCappedAtTwenty(t *testing.T) {
	mild := &scorer{}
	mild.divergenceFactor(models.DivergenceResult{Type: models.DivergenceBullish, Strength: 4})
	if math.Abs(mild.raw-14) > 1e-9 {
		t.Errorf("strength 4: raw %.2f, want 14", mild.raw)
	}

	extreme := &scorer{}
	extreme.divergenceFactor(models.DivergenceResult{Type: models.DivergenceBearish, Strength: 37})
	if math.Abs(extreme.raw+20) > 1e-9 {
		t.Errorf("strength 37: raw %.2f, want -20", extreme.raw)
	}
}

func TestBollingerFactor_BandWalkSuppressedInStrongTrend(t *testing.T) {
	bb := models.BollingerResult{PercentB: 0.91}
	var sq models.SqueezeResult

	walk := &scorer{}
	walk.bollingerFactor(bb, sq, models.TrendStrongUp)
	if walk.raw != 0 {
		t.Errorf("band walk in strong uptrend scored: raw %.2f", walk.raw)
	}
	if len(walk.reasons) != 1 || !strings.Contains(walk.reasons[0], "strong uptrend intact") {
		t.Errorf("unexpected reasons: %v", walk.reasons)
	}

	weak := &scorer{}
	weak.bollingerFactor(bb, sq, models.TrendUp)
	if math.Abs(weak.raw+8) > 1e-9 {
		t.Errorf("near-band penalty outside strong trend: raw %.2f, want -8", weak.raw)
	}

	low := &scorer{}
	low.bollingerFactor(models.BollingerResult{PercentB: -0.05}, sq, models.TrendStrongDown)
	if low.raw != 0 {
		t.Errorf("band ride in strong downtrend scored: raw %.2f", low.raw)
	}
}
