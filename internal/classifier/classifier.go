// Package classifier maps one asset's candle series plus exogenous
// context (24h change, fear/greed index) to a single immutable Signal.
//
// The scorer starts from a raw score of 0 and a confidence of 0: both
// must be earned by corroborating evidence. Evaluation walks a fixed
// factor order; every triggered factor appends a human-readable reason.
// All weights are hand-tuned literal constants.
package classifier

import (
	"fmt"
	"math"
	"time"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/indicator"
	"SignalPulse/internal/pattern"
)

// MinCandles is the minimum series length for a full classification.
// Shorter input short-circuits to the degraded HOLD signal.
const MinCandles = 50

// Degraded HOLD output values.
const (
	degradedScore      = 50
	degradedConfidence = 15
)

// Raw score weights.
const (
	trendStrongWeight = 20
	trendWeight       = 10

	rsiExtremeWeight = 15
	rsiStrongWeight  = 12
	rsiBandWeight    = 8

	macdStrongWeight = 12
	macdWeight       = 8

	divergenceBase = 10
	divergenceCap  = 20

	bbOutsideWeight = 15
	bbNearWeight    = 8
	squeezeWeight   = 10

	levelWeight = 8

	momentumStrongWeight = 5
	momentumWeight       = 4

	moodStrongWeight = 3
	moodWeight       = 1
)

// Confidence deltas.
const (
	confTrendStrong = 15
	confTrend       = 8
	confSideways    = 3

	confADXStrong = 10
	confADX       = 5

	confRSIExtreme = 10
	confRSIStrong  = 6
	confRSIBand    = 4

	confMACDStrong = 8
	confMACD       = 4

	confDivergence = 12

	confBBOutside = 8
	confBBNear    = 5
	confSqueeze   = 6

	confVolumeAgree   = 8
	confVolumeDiverge = 8
	confVolumeExtreme = 4
	confVolumeThin    = 4

	confLevel = 5

	confMomentumStrong = 3
	confMomentum       = 2

	confAgreement = 10
	confConflict  = 10
	confCeiling   = 85
)

// ADX regime multiplier applied to the RSI and MACD factors.
const (
	adxStrongRegime     = 30.0
	adxTrendingRegime   = 20.0
	adxStrongMultiplier = 1.2
	adxMultiplier       = 1.0
	adxRangingPenalty   = 0.6
)

// Action resolution thresholds on the raw score.
const (
	actionRawThreshold     = 25.0
	actionSoftRawThreshold = 15.0
	actionSoftConfidence   = 40.0
)

// Classifier evaluates candle series into signals. The clock is
// injectable for deterministic tests.
type Classifier struct {
	nowFn func() time.Time
}

// New returns a Classifier using the wall clock.
func New() *Classifier {
	return &Classifier{nowFn: time.Now}
}

// NewWithClock returns a Classifier with a fixed clock source.
func NewWithClock(nowFn func() time.Time) *Classifier {
	return &Classifier{nowFn: nowFn}
}

// Classify produces one Signal for the asset. It never fails: fewer than
// MinCandles candles yields a fully-formed low-confidence HOLD signal
// regardless of price content.
func (c *Classifier) Classify(asset string, candles []models.Candle, change24h float64, mood models.MarketMood) models.Signal {
	if len(candles) < MinCandles {
		return c.degraded(asset, candles, change24h)
	}

	closes := models.Closes(candles)
	price := closes[len(closes)-1]
	rsiSeries := indicator.RSISeries(closes, indicator.DefaultRSIPeriod)

	snap := models.Snapshot{
		RSI:       indicator.RSI(closes, indicator.DefaultRSIPeriod),
		MACD:      indicator.MACD(closes, indicator.DefaultMACDFast, indicator.DefaultMACDSlow, indicator.DefaultMACDSignal),
		Bollinger: indicator.BollingerBands(closes, indicator.DefaultBollingerPeriod, 2),
		ADX:       indicator.ADX(candles, indicator.DefaultADXPeriod),
		Trend:     pattern.EMATrend(closes),
		Volume:    pattern.VolumeProfile(candles, pattern.DefaultVolumeLookback),
		Squeeze:   pattern.BBSqueeze(closes, indicator.DefaultBollingerPeriod),
		ATR:       indicator.ATR(candles, indicator.DefaultADXPeriod),
		Levels:    indicator.SupportResistance(candles, indicator.DefaultPivotWindow),
	}
	snap.Divergence = pattern.RSIDivergence(closes, rsiSeries, pattern.DefaultDivergenceLookback)

	s := &scorer{}

	s.trendFactor(snap.Trend)
	m := s.regimeFactor(snap.ADX)
	s.rsiFactor(snap.RSI, snap.Trend.Trend, m)
	s.macdFactor(snap.MACD, m)
	s.divergenceFactor(snap.Divergence)
	s.bollingerFactor(snap.Bollinger, snap.Squeeze, snap.Trend.Trend)
	s.volumeFactor(snap.Volume)
	s.levelFactor(price, snap.Levels)
	s.momentumFactor(change24h)
	s.moodFactor(mood)
	s.agreementCheck(snap)

	raw := clamp(s.raw, -100, 100)
	confidence := clamp(s.confidence, 0, confCeiling)
	action := resolveAction(raw, confidence)

	return models.Signal{
		Asset:      asset,
		Action:     action,
		Strength:   strengthLabel(action, raw, confidence),
		Score:      displayScore(raw),
		RawScore:   raw,
		Confidence: confidence,
		Price:      price,
		Change24h:  change24h,
		Reasons:    s.reasons,
		Indicators: snap,
		Timestamp:  c.nowFn(),
	}
}

func (c *Classifier) degraded(asset string, candles []models.Candle, change24h float64) models.Signal {
	price := 0.0
	if len(candles) > 0 {
		price = candles[len(candles)-1].Close
	}
	return models.Signal{
		Asset:      asset,
		Action:     models.ActionHold,
		Strength:   "HOLD",
		Score:      degradedScore,
		RawScore:   0,
		Confidence: degradedConfidence,
		Price:      price,
		Change24h:  change24h,
		Reasons:    []string{fmt.Sprintf("insufficient data: %d candles, need %d", len(candles), MinCandles)},
		Indicators: models.Snapshot{RSI: 50},
		Timestamp:  c.nowFn(),
	}
}

// scorer accumulates the signed raw score, the confidence and the
// ordered reason list across the factor walk.
type scorer struct {
	raw        float64
	confidence float64
	reasons    []string
}

func (s *scorer) add(raw, confidence float64, format string, args ...any) {
	s.raw += raw
	s.confidence += confidence
	s.reasons = append(s.reasons, fmt.Sprintf(format, args...))
}

// Factor 1: EMA trend context.
func (s *scorer) trendFactor(t models.TrendResult) {
	switch t.Trend {
	case models.TrendStrongUp:
		s.add(trendStrongWeight, confTrendStrong, "strong uptrend: price above rising 9/21/50 EMA stack")
	case models.TrendUp:
		s.add(trendWeight, confTrend, "uptrend: price above 21 EMA")
	case models.TrendStrongDown:
		s.add(-trendStrongWeight, confTrendStrong, "strong downtrend: price below falling 9/21/50 EMA stack")
	case models.TrendDown:
		s.add(-trendWeight, confTrend, "downtrend: price below 21 EMA")
	case models.TrendSideways:
		s.add(0, confSideways, "sideways market")
	}
}

// Factor 2: ADX regime gate. Returns the multiplier applied to the
// directional RSI and MACD factors.
func (s *scorer) regimeFactor(adx models.ADXResult) float64 {
	switch {
	case adx.ADX >= adxStrongRegime:
		s.add(0, confADXStrong, "strong trend regime (ADX %.1f)", adx.ADX)
		return adxStrongMultiplier
	case adx.ADX >= adxTrendingRegime:
		s.add(0, confADX, "trending regime (ADX %.1f)", adx.ADX)
		return adxMultiplier
	default:
		s.add(0, 0, "ranging regime (ADX %.1f): directional weight reduced", adx.ADX)
		return adxRangingPenalty
	}
}

// Factor 3: RSI, trend-conditional. Counter-trend extremes in a strong
// trend are treated as momentum and do not score against it; the mid
// bands only score when the EMA trend agrees with their direction.
func (s *scorer) rsiFactor(rsi float64, trend models.EMATrend, m float64) {
	switch {
	case rsi < 20:
		if trend == models.TrendStrongDown {
			s.add(0, confRSIBand, "deeply oversold (RSI %.1f) but strong downtrend intact", rsi)
			return
		}
		s.add(rsiExtremeWeight*m, confRSIExtreme, "deeply oversold (RSI %.1f)", rsi)
	case rsi < 30:
		if trend == models.TrendStrongDown {
			s.add(0, confRSIBand, "oversold (RSI %.1f) but strong downtrend intact", rsi)
			return
		}
		s.add(rsiStrongWeight*m, confRSIStrong, "oversold (RSI %.1f)", rsi)
	case rsi < 40:
		if trend == models.TrendUp || trend == models.TrendStrongUp {
			s.add(rsiBandWeight*m, confRSIBand, "RSI pullback (%.1f) in uptrend", rsi)
		} else {
			s.add(0, confRSIBand, "RSI slightly weak (%.1f)", rsi)
		}
	case rsi > 80:
		if trend == models.TrendStrongUp {
			s.add(0, confRSIBand, "deeply overbought (RSI %.1f) but strong uptrend intact", rsi)
			return
		}
		s.add(-rsiExtremeWeight*m, confRSIExtreme, "deeply overbought (RSI %.1f)", rsi)
	case rsi > 70:
		if trend == models.TrendStrongUp {
			s.add(0, confRSIBand, "overbought (RSI %.1f) but strong uptrend intact", rsi)
			return
		}
		s.add(-rsiStrongWeight*m, confRSIStrong, "overbought (RSI %.1f)", rsi)
	case rsi > 60:
		if trend == models.TrendDown || trend == models.TrendStrongDown {
			s.add(-rsiBandWeight*m, confRSIBand, "RSI rally (%.1f) in downtrend", rsi)
		} else {
			s.add(0, confRSIBand, "RSI slightly elevated (%.1f)", rsi)
		}
	}
}

// Histogram magnitudes below this fraction of the MACD line count as
// converged to zero.
const macdNoiseFloor = 1e-6

// macdHistogramSign reports the effective histogram sign. On a
// constant-slope series both EMAs settle onto the price line and the
// histogram decays to float noise around zero; the sign of that noise
// is not a crossover.
func macdHistogramSign(macd models.MACDResult) int {
	if math.Abs(macd.Histogram) <= macdNoiseFloor*math.Abs(macd.MACD) {
		return 0
	}
	switch {
	case macd.Histogram > 0:
		return 1
	case macd.Histogram < 0:
		return -1
	}
	return 0
}

// Factor 4: MACD crossover. A growing histogram on the bullish side, or
// a shrinking one on the bearish side, is accelerating momentum and
// carries the heavier weight.
func (s *scorer) macdFactor(macd models.MACDResult, m float64) {
	switch macdHistogramSign(macd) {
	case 1:
		if macd.Trend == models.HistGrowing {
			s.add(macdStrongWeight*m, confMACDStrong, "MACD bullish, momentum accelerating")
		} else {
			s.add(macdWeight*m, confMACD, "MACD bullish, momentum fading")
		}
	case -1:
		if macd.Trend == models.HistShrinking {
			s.add(-macdStrongWeight*m, confMACDStrong, "MACD bearish, momentum accelerating")
		} else {
			s.add(-macdWeight*m, confMACD, "MACD bearish, momentum fading")
		}
	}
}

// Factor 5: RSI divergence, the single heaviest per-factor weight.
func (s *scorer) divergenceFactor(d models.DivergenceResult) {
	weight := math.Min(divergenceCap, divergenceBase+d.Strength)
	switch d.Type {
	case models.DivergenceBullish:
		s.add(weight, confDivergence, "bullish RSI divergence (strength %.1f)", d.Strength)
	case models.DivergenceBearish:
		s.add(-weight, confDivergence, "bearish RSI divergence (strength %.1f)", d.Strength)
	}
}

// Factor 6: Bollinger position, or breakout direction while squeezed.
// Riding the band in a strong aligned trend is band walk, not reversal
// pressure, and scores nothing against the trend; the same suppression
// rsiFactor applies to counter-trend extremes.
func (s *scorer) bollingerFactor(bb models.BollingerResult, sq models.SqueezeResult, trend models.EMATrend) {
	if sq.Squeeze {
		switch {
		case sq.Direction > 0:
			s.add(squeezeWeight, confSqueeze, "volatility squeeze, upward pressure")
		case sq.Direction < 0:
			s.add(-squeezeWeight, confSqueeze, "volatility squeeze, downward pressure")
		default:
			s.add(0, confSqueeze, "volatility squeeze, direction unclear")
		}
		return
	}
	switch {
	case bb.PercentB <= 0:
		if trend == models.TrendStrongDown {
			s.add(0, confBBNear, "price below lower Bollinger band but strong downtrend intact")
			return
		}
		s.add(bbOutsideWeight, confBBOutside, "price below lower Bollinger band")
	case bb.PercentB >= 1:
		if trend == models.TrendStrongUp {
			s.add(0, confBBNear, "price above upper Bollinger band but strong uptrend intact")
			return
		}
		s.add(-bbOutsideWeight, confBBOutside, "price above upper Bollinger band")
	case bb.PercentB < 0.2:
		if trend == models.TrendStrongDown {
			s.add(0, confBBNear, "price near lower Bollinger band but strong downtrend intact")
			return
		}
		s.add(bbNearWeight, confBBNear, "price near lower Bollinger band")
	case bb.PercentB > 0.8:
		if trend == models.TrendStrongUp {
			s.add(0, confBBNear, "price near upper Bollinger band but strong uptrend intact")
			return
		}
		s.add(-bbNearWeight, confBBNear, "price near upper Bollinger band")
	}
}

// Factor 7: volume confirmation. Confidence-only: volume validates or
// undermines conviction already established, never moves the raw score.
func (s *scorer) volumeFactor(v models.VolumeResult) {
	switch {
	case v.Profile == models.VolumeConfirmingUp && s.raw > 0:
		s.add(0, confVolumeAgree, "volume confirms the advance (pressure %.0f%%)", v.BuyPressure)
	case v.Profile == models.VolumeConfirmingDown && s.raw < 0:
		s.add(0, confVolumeAgree, "volume confirms the decline (pressure %.0f%%)", v.BuyPressure)
	case v.Profile == models.VolumeDiverging:
		s.add(0, -confVolumeDiverge, "volume diverging from price")
	}
	switch {
	case v.Ratio > 2.0:
		s.add(0, confVolumeExtreme, "volume surge (%.1fx)", v.Ratio)
	case v.Ratio < 0.5:
		s.add(0, -confVolumeThin, "thin volume (%.1fx)", v.Ratio)
	}
}

// Factor 8: pivot-level proximity. Skipped on a degenerate flat range.
func (s *scorer) levelFactor(price float64, l models.Levels) {
	if l.Resistance <= l.Support {
		return
	}
	if l.Support > 0 && price >= l.Support && (price-l.Support)/l.Support <= 0.02 {
		s.add(levelWeight, confLevel, "price within 2%% of support %.4f", l.Support)
	}
	if price <= l.Resistance && (l.Resistance-price)/l.Resistance <= 0.01 {
		s.add(-levelWeight, confLevel, "price within 1%% of resistance %.4f", l.Resistance)
	}
}

// Factor 9: 24h momentum, deliberately weighted below the technical
// factors.
func (s *scorer) momentumFactor(change24h float64) {
	sign := 1.0
	if change24h < 0 {
		sign = -1
	}
	switch {
	case math.Abs(change24h) > 10:
		s.add(sign*momentumStrongWeight, confMomentumStrong, "strong 24h momentum (%+.1f%%)", change24h)
	case math.Abs(change24h) > 5:
		s.add(sign*momentumWeight, confMomentum, "24h momentum (%+.1f%%)", change24h)
	}
}

// Factor 10: fear/greed contrarian nudge, capped so the macro index can
// never dominate.
func (s *scorer) moodFactor(mood models.MarketMood) {
	switch {
	case mood.FearGreed < 10:
		s.add(moodStrongWeight, 0, "extreme fear (%d): contrarian buy pressure", mood.FearGreed)
	case mood.FearGreed < 25:
		s.add(moodWeight, 0, "fear (%d): mild contrarian buy pressure", mood.FearGreed)
	case mood.FearGreed > 90:
		s.add(-moodStrongWeight, 0, "extreme greed (%d): contrarian sell pressure", mood.FearGreed)
	case mood.FearGreed > 75:
		s.add(-moodWeight, 0, "greed (%d): mild contrarian sell pressure", mood.FearGreed)
	}
}

// agreementCheck tallies independent bullish and bearish indications.
// Two or more hits on both sides is a conflict; four or more on either
// side is an alignment bonus.
func (s *scorer) agreementCheck(snap models.Snapshot) {
	bullish, bearish := 0, 0

	switch snap.Trend.Trend {
	case models.TrendUp, models.TrendStrongUp:
		bullish++
	case models.TrendDown, models.TrendStrongDown:
		bearish++
	}
	if snap.RSI < 45 {
		bullish++
	} else if snap.RSI > 55 {
		bearish++
	}
	if sign := macdHistogramSign(snap.MACD); sign > 0 {
		bullish++
	} else if sign < 0 {
		bearish++
	}
	switch snap.Divergence.Type {
	case models.DivergenceBullish:
		bullish++
	case models.DivergenceBearish:
		bearish++
	}
	if snap.Bollinger.PercentB <= 0.2 {
		bullish++
	} else if snap.Bollinger.PercentB >= 0.8 {
		bearish++
	}
	if snap.Volume.BuyPressure > 55 {
		bullish++
	} else if snap.Volume.BuyPressure < 45 {
		bearish++
	}

	if bullish >= 2 && bearish >= 2 {
		s.add(0, -confConflict, "mixed signals: %d bullish vs %d bearish indications", bullish, bearish)
	} else if bullish >= 4 || bearish >= 4 {
		s.add(0, confAgreement, "broad indicator alignment (%d bullish, %d bearish)", bullish, bearish)
	}
}

// resolveAction applies the thresholds to the raw score: a hard raw
// threshold, or a softer one backed by sufficient confidence.
func resolveAction(raw, confidence float64) models.Action {
	switch {
	case raw >= actionRawThreshold,
		raw >= actionSoftRawThreshold && confidence >= actionSoftConfidence:
		return models.ActionBuy
	case raw <= -actionRawThreshold,
		raw <= -actionSoftRawThreshold && confidence >= actionSoftConfidence:
		return models.ActionSell
	default:
		return models.ActionHold
	}
}

// displayScore remaps the signed raw score onto [0,100] for display.
func displayScore(raw float64) int {
	return int(math.Round(clamp((raw+100)/2, 0, 100)))
}

// strengthLabel grades the action by raw score magnitude and confidence.
func strengthLabel(action models.Action, raw, confidence float64) string {
	if action == models.ActionHold {
		return "HOLD"
	}
	abs := math.Abs(raw)
	switch {
	case abs >= 50 && confidence >= 60:
		return "STRONG " + string(action)
	case abs >= 35 && confidence >= 45:
		return string(action)
	default:
		return "WEAK " + string(action)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
