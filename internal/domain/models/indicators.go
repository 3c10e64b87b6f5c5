package models

// HistogramTrend describes the direction of the MACD histogram.
type HistogramTrend string

const (
	HistGrowing   HistogramTrend = "growing"
	HistShrinking HistogramTrend = "shrinking"
	HistNeutral   HistogramTrend = "neutral"
)

// MACDResult holds the MACD line, signal line and histogram.
type MACDResult struct {
	MACD      float64        `json:"macd"`
	Signal    float64        `json:"signal"`
	Histogram float64        `json:"histogram"`
	Trend     HistogramTrend `json:"trend"`
}

// BollingerResult holds Bollinger band values for the latest price.
type BollingerResult struct {
	Upper     float64 `json:"upper"`
	Middle    float64 `json:"middle"`
	Lower     float64 `json:"lower"`
	Bandwidth float64 `json:"bandwidth"` // (upper-lower)/middle * 100
	PercentB  float64 `json:"percent_b"` // (price-lower)/(upper-lower)
}

// ADXTrend is the regime label derived from ADX and the directional indicators.
type ADXTrend string

const (
	ADXStrongUp   ADXTrend = "strong_up"
	ADXStrongDown ADXTrend = "strong_down"
	ADXWeakUp     ADXTrend = "weak_up"
	ADXWeakDown   ADXTrend = "weak_down"
	ADXRanging    ADXTrend = "ranging"
	ADXNone       ADXTrend = "none"
)

// ADXResult holds the ADX value, directional indicators and regime label.
type ADXResult struct {
	ADX     float64  `json:"adx"`
	PlusDI  float64  `json:"plus_di"`
	MinusDI float64  `json:"minus_di"`
	Trend   ADXTrend `json:"trend"`
}

// EMATrend is the alignment label of the 9/21/50 EMA stack.
type EMATrend string

const (
	TrendStrongUp   EMATrend = "strong_up"
	TrendUp         EMATrend = "up"
	TrendSideways   EMATrend = "sideways"
	TrendDown       EMATrend = "down"
	TrendStrongDown EMATrend = "strong_down"
	TrendUnknown    EMATrend = "unknown"
)

// TrendResult holds the EMA alignment label and its strength.
type TrendResult struct {
	Trend    EMATrend `json:"trend"`
	Strength float64  `json:"strength"`
}

// DivergenceType labels a price/RSI divergence.
type DivergenceType string

const (
	DivergenceBullish DivergenceType = "bullish"
	DivergenceBearish DivergenceType = "bearish"
	DivergenceNone    DivergenceType = "none"
)

// DivergenceResult holds the detected divergence and its RSI delta strength.
type DivergenceResult struct {
	Type     DivergenceType `json:"type"`
	Strength float64        `json:"strength"`
}

// VolumePattern labels the relationship between volume flow and price direction.
type VolumePattern string

const (
	VolumeConfirmingUp   VolumePattern = "confirming_up"
	VolumeConfirmingDown VolumePattern = "confirming_down"
	VolumeDiverging      VolumePattern = "diverging"
	VolumeNeutral        VolumePattern = "neutral"
)

// VolumeResult holds the volume profile classification.
type VolumeResult struct {
	Profile     VolumePattern `json:"profile"`
	Ratio       float64       `json:"ratio"`        // trailing window mean volume / preceding window mean
	BuyPressure float64       `json:"buy_pressure"` // percent of window volume on up-candles
}

// SqueezeResult holds the Bollinger squeeze state.
type SqueezeResult struct {
	Squeeze   bool    `json:"squeeze"`
	Direction float64 `json:"direction"` // net change of the last 5 closes; sign is the breakout hint
}

// Levels holds pivot-derived support and resistance.
type Levels struct {
	Pivot      float64 `json:"pivot"`
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
}

// Snapshot is the full indicator state the classifier evaluated,
// attached to every emitted Signal.
type Snapshot struct {
	RSI        float64          `json:"rsi"`
	MACD       MACDResult       `json:"macd"`
	Bollinger  BollingerResult  `json:"bollinger"`
	ADX        ADXResult        `json:"adx"`
	Trend      TrendResult      `json:"trend"`
	Divergence DivergenceResult `json:"divergence"`
	Volume     VolumeResult     `json:"volume"`
	Squeeze    SqueezeResult    `json:"squeeze"`
	ATR        float64          `json:"atr"`
	Levels     Levels           `json:"levels"`
}
