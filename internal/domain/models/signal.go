package models

import "time"

// Action is the directional recommendation of the classifier.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is the final classifier output for one asset.
// Created fresh per classification; never mutated after construction.
type Signal struct {
	Asset      string    `json:"asset"`
	Action     Action    `json:"action"`
	Strength   string    `json:"strength"` // STRONG BUY, BUY, WEAK BUY, HOLD, ...
	Score      int       `json:"score"`    // display score, [0,100]; 50 means neutral
	RawScore   float64   `json:"raw_score"`  // internal signed score, [-100,100]
	Confidence float64   `json:"confidence"` // [0,85]
	Price      float64   `json:"price"`
	Change24h  float64   `json:"change_24h"`
	Reasons    []string  `json:"reasons"` // ordered human-readable triggers
	Indicators Snapshot  `json:"indicators"`
	Timestamp  time.Time `json:"timestamp"`
}

// MarketMood is the exogenous macro context consumed by the classifier.
type MarketMood struct {
	FearGreed int    `json:"fear_greed"` // 0 (extreme fear) .. 100 (extreme greed)
	Label     string `json:"label"`
}

// NeutralMood is the degraded fallback when the index cannot be fetched.
func NeutralMood() MarketMood {
	return MarketMood{FearGreed: 50, Label: "Neutral"}
}
