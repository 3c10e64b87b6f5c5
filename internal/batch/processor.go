// Package batch runs the classifier across many assets concurrently and
// applies the confidence filter, the descending confidence sort and the
// stricter critical filter to the results.
package batch

import (
	"context"
	"sort"
	"sync"
	"time"

	"SignalPulse/internal/classifier"
	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
	"SignalPulse/pkg/logger"
)

// Config carries the filter parameters. They are configuration, not
// constants: callers tune the floor and the critical bounds per
// deployment.
type Config struct {
	// MinConfidence is the inclusion floor for the filtered result set.
	MinConfidence float64 `yaml:"min_confidence" default:"30"`
	// CandleLimit is the series length requested per asset.
	CandleLimit int `yaml:"candle_limit" default:"100"`
	// Critical bounds the conservative subset.
	Critical CriticalThresholds `yaml:"critical"`
}

// CriticalThresholds are the per-action bounds of the critical filter.
// Raw score bounds are magnitudes; the sell side is applied negated.
type CriticalThresholds struct {
	BuyConfidence  float64 `yaml:"buy_confidence" default:"60"`
	BuyRawScore    float64 `yaml:"buy_raw_score" default:"40"`
	SellConfidence float64 `yaml:"sell_confidence" default:"60"`
	SellRawScore   float64 `yaml:"sell_raw_score" default:"40"`
}

// Processor fans the classifier out over a set of assets. Classification
// itself is pure; the only suspension point is the per-asset candle
// fetch, so assets are processed in parallel with no shared state.
type Processor struct {
	provider   repository.CandleProvider
	mood       repository.MoodProvider
	classifier *classifier.Classifier
	metrics    repository.Metrics
	log        *logger.Logger
	cfg        Config
}

func New(
	provider repository.CandleProvider,
	mood repository.MoodProvider,
	cls *classifier.Classifier,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg Config,
) *Processor {
	return &Processor{
		provider:   provider,
		mood:       mood,
		classifier: cls,
		metrics:    metrics,
		log:        log,
		cfg:        cfg,
	}
}

// Run classifies every asset, drops signals under the confidence floor
// and returns the remainder sorted by descending confidence, ties in
// input order. A failed fetch degrades that one asset to the
// insufficient-data HOLD path and never aborts the others.
func (p *Processor) Run(ctx context.Context, assets []string, interval repository.Interval) []models.Signal {
	start := time.Now()

	mood := p.fetchMood(ctx)

	results := make([]models.Signal, len(assets))
	var wg sync.WaitGroup
	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset string) {
			defer wg.Done()
			results[i] = p.classifyOne(ctx, asset, interval, mood)
		}(i, asset)
	}
	wg.Wait()

	for _, s := range results {
		p.metrics.RecordSignal(s.Asset, string(s.Action))
		p.metrics.RecordConfidence(s.Asset, s.Confidence)
	}
	p.metrics.RecordScanDuration(time.Since(start).Seconds())

	filtered := FilterByConfidence(results, p.cfg.MinConfidence)
	SortByConfidence(filtered)

	p.log.Info("batch scan complete",
		logger.Int("assets", len(assets)),
		logger.Int("passed_filter", len(filtered)),
		logger.Duration("took", time.Since(start)))
	return filtered
}

// One classifies a single asset on demand, outside the batch cycle.
func (p *Processor) One(ctx context.Context, asset string, interval repository.Interval) models.Signal {
	return p.classifyOne(ctx, asset, interval, p.fetchMood(ctx))
}

// Critical applies the stricter per-action bounds; the result is always
// a subset of the non-HOLD signals.
func (p *Processor) Critical(signals []models.Signal) []models.Signal {
	return CriticalFilter(signals, p.cfg.Critical)
}

func (p *Processor) classifyOne(ctx context.Context, asset string, interval repository.Interval, mood models.MarketMood) models.Signal {
	candles, err := p.provider.FetchCandles(ctx, asset, interval, p.cfg.CandleLimit)
	if err != nil {
		p.log.Warn("candle fetch failed, degrading to HOLD",
			logger.String("asset", asset), logger.Error(err))
		p.metrics.RecordError("candle_fetch")
		candles = nil
	}

	change24h := 0.0
	if err == nil {
		change24h, err = p.provider.Change24h(ctx, asset)
		if err != nil {
			p.log.Debug("24h change unavailable", logger.String("asset", asset), logger.Error(err))
			p.metrics.RecordError("ticker_fetch")
			change24h = 0
		}
	}

	return p.classifier.Classify(asset, candles, change24h, mood)
}

func (p *Processor) fetchMood(ctx context.Context) models.MarketMood {
	mood, err := p.mood.Mood(ctx)
	if err != nil {
		p.log.Debug("fear/greed unavailable, using neutral", logger.Error(err))
		p.metrics.RecordError("mood_fetch")
		return models.NeutralMood()
	}
	return mood
}

// FilterByConfidence keeps signals at or above the floor, preserving
// order.
func FilterByConfidence(signals []models.Signal, min float64) []models.Signal {
	out := make([]models.Signal, 0, len(signals))
	for _, s := range signals {
		if s.Confidence >= min {
			out = append(out, s)
		}
	}
	return out
}

// SortByConfidence sorts in place, descending, stable so equal
// confidence keeps input order.
func SortByConfidence(signals []models.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Confidence > signals[j].Confidence
	})
}

// CriticalFilter keeps only actionable signals meeting their action's
// stricter confidence and raw score bounds.
func CriticalFilter(signals []models.Signal, t CriticalThresholds) []models.Signal {
	out := make([]models.Signal, 0, len(signals))
	for _, s := range signals {
		switch s.Action {
		case models.ActionBuy:
			if s.Confidence >= t.BuyConfidence && s.RawScore >= t.BuyRawScore {
				out = append(out, s)
			}
		case models.ActionSell:
			if s.Confidence >= t.SellConfidence && s.RawScore <= -t.SellRawScore {
				out = append(out, s)
			}
		}
	}
	return out
}
