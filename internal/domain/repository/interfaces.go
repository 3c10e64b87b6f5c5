package repository

import (
	"context"
	"time"

	"SignalPulse/internal/domain/models"
)

// CandleProvider supplies ascending, strictly monotonic candle series.
// It may return fewer than limit entries for short history; the core
// treats any short series as the single degraded case.
type CandleProvider interface {
	FetchCandles(ctx context.Context, asset string, interval Interval, limit int) ([]models.Candle, error)
	Change24h(ctx context.Context, asset string) (float64, error)
}

// MoodProvider supplies the fear/greed macro context.
type MoodProvider interface {
	Mood(ctx context.Context) (models.MarketMood, error)
}

// SignalStore persists emitted signals for audit and history queries.
type SignalStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, s *models.Signal) error
	StoreBatch(ctx context.Context, signals []models.Signal) error
	Query(ctx context.Context, asset string, from, to time.Time, limit int) ([]models.Signal, error)
	Health(ctx context.Context) error
	Close() error
}

// SignalPublisher delivers signals to downstream alerting.
type SignalPublisher interface {
	Publish(ctx context.Context, s *models.Signal) error
	PublishBatch(ctx context.Context, signals []models.Signal) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordSignal(asset string, action string)
	RecordError(kind string)
	RecordConfidence(asset string, confidence float64)
	RecordScanDuration(seconds float64)
	RecordCacheResult(hit bool)
}
