// Package usecase orchestrates scans: batch classification, persistence
// of the emitted signals, downstream publishing, and the latest-result
// snapshot the API serves.
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SignalPulse/internal/batch"
	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
	"SignalPulse/pkg/logger"
)

// ScanUseCase runs full market scans and retains the most recent
// result. Store and publisher are optional; a nil dependency simply
// skips that side effect.
type ScanUseCase struct {
	processor *batch.Processor
	store     repository.SignalStore
	publisher repository.SignalPublisher
	log       *logger.Logger

	assets   []string
	interval repository.Interval

	mu        sync.RWMutex
	latest    []models.Signal
	scannedAt time.Time
}

// NewScanUseCase creates the scan use case.
func NewScanUseCase(
	processor *batch.Processor,
	store repository.SignalStore,
	publisher repository.SignalPublisher,
	log *logger.Logger,
	assets []string,
	interval repository.Interval,
) *ScanUseCase {
	return &ScanUseCase{
		processor: processor,
		store:     store,
		publisher: publisher,
		log:       log,
		assets:    assets,
		interval:  interval,
	}
}

// Scan classifies all configured assets, persists and publishes the
// filtered signals, and replaces the latest snapshot. Persistence and
// publishing failures are logged, never fatal; the snapshot always
// reflects the scan.
func (uc *ScanUseCase) Scan(ctx context.Context) []models.Signal {
	signals := uc.processor.Run(ctx, uc.assets, uc.interval)

	if uc.store != nil && len(signals) > 0 {
		if err := uc.store.StoreBatch(ctx, signals); err != nil {
			uc.log.Error("signal store failed", logger.Error(err), logger.Int("count", len(signals)))
		}
	}
	if uc.publisher != nil && len(signals) > 0 {
		if err := uc.publisher.PublishBatch(ctx, signals); err != nil {
			uc.log.Error("signal publish failed", logger.Error(err), logger.Int("count", len(signals)))
		}
	}

	uc.mu.Lock()
	uc.latest = signals
	uc.scannedAt = time.Now()
	uc.mu.Unlock()

	return signals
}

// Latest returns the signals of the most recent scan and its time.
func (uc *ScanUseCase) Latest() ([]models.Signal, time.Time) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	out := make([]models.Signal, len(uc.latest))
	copy(out, uc.latest)
	return out, uc.scannedAt
}

// Critical narrows the latest scan to the conservative subset.
func (uc *ScanUseCase) Critical() []models.Signal {
	signals, _ := uc.Latest()
	return uc.processor.Critical(signals)
}

// ClassifyOne classifies a single asset on demand, bypassing the
// snapshot. The result is not persisted.
func (uc *ScanUseCase) ClassifyOne(ctx context.Context, asset string) models.Signal {
	return uc.processor.One(ctx, asset, uc.interval)
}

// History reads persisted signals for one asset from the store.
func (uc *ScanUseCase) History(ctx context.Context, asset string, from, to time.Time, limit int) ([]models.Signal, error) {
	if uc.store == nil {
		return nil, fmt.Errorf("signal history is not enabled")
	}
	return uc.store.Query(ctx, asset, from, to, limit)
}

// Assets returns the configured scan universe.
func (uc *ScanUseCase) Assets() []string {
	out := make([]string, len(uc.assets))
	copy(out, uc.assets)
	return out
}
