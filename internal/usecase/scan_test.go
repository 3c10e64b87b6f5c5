package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"SignalPulse/internal/batch"
	"SignalPulse/internal/classifier"
	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
	"SignalPulse/pkg/logger"
)

type fakeProvider struct{}

func (f *fakeProvider) FetchCandles(_ context.Context, asset string, _ repository.Interval, _ int) ([]models.Candle, error) {
	candles := make([]models.Candle, 60)
	price := 100.0
	for i := range candles {
		price += 1
		candles[i] = models.Candle{
			Symbol: asset,
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1.5,
			Close:  price,
			Volume: 100,
		}
	}
	return candles, nil
}

func (f *fakeProvider) Change24h(context.Context, string) (float64, error) { return 12, nil }

type fakeMood struct{}

func (f *fakeMood) Mood(context.Context) (models.MarketMood, error) {
	return models.MarketMood{FearGreed: 70, Label: "Greed"}, nil
}

type fakeMetrics struct{}

func (f *fakeMetrics) RecordSignal(string, string)      {}
func (f *fakeMetrics) RecordError(string)               {}
func (f *fakeMetrics) RecordConfidence(string, float64) {}
func (f *fakeMetrics) RecordScanDuration(float64)       {}
func (f *fakeMetrics) RecordCacheResult(bool)           {}

type fakeStore struct {
	stored  int
	history []models.Signal
	fail    bool
}

func (f *fakeStore) Init(context.Context) error                  { return nil }
func (f *fakeStore) Store(context.Context, *models.Signal) error { return nil }
func (f *fakeStore) StoreBatch(_ context.Context, signals []models.Signal) error {
	if f.fail {
		return errors.New("store down")
	}
	f.stored += len(signals)
	return nil
}
func (f *fakeStore) Query(context.Context, string, time.Time, time.Time, int) ([]models.Signal, error) {
	return f.history, nil
}
func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

type fakePublisher struct {
	published int
}

func (f *fakePublisher) Publish(context.Context, *models.Signal) error { return nil }
func (f *fakePublisher) PublishBatch(_ context.Context, signals []models.Signal) error {
	f.published += len(signals)
	return nil
}
func (f *fakePublisher) Close() error { return nil }

func newScan(t *testing.T, store repository.SignalStore, pub repository.SignalPublisher) *ScanUseCase {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	proc := batch.New(&fakeProvider{}, &fakeMood{}, classifier.New(), &fakeMetrics{}, log, batch.Config{
		MinConfidence: 0,
		CandleLimit:   100,
	})
	return NewScanUseCase(proc, store, pub, log, []string{"BTCUSDT", "ETHUSDT"}, repository.I1h)
}

func TestScanStoresPublishesAndSnapshots(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	uc := newScan(t, store, pub)

	signals := uc.Scan(context.Background())
	if len(signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(signals))
	}
	if store.stored != 2 {
		t.Fatalf("expected 2 stored, got %d", store.stored)
	}
	if pub.published != 2 {
		t.Fatalf("expected 2 published, got %d", pub.published)
	}

	latest, at := uc.Latest()
	if len(latest) != 2 {
		t.Fatalf("expected snapshot of 2, got %d", len(latest))
	}
	if at.IsZero() {
		t.Fatal("expected scan time to be set")
	}
}

func TestScanSurvivesStoreFailure(t *testing.T) {
	uc := newScan(t, &fakeStore{fail: true}, &fakePublisher{})

	signals := uc.Scan(context.Background())
	if len(signals) != 2 {
		t.Fatalf("expected scan result despite store failure, got %d", len(signals))
	}
	latest, _ := uc.Latest()
	if len(latest) != 2 {
		t.Fatalf("expected snapshot despite store failure, got %d", len(latest))
	}
}

func TestScanWithoutStoreOrPublisher(t *testing.T) {
	uc := newScan(t, nil, nil)

	if got := len(uc.Scan(context.Background())); got != 2 {
		t.Fatalf("expected 2 signals, got %d", got)
	}
	if _, err := uc.History(context.Background(), "BTCUSDT", time.Time{}, time.Now(), 10); err == nil {
		t.Fatal("expected history error with no store")
	}
}

func TestClassifyOne(t *testing.T) {
	uc := newScan(t, nil, nil)

	sig := uc.ClassifyOne(context.Background(), "SOLUSDT")
	if sig.Asset != "SOLUSDT" {
		t.Fatalf("expected asset SOLUSDT, got %s", sig.Asset)
	}
	if sig.Action != models.ActionBuy {
		t.Fatalf("expected BUY on a steady uptrend, got %s", sig.Action)
	}
}

func TestLatestReturnsCopy(t *testing.T) {
	uc := newScan(t, nil, nil)
	uc.Scan(context.Background())

	latest, _ := uc.Latest()
	latest[0].Asset = "MUTATED"

	again, _ := uc.Latest()
	if again[0].Asset == "MUTATED" {
		t.Fatal("Latest must return a copy")
	}
}
