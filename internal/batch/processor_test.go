package batch

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"SignalPulse/internal/classifier"
	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
	"SignalPulse/pkg/logger"
)

// ────────────────────────────────────────────────────────────
// Fakes
// ────────────────────────────────────────────────────────────

type fakeProvider struct {
	mu      sync.Mutex
	candles map[string][]models.Candle
	fails   map[string]bool
	calls   []string
}

func (f *fakeProvider) FetchCandles(_ context.Context, asset string, _ repository.Interval, _ int) ([]models.Candle, error) {
	f.mu.Lock()
	f.calls = append(f.calls, asset)
	f.mu.Unlock()
	if f.fails[asset] {
		return nil, errors.New("upstream unavailable")
	}
	return f.candles[asset], nil
}

func (f *fakeProvider) Change24h(context.Context, string) (float64, error) {
	return 12, nil
}

type fakeMood struct {
	mood models.MarketMood
	err  error
}

func (f *fakeMood) Mood(context.Context) (models.MarketMood, error) {
	return f.mood, f.err
}

type fakeMetrics struct {
	mu      sync.Mutex
	signals int
	errors  map[string]int
}

func (f *fakeMetrics) RecordSignal(string, string) {
	f.mu.Lock()
	f.signals++
	f.mu.Unlock()
}

func (f *fakeMetrics) RecordError(kind string) {
	f.mu.Lock()
	if f.errors == nil {
		f.errors = map[string]int{}
	}
	f.errors[kind]++
	f.mu.Unlock()
}

func (f *fakeMetrics) RecordConfidence(string, float64) {}
func (f *fakeMetrics) RecordScanDuration(float64)      {}
func (f *fakeMetrics) RecordCacheResult(bool)          {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func risingCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = models.Candle{Open: c - 0.5, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	return out
}

func sig(asset string, action models.Action, raw, conf float64) models.Signal {
	return models.Signal{Asset: asset, Action: action, RawScore: raw, Confidence: conf}
}

// ────────────────────────────────────────────────────────────
// Processor
// ────────────────────────────────────────────────────────────

func TestRun_FailureIsolation(t *testing.T) {
	provider := &fakeProvider{
		candles: map[string][]models.Candle{
			"BTCUSDT": risingCandles(60),
			"SOLUSDT": risingCandles(60),
		},
		fails: map[string]bool{"ETHUSDT": true},
	}
	metrics := &fakeMetrics{}
	p := New(provider, &fakeMood{mood: models.NeutralMood()}, classifier.New(), metrics, testLogger(t),
		Config{MinConfidence: 0, CandleLimit: 100})

	signals := p.Run(context.Background(), []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}, repository.I1h)

	if len(signals) != 3 {
		t.Fatalf("got %d signals, want 3", len(signals))
	}
	if metrics.signals != 3 {
		t.Errorf("recorded %d signals, want 3", metrics.signals)
	}
	if metrics.errors["candle_fetch"] != 1 {
		t.Errorf("candle_fetch errors: got %d, want 1", metrics.errors["candle_fetch"])
	}

	var failed *models.Signal
	for i := range signals {
		if signals[i].Asset == "ETHUSDT" {
			failed = &signals[i]
		}
	}
	if failed == nil {
		t.Fatal("failed asset missing from results")
	}
	if failed.Action != models.ActionHold || failed.Confidence != 15 {
		t.Errorf("failed asset: got action=%q conf=%.1f, want HOLD/15", failed.Action, failed.Confidence)
	}
	if len(failed.Reasons) == 0 || !strings.Contains(failed.Reasons[0], "insufficient data") {
		t.Errorf("failed asset reasons: %v", failed.Reasons)
	}

	if !sort.SliceIsSorted(signals, func(i, j int) bool {
		return signals[i].Confidence > signals[j].Confidence
	}) {
		t.Error("output not sorted by descending confidence")
	}
}

func TestRun_MoodFallsBackToNeutral(t *testing.T) {
	provider := &fakeProvider{candles: map[string][]models.Candle{"BTCUSDT": risingCandles(60)}}
	metrics := &fakeMetrics{}
	p := New(provider, &fakeMood{err: errors.New("index down")}, classifier.New(), metrics, testLogger(t),
		Config{MinConfidence: 0, CandleLimit: 100})

	signals := p.Run(context.Background(), []string{"BTCUSDT"}, repository.I1h)
	if len(signals) != 1 {
		t.Fatalf("got %d signals, want 1", len(signals))
	}
	if metrics.errors["mood_fetch"] != 1 {
		t.Errorf("mood_fetch errors: got %d, want 1", metrics.errors["mood_fetch"])
	}
}

// ────────────────────────────────────────────────────────────
// Filters and sort
// ────────────────────────────────────────────────────────────

func TestFilterByConfidence(t *testing.T) {
	in := []models.Signal{
		sig("A", models.ActionBuy, 30, 50),
		sig("B", models.ActionHold, 0, 29.9),
		sig("C", models.ActionSell, -30, 30),
	}
	out := FilterByConfidence(in, 30)
	if len(out) != 2 || out[0].Asset != "A" || out[1].Asset != "C" {
		t.Errorf("got %v, want A and C", out)
	}
}

func TestSortByConfidence_StableOnTies(t *testing.T) {
	in := []models.Signal{
		sig("A", models.ActionBuy, 30, 40),
		sig("B", models.ActionBuy, 30, 70),
		sig("C", models.ActionBuy, 30, 40),
		sig("D", models.ActionBuy, 30, 55),
	}
	SortByConfidence(in)
	want := []string{"B", "D", "A", "C"}
	for i, w := range want {
		if in[i].Asset != w {
			t.Fatalf("position %d: got %s, want %s (order %v)", i, in[i].Asset, w, in)
		}
	}
}

func TestCriticalFilter(t *testing.T) {
	th := CriticalThresholds{BuyConfidence: 60, BuyRawScore: 40, SellConfidence: 60, SellRawScore: 40}
	in := []models.Signal{
		sig("strong-buy", models.ActionBuy, 45, 65),
		sig("weak-buy", models.ActionBuy, 30, 65),
		sig("low-conf-buy", models.ActionBuy, 45, 50),
		sig("strong-sell", models.ActionSell, -50, 70),
		sig("weak-sell", models.ActionSell, -30, 70),
		sig("hold", models.ActionHold, 0, 85),
	}
	out := CriticalFilter(in, th)
	if len(out) != 2 {
		t.Fatalf("got %d signals, want 2: %v", len(out), out)
	}
	if out[0].Asset != "strong-buy" || out[1].Asset != "strong-sell" {
		t.Errorf("got %s/%s, want strong-buy/strong-sell", out[0].Asset, out[1].Asset)
	}
	for _, s := range out {
		if s.Action == models.ActionHold {
			t.Errorf("critical filter retained a HOLD signal: %v", s)
		}
	}
}

func TestCriticalFilter_SubsetOfActionable(t *testing.T) {
	in := []models.Signal{
		sig("A", models.ActionHold, 60, 85),
		sig("B", models.ActionHold, -60, 85),
	}
	if out := CriticalFilter(in, CriticalThresholds{}); len(out) != 0 {
		t.Errorf("HOLD signals must never be critical, got %v", out)
	}
}
