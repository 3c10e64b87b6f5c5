package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	confidence    *prometheus.GaugeVec
	scanDuration  prometheus.Histogram
	cacheRequests *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpulse_signals_total",
				Help: "Total number of signals emitted per asset and action",
			},
			[]string{"asset", "action"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		confidence: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signalpulse_signal_confidence",
				Help: "Confidence of the latest signal per asset",
			},
			[]string{"asset"},
		),
		scanDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signalpulse_scan_duration_seconds",
				Help:    "Duration of full batch scans in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		cacheRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpulse_cache_requests_total",
				Help: "Candle cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// RecordSignal records an emitted signal.
func (r *Recorder) RecordSignal(asset, action string) {
	r.signalsTotal.WithLabelValues(asset, action).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordConfidence records the confidence of the latest signal.
func (r *Recorder) RecordConfidence(asset string, confidence float64) {
	r.confidence.WithLabelValues(asset).Set(confidence)
}

// RecordScanDuration records the duration of one batch scan.
func (r *Recorder) RecordScanDuration(seconds float64) {
	r.scanDuration.Observe(seconds)
}

// RecordCacheResult records a candle cache lookup outcome.
func (r *Recorder) RecordCacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheRequests.WithLabelValues(result).Inc()
}
