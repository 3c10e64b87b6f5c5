// Package provider implements the candle provider on Binance market
// data: REST klines with a cache-aside Redis layer and an optional
// WebSocket kline stream that keeps the cached tail fresh.
package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
	"SignalPulse/pkg/cache"
	pkghttp "SignalPulse/pkg/http"
	"SignalPulse/pkg/logger"
)

// Config holds the Binance REST client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration
	StaleTTL   time.Duration
	RatePerMin int
}

// Binance implements CandleProvider against the Binance spot API.
type Binance struct {
	httpc   *pkghttp.Client
	cache   cache.Service
	metrics repository.Metrics
	log     *logger.Logger
	gate    *rateGate
	cfg     Config
}

// NewBinance creates the Binance candle provider.
func NewBinance(cfg Config, cacheSvc cache.Service, metrics repository.Metrics, log *logger.Logger) *Binance {
	return &Binance{
		httpc:   pkghttp.NewClient(pkghttp.WithTimeout(cfg.Timeout)),
		cache:   cacheSvc,
		metrics: metrics,
		log:     log,
		gate:    newRateGate(cfg.RatePerMin),
		cfg:     cfg,
	}
}

func candleKey(asset string, interval repository.Interval) string {
	return fmt.Sprintf("candles:%s:%s", asset, interval)
}

func staleKey(asset string, interval repository.Interval) string {
	return candleKey(asset, interval) + ":stale"
}

// FetchCandles returns an ascending candle series for asset. Fresh
// cache entries are served directly; on upstream failure the most
// recent fully-cached series is returned instead. Cached and live
// data are never spliced into one series.
func (b *Binance) FetchCandles(ctx context.Context, asset string, interval repository.Interval, limit int) ([]models.Candle, error) {
	var cached []models.Candle
	if err := b.cache.Get(ctx, candleKey(asset, interval), &cached); err == nil && len(cached) > 0 {
		b.metrics.RecordCacheResult(true)
		return cached, nil
	}
	b.metrics.RecordCacheResult(false)

	if !b.gate.allow() {
		b.log.Warn("binance rate limit reached, serving stale candles", logger.String("asset", asset))
		return b.stale(ctx, asset, interval, fmt.Errorf("rate limit exceeded for %s", asset))
	}

	candles, err := b.fetchKlines(ctx, asset, interval, limit)
	if err != nil {
		b.log.Warn("binance klines fetch failed",
			logger.String("asset", asset),
			logger.String("interval", string(interval)),
			logger.Error(err))
		return b.stale(ctx, asset, interval, err)
	}

	b.store(ctx, asset, interval, candles)
	return candles, nil
}

// Change24h returns the 24h percent change for asset.
func (b *Binance) Change24h(ctx context.Context, asset string) (float64, error) {
	var resp struct {
		PriceChangePercent string `json:"priceChangePercent"`
	}
	err := b.httpc.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         b.cfg.BaseURL + "/api/v3/ticker/24hr",
		QueryParams: map[string][]string{"symbol": {asset}},
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("ticker 24h %s: %w", asset, err)
	}
	change, err := strconv.ParseFloat(resp.PriceChangePercent, 64)
	if err != nil {
		return 0, fmt.Errorf("parse 24h change %q: %w", resp.PriceChangePercent, err)
	}
	return change, nil
}

func (b *Binance) fetchKlines(ctx context.Context, asset string, interval repository.Interval, limit int) ([]models.Candle, error) {
	var rows [][]interface{}
	err := b.httpc.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    b.cfg.BaseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {asset},
			"interval": {string(interval)},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("klines %s: %w", asset, err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		c, err := parseKline(asset, string(interval), row)
		if err != nil {
			return nil, fmt.Errorf("klines %s: %w", asset, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// parseKline decodes one Binance kline row. The wire format is a
// mixed array: millisecond timestamps as numbers, OHLCV as strings.
func parseKline(symbol, interval string, row []interface{}) (models.Candle, error) {
	if len(row) < 7 {
		return models.Candle{}, fmt.Errorf("kline row has %d fields, need 7", len(row))
	}
	openTime, err := asMillis(row[0])
	if err != nil {
		return models.Candle{}, fmt.Errorf("open time: %w", err)
	}
	closeTime, err := asMillis(row[6])
	if err != nil {
		return models.Candle{}, fmt.Errorf("close time: %w", err)
	}

	c := models.Candle{
		Symbol:    symbol,
		Interval:  interval,
		OpenTime:  openTime,
		CloseTime: closeTime,
	}
	for i, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume} {
		v, err := asFloat(row[i+1])
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		*dst = v
	}
	return c, nil
}

func asFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func asMillis(v interface{}) (time.Time, error) {
	f, err := asFloat(v)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(f)), nil
}

// store writes both the fresh entry and the long-lived stale copy.
func (b *Binance) store(ctx context.Context, asset string, interval repository.Interval, candles []models.Candle) {
	if err := b.cache.Set(ctx, candleKey(asset, interval), candles, b.cfg.CacheTTL); err != nil {
		b.log.Warn("candle cache set failed", logger.String("asset", asset), logger.Error(err))
	}
	if err := b.cache.Set(ctx, staleKey(asset, interval), candles, b.cfg.StaleTTL); err != nil {
		b.log.Warn("stale cache set failed", logger.String("asset", asset), logger.Error(err))
	}
}

// stale serves the last fully-cached series, or the original fetch
// error when no stale copy exists.
func (b *Binance) stale(ctx context.Context, asset string, interval repository.Interval, cause error) ([]models.Candle, error) {
	var candles []models.Candle
	if err := b.cache.Get(ctx, staleKey(asset, interval), &candles); err == nil && len(candles) > 0 {
		b.log.Info("serving stale candles", logger.String("asset", asset), logger.Int("count", len(candles)))
		return candles, nil
	}
	return nil, cause
}
