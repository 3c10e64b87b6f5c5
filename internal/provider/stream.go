package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
	"SignalPulse/pkg/cache"
	"SignalPulse/pkg/logger"
)

const (
	streamReconnectDelay = 5 * time.Second
	streamPingInterval   = 30 * time.Second
)

// KlineStream keeps cached candle series current between REST
// refreshes. Closed klines from the Binance WebSocket replace or
// extend the cached tail; open klines are ignored so every cached
// candle is final.
type KlineStream struct {
	url      string
	symbols  []string
	interval repository.Interval
	cache    cache.Service
	cacheTTL time.Duration
	staleTTL time.Duration
	log      *logger.Logger

	conn *websocket.Conn
}

// NewKlineStream creates the Binance kline stream.
func NewKlineStream(url string, symbols []string, interval repository.Interval, cacheSvc cache.Service, cacheTTL, staleTTL time.Duration, log *logger.Logger) *KlineStream {
	return &KlineStream{
		url:      url,
		symbols:  symbols,
		interval: interval,
		cache:    cacheSvc,
		cacheTTL: cacheTTL,
		staleTTL: staleTTL,
		log:      log,
	}
}

// Run connects, subscribes, and consumes kline events until ctx is
// cancelled, reconnecting on read failures.
func (s *KlineStream) Run(ctx context.Context) {
	for {
		if err := s.connect(ctx); err != nil {
			s.log.Warn("kline stream connect failed", logger.Error(err))
		} else {
			s.consume(ctx)
		}

		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-time.After(streamReconnectDelay):
		}
	}
}

func (s *KlineStream) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("kline stream dial: %w", err)
	}
	s.conn = conn

	params := make([]string, len(s.symbols))
	for i, sym := range s.symbols {
		params[i] = fmt.Sprintf("%s@kline_%s", strings.ToLower(sym), s.interval)
	}
	sub := map[string]interface{}{"method": "SUBSCRIBE", "params": params, "id": 1}
	if err := conn.WriteJSON(sub); err != nil {
		_ = conn.Close()
		return fmt.Errorf("kline stream subscribe: %w", err)
	}

	s.log.Info("kline stream connected", logger.Strings("params", params))
	return nil
}

type klineEvent struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Kline  struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Interval  string `json:"i"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Close     string `json:"c"`
		Volume    string `json:"v"`
		Final     bool   `json:"x"`
	} `json:"k"`
}

func (s *KlineStream) consume(ctx context.Context) {
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go s.pingLoop(pingCtx)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, b, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn("kline stream read failed", logger.Error(err))
			}
			return
		}

		var ev klineEvent
		if err := json.Unmarshal(b, &ev); err != nil || ev.Event != "kline" {
			// subscription acks and other frames
			continue
		}
		if !ev.Kline.Final {
			continue
		}
		s.apply(ctx, ev)
	}
}

func (s *KlineStream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.conn != nil {
				_ = s.conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

// apply folds one closed kline into the cached series. Without a
// cached series there is nothing to extend; the next REST refresh
// seeds it.
func (s *KlineStream) apply(ctx context.Context, ev klineEvent) {
	candle, err := streamCandle(ev)
	if err != nil {
		s.log.Warn("kline parse failed", logger.String("symbol", ev.Symbol), logger.Error(err))
		return
	}

	key := candleKey(ev.Symbol, s.interval)
	var candles []models.Candle
	if err := s.cache.Get(ctx, key, &candles); err != nil || len(candles) == 0 {
		return
	}

	last := len(candles) - 1
	switch {
	case candles[last].OpenTime.Equal(candle.OpenTime):
		candles[last] = candle
	case candle.OpenTime.After(candles[last].OpenTime):
		candles = append(candles[1:], candle)
	default:
		return
	}

	if err := s.cache.Set(ctx, key, candles, s.cacheTTL); err != nil {
		s.log.Warn("kline cache update failed", logger.String("symbol", ev.Symbol), logger.Error(err))
		return
	}
	_ = s.cache.Set(ctx, staleKey(ev.Symbol, s.interval), candles, s.staleTTL)
}

func streamCandle(ev klineEvent) (models.Candle, error) {
	c := models.Candle{
		Symbol:    ev.Symbol,
		Interval:  ev.Kline.Interval,
		OpenTime:  time.UnixMilli(ev.Kline.OpenTime),
		CloseTime: time.UnixMilli(ev.Kline.CloseTime),
	}
	for _, f := range []struct {
		raw string
		dst *float64
	}{
		{ev.Kline.Open, &c.Open},
		{ev.Kline.High, &c.High},
		{ev.Kline.Low, &c.Low},
		{ev.Kline.Close, &c.Close},
		{ev.Kline.Volume, &c.Volume},
	} {
		v, err := asFloat(f.raw)
		if err != nil {
			return models.Candle{}, err
		}
		*f.dst = v
	}
	return c, nil
}

// Close closes the stream connection.
func (s *KlineStream) Close() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
}
