// Package feargreed fetches the alternative.me Fear & Greed index,
// the macro mood input to classification.
package feargreed

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

const moodCacheKey = "mood:feargreed"

// Client implements MoodProvider on the alternative.me index API.
type Client struct {
	httpc    *pkghttp.Client
	cache    cache.Service
	log      *logger.Logger
	url      string
	cacheTTL time.Duration
}

// New creates the Fear & Greed client.
func New(url string, timeout, cacheTTL time.Duration, cacheSvc cache.Service, log *logger.Logger) repository.MoodProvider {
	return &Client{
		httpc:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		cache:    cacheSvc,
		log:      log,
		url:      url,
		cacheTTL: cacheTTL,
	}
}

type indexResponse struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
	} `json:"data"`
}

// Mood returns the current index value. The result is cached; on any
// failure the neutral mood is returned so a scan can still proceed.
func (c *Client) Mood(ctx context.Context) (models.MarketMood, error) {
	var cached models.MarketMood
	if err := c.cache.Get(ctx, moodCacheKey, &cached); err == nil && cached.Label != "" {
		return cached, nil
	}

	mood, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("fear/greed fetch failed, using neutral mood", logger.Error(err))
		return models.NeutralMood(), err
	}

	if err := c.cache.Set(ctx, moodCacheKey, mood, c.cacheTTL); err != nil {
		c.log.Warn("mood cache set failed", logger.Error(err))
	}
	return mood, nil
}

func (c *Client) fetch(ctx context.Context) (models.MarketMood, error) {
	var resp indexResponse
	err := c.httpc.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.url,
		QueryParams: map[string][]string{"limit": {"1"}},
	}, &resp)
	if err != nil {
		return models.MarketMood{}, fmt.Errorf("fear/greed request: %w", err)
	}
	if len(resp.Data) == 0 {
		return models.MarketMood{}, fmt.Errorf("fear/greed response has no data")
	}

	value, err := strconv.Atoi(resp.Data[0].Value)
	if err != nil {
		return models.MarketMood{}, fmt.Errorf("parse fear/greed value %q: %w", resp.Data[0].Value, err)
	}
	if value < 0 || value > 100 {
		return models.MarketMood{}, fmt.Errorf("fear/greed value %d out of range", value)
	}
	return models.MarketMood{FearGreed: value, Label: resp.Data[0].Classification}, nil
}
