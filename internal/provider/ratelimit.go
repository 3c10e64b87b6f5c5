package provider

import (
	"sync"
	"time"
)

// rateGate is a token bucket sized to the Binance request weight
// budget. One token per REST call.
type rateGate struct {
	mu     sync.Mutex
	tokens float64
	cap    float64
	refill float64 // tokens per second
	last   time.Time
}

func newRateGate(perMin int) *rateGate {
	if perMin <= 0 {
		perMin = 1100
	}
	capacity := float64(perMin)
	return &rateGate{
		tokens: capacity,
		cap:    capacity,
		refill: capacity / 60,
		last:   time.Now(),
	}
}

// allow consumes one token if available.
func (g *rateGate) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(g.last).Seconds()
	if elapsed > 0 {
		g.tokens += elapsed * g.refill
		if g.tokens > g.cap {
			g.tokens = g.cap
		}
		g.last = now
	}
	if g.tokens >= 1 {
		g.tokens--
		return true
	}
	return false
}
