package discord

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum delay between consecutive API requests, a defensive
// floor that holds regardless of rate-limit headers. It is a single-token
// bucket: one request may pass immediately, then tokens refill at 1/minDelay.
type Pacer struct {
	mu       sync.Mutex
	tokens   float64
	rate     float64 // tokens per second
	lastTime time.Time
}

func NewPacer(minDelay time.Duration) *Pacer {
	if minDelay <= 0 {
		return &Pacer{tokens: 1, rate: 0}
	}
	return &Pacer{
		tokens:   1,
		rate:     float64(time.Second) / float64(minDelay),
		lastTime: time.Now(),
	}
}

// Wait blocks until the next request may be issued or ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	for {
		p.mu.Lock()
		if p.rate == 0 {
			p.mu.Unlock()
			return nil
		}
		now := time.Now()
		elapsed := now.Sub(p.lastTime).Seconds()
		p.tokens += elapsed * p.rate
		if p.tokens > 1 {
			p.tokens = 1
		}
		p.lastTime = now

		if p.tokens >= 1.0 {
			p.tokens -= 1.0
			p.mu.Unlock()
			return nil
		}

		waitSec := (1.0 - p.tokens) / p.rate
		p.mu.Unlock()

		timer := time.NewTimer(time.Duration(waitSec * float64(time.Second)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
