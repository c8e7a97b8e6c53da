// Package stats tracks per-session fetch counters. Trimmed from a full
// metrics collector: a fetch session is one foreground run, so counters are
// read once at the end instead of being exposed over HTTP.
package stats

import (
	"sync/atomic"
	"time"
)

// Collector aggregates counters for one fetch session.
type Collector struct {
	startTime time.Time

	httpRequests    atomic.Int64
	httpRetries     atomic.Int64
	rateLimitWaits  atomic.Int64
	messagesFetched atomic.Int64
}

func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Uptime returns how long the collector has been running.
func (c *Collector) Uptime() time.Duration {
	return time.Since(c.startTime)
}

func (c *Collector) IncRequests()       { c.httpRequests.Add(1) }
func (c *Collector) IncRetries()        { c.httpRetries.Add(1) }
func (c *Collector) IncRateLimitWaits() { c.rateLimitWaits.Add(1) }
func (c *Collector) AddMessages(n int)  { c.messagesFetched.Add(int64(n)) }

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	HTTPRequests    int64
	HTTPRetries     int64
	RateLimitWaits  int64
	MessagesFetched int64
	Elapsed         time.Duration
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		HTTPRequests:    c.httpRequests.Load(),
		HTTPRetries:     c.httpRetries.Load(),
		RateLimitWaits:  c.rateLimitWaits.Load(),
		MessagesFetched: c.messagesFetched.Load(),
		Elapsed:         c.Uptime(),
	}
}
