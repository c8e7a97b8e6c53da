package stats

import "testing"

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.IncRequests()
	c.IncRequests()
	c.IncRetries()
	c.IncRateLimitWaits()
	c.AddMessages(42)

	snap := c.Snapshot()
	if snap.HTTPRequests != 2 {
		t.Errorf("requests = %d, want 2", snap.HTTPRequests)
	}
	if snap.HTTPRetries != 1 {
		t.Errorf("retries = %d, want 1", snap.HTTPRetries)
	}
	if snap.RateLimitWaits != 1 {
		t.Errorf("waits = %d, want 1", snap.RateLimitWaits)
	}
	if snap.MessagesFetched != 42 {
		t.Errorf("messages = %d, want 42", snap.MessagesFetched)
	}
	if snap.Elapsed < 0 {
		t.Errorf("elapsed = %v", snap.Elapsed)
	}
}
