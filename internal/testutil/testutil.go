package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeClient is a scripted stand-in for the source client. Responses are
// served in order; the last one repeats once the script runs out.
type FakeClient struct {
	mu        sync.Mutex
	responses []FakeResponse
	calls     []string
}

// FakeResponse is one scripted fetch outcome.
type FakeResponse struct {
	Body []byte
	Err  error
}

// NewFakeClient creates a client that serves the given responses in order.
func NewFakeClient(responses ...FakeResponse) *FakeClient {
	return &FakeClient{responses: responses}
}

// Fetch records the target and returns the next scripted response.
func (c *FakeClient) Fetch(_ context.Context, target string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, target)
	idx := len(c.calls) - 1
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	r := c.responses[idx]
	return r.Body, r.Err
}

// Calls returns every target fetched so far, in order.
func (c *FakeClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// FakeClock is a deterministic clock for testing polling cadence without
// wall-clock waits. After advances the clock by the requested duration and
// fires immediately, recording the wait so tests can assert pacing.
type FakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

// NewFakeClock creates a clock starting at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake instant.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After advances the clock by d and delivers the new instant at once.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.waits = append(c.waits, d)
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Advance moves the clock forward without a wait, simulating elapsed work.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Waits returns every duration passed to After, in order.
func (c *FakeClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}
