package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Source identifies a crawl target for pacing purposes.
type Source string

const (
	// SourceListing is the rendered listing-page site (HTML mode).
	SourceListing Source = "listing"
	// SourceMarketsAPI is the structured markets endpoint (JSON and pulse modes).
	SourceMarketsAPI Source = "markets_api"
)

// Limiter paces requests per source. It is constructed per client rather than
// held as process-wide state so every crawler instance owns its own pacing.
type Limiter struct {
	limiters map[Source]*rate.Limiter
	mu       sync.RWMutex
}

// New creates a limiter with no pacing for any source. Batch modes fetch
// sequentially with no intentional delay, so unlimited is the default.
func New() *Limiter {
	return &Limiter{limiters: make(map[Source]*rate.Limiter)}
}

// SetInterval paces the given source to at most one request per interval.
// A non-positive interval removes pacing for the source.
func (l *Limiter) SetInterval(src Source, interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if interval <= 0 {
		l.limiters[src] = rate.NewLimiter(rate.Inf, 1)
		return
	}
	l.limiters[src] = rate.NewLimiter(rate.Every(interval), 1)
}

// Wait blocks until the limiter permits a request for the given source, or
// returns the context's error if it is cancelled first. Sources without a
// configured limiter proceed immediately.
func (l *Limiter) Wait(ctx context.Context, src Source) error {
	l.mu.RLock()
	limiter, exists := l.limiters[src]
	l.mu.RUnlock()

	if !exists {
		return nil
	}
	return limiter.Wait(ctx)
}

// Allow reports whether a request for the given source may happen now.
func (l *Limiter) Allow(src Source) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[src]
	l.mu.RUnlock()

	if !exists {
		return true
	}
	return limiter.Allow()
}
