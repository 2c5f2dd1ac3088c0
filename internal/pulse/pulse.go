package pulse

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"cryptocrawler/internal/crawl"
	"cryptocrawler/internal/normalize"
)

const (
	// DefaultInterval is the cadence floor between request starts.
	DefaultInterval = 1 * time.Second

	// smaWindowSize is how many recent prices feed the moving average.
	smaWindowSize = 10

	// maxBackoff caps the wait after repeated failed ticks.
	maxBackoff = 60 * time.Second

	// failureAlertThreshold is the consecutive-failure count that escalates
	// the log level. Polling continues regardless.
	failureAlertThreshold = 5
)

// Fetcher is the slice of the source client the pulse loop needs.
type Fetcher interface {
	Fetch(ctx context.Context, target string) ([]byte, error)
}

// TickFunc receives one tick's run and the current moving average. The run
// is handed over at the end of each tick; the loop keeps no reference to it.
type TickFunc func(run *crawl.CrawlRun, sma float64)

// Config wires a pulse crawler.
type Config struct {
	// BaseURL is the simple-price endpoint.
	BaseURL string
	// AssetID is the source's identifier for the polled asset, e.g. "bitcoin".
	AssetID string
	// Symbol is the canonical symbol reported in records, e.g. "BTC".
	Symbol string
	// Interval is the minimum time between request starts. Defaults to 1s.
	Interval time.Duration
	// Clock defaults to the system clock.
	Clock Clock
	// OnTick, when set, is called with each tick's finished run.
	OnTick TickFunc
}

// Crawler polls one asset's price forever on a fixed cadence. Each tick is
// one conceptual run: fetch, parse, normalize, report, then wait out the
// remainder of the interval. Ticks never overlap.
type Crawler struct {
	client Fetcher
	parse  ParsePayload
	cfg    Config
}

// ParsePayload matches the simple-price payload parser's signature.
type ParsePayload func(payload []byte, assetID string) (float64, time.Time, error)

// New creates a pulse crawler. parse extracts the price from one payload;
// pass jsonfeed.ParseSimplePrice outside tests.
func New(client Fetcher, parse ParsePayload, cfg Config) *Crawler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	return &Crawler{client: client, parse: parse, cfg: cfg}
}

// Run polls until ctx is cancelled. Cancellation is cooperative: it is
// checked between ticks, never mid-fetch, and already-reported ticks are
// unaffected. A failed tick is recorded in its run and the loop continues,
// backing off exponentially until the next success.
func (c *Crawler) Run(ctx context.Context) error {
	target := c.target()
	clock := c.cfg.Clock
	prices := newWindow(smaWindowSize)

	backoff := c.cfg.Interval
	consecutiveFailures := 0
	var lastFetched time.Time

	for tick := 1; ; tick++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		tickStart := clock.Now()
		run, price, ok := c.doTick(ctx, target, tick, &lastFetched)

		wait := c.cfg.Interval - clock.Now().Sub(tickStart)
		if ok {
			prices.push(price)
			consecutiveFailures = 0
			backoff = c.cfg.Interval
			slog.Info("tick",
				"symbol", c.cfg.Symbol,
				"price", price,
				"sma", prices.average())
		} else {
			consecutiveFailures++
			slog.Warn("tick failed", "symbol", c.cfg.Symbol, "tick", tick)
			if consecutiveFailures >= failureAlertThreshold {
				slog.Error("consecutive tick failures, continuing to poll",
					"count", consecutiveFailures)
			}
			wait = backoff
			backoff = min(backoff*2, maxBackoff)
		}

		if c.cfg.OnTick != nil {
			c.cfg.OnTick(run, prices.average())
		}

		if wait > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-clock.After(wait):
			}
		}
	}
}

// doTick performs one fetch-parse-normalize pass and finalizes its run.
func (c *Crawler) doTick(ctx context.Context, target string, tick int, lastFetched *time.Time) (*crawl.CrawlRun, float64, bool) {
	ref := fmt.Sprintf("tick %d", tick)
	collector := crawl.NewCollector(crawl.ModeContinuousPulse)
	collector.Attempt()

	payload, err := c.client.Fetch(ctx, target)
	if err != nil {
		collector.Error(ref, err)
		run, _ := collector.Finalize()
		return run, 0, false
	}

	price, _, err := c.parse(payload, c.cfg.AssetID)
	if err != nil {
		collector.Error(ref, err)
		run, _ := collector.Finalize()
		return run, 0, false
	}

	// fetched_at must never move backwards for the same symbol across ticks.
	fetchedAt := c.cfg.Clock.Now()
	if fetchedAt.Before(*lastFetched) {
		fetchedAt = *lastFetched
	}

	rec, err := normalize.New().Normalize(crawl.RawRecord{
		Rank:   "1",
		Symbol: c.cfg.Symbol,
		Name:   c.cfg.AssetID,
		Price:  strconv.FormatFloat(price, 'f', -1, 64),
		Ref:    ref,
	}, fetchedAt)
	if err != nil {
		collector.Error(ref, err)
		run, _ := collector.Finalize()
		return run, 0, false
	}

	*lastFetched = fetchedAt
	collector.Record(rec)
	run, _ := collector.Finalize()
	return run, rec.Price, true
}

// target resolves the simple-price URL for the configured asset.
func (c *Crawler) target() string {
	q := url.Values{}
	q.Set("ids", c.cfg.AssetID)
	q.Set("vs_currencies", "usd")
	q.Set("include_last_updated_at", "true")
	return c.cfg.BaseURL + "?" + q.Encode()
}
