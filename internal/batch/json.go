package batch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"cryptocrawler/internal/crawl"
	"cryptocrawler/internal/normalize"
)

// MaxPerRequest is the markets endpoint's single-response ceiling.
const MaxPerRequest = 100

// JSONConfig wires a JSON batch crawler.
type JSONConfig struct {
	// BaseURL is the markets endpoint.
	BaseURL string
}

// JSONCrawler fetches up to n assets from the markets endpoint in exactly
// one request, however many are asked for (bounded by the endpoint's
// single-response ceiling).
type JSONCrawler struct {
	client Fetcher
	parser crawl.Parser
	cfg    JSONConfig
}

// NewJSONCrawler creates a JSON batch crawler; parser is typically a
// jsonfeed.Parser.
func NewJSONCrawler(client Fetcher, parser crawl.Parser, cfg JSONConfig) *JSONCrawler {
	return &JSONCrawler{client: client, parser: parser, cfg: cfg}
}

// Run issues one fetch and returns up to n normalized records in payload
// order. A payload holding fewer than n entries is a run-level warning, not
// an error; per-element failures are item errors that never abort the batch.
func (c *JSONCrawler) Run(ctx context.Context, n int) (*crawl.CrawlRun, error) {
	if n > MaxPerRequest {
		n = MaxPerRequest
	}

	collector := crawl.NewCollector(crawl.ModeJSONBatch)
	collector.Attempt()

	start := time.Now()
	payload, err := c.client.Fetch(ctx, c.target(n))
	if err != nil {
		collector.Error("payload", err)
		return collector.Finalize()
	}
	slog.Info("fetched markets payload", "elapsed", time.Since(start))

	records, itemErrs, err := c.parser.Parse(payload, "payload", n)
	if err != nil {
		collector.Error("payload", err)
		return collector.Finalize()
	}
	for _, ie := range itemErrs {
		collector.Error(ie.Ref, ie.Err)
	}

	norm := normalize.New()
	fetchedAt := time.Now()
	for _, raw := range records {
		rec, err := norm.Normalize(raw, fetchedAt)
		if err != nil {
			collector.Error(raw.Ref, err)
			continue
		}
		collector.Record(rec)
	}

	if contained := len(records) + len(itemErrs); contained < n {
		collector.Warning(fmt.Sprintf(
			"payload contained %d of %d requested assets (short by %d)",
			contained, n, n-contained))
	}

	return collector.Finalize()
}

// target resolves the markets URL for one request of up to n assets.
func (c *JSONCrawler) target(n int) string {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", fmt.Sprint(n))
	q.Set("page", "1")
	q.Set("sparkline", "false")
	return c.cfg.BaseURL + "?" + q.Encode()
}
