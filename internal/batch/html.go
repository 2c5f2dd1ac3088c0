// Package batch implements the two run-to-completion crawler variants:
// paginated listing-page scraping and single-call markets API fetching.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cryptocrawler/internal/crawl"
	"cryptocrawler/internal/normalize"
)

// DefaultPageSize is the listing site's rows per page.
const DefaultPageSize = 20

// Fetcher is the slice of the source client the batch crawlers need.
type Fetcher interface {
	Fetch(ctx context.Context, target string) ([]byte, error)
}

// HTMLConfig wires an HTML batch crawler.
type HTMLConfig struct {
	// BaseURL is the listing site root; pages beyond the first append a
	// page index query parameter.
	BaseURL string
	// PageSize is the listing's rows per page. Defaults to 20.
	PageSize int
}

// HTMLCrawler scrapes the ranked listing across however many pages the
// requested asset count needs. Pages are fetched sequentially with no
// intentional inter-page delay; pagination is entirely the crawler's
// concern, the parser only ever sees a single page.
type HTMLCrawler struct {
	client Fetcher
	parser crawl.Parser
	cfg    HTMLConfig
}

// NewHTMLCrawler creates an HTML batch crawler; parser is typically an
// htmltable.Parser.
func NewHTMLCrawler(client Fetcher, parser crawl.Parser, cfg HTMLConfig) *HTMLCrawler {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &HTMLCrawler{client: client, parser: parser, cfg: cfg}
}

// Run fetches ceil(n/pageSize) pages and returns up to n normalized records.
// Record emission stops at n even mid-page. A failed page becomes one item
// error and never aborts its siblings; the returned error is a RunError only
// when every attempted item failed.
func (c *HTMLCrawler) Run(ctx context.Context, n int) (*crawl.CrawlRun, error) {
	collector := crawl.NewCollector(crawl.ModeHTMLBatch)
	norm := normalize.New()

	pages := (n + c.cfg.PageSize - 1) / c.cfg.PageSize
	for page := 1; page <= pages; page++ {
		if collector.Len() >= n {
			break
		}

		ref := fmt.Sprintf("page %d", page)
		target := c.pageURL(page)
		collector.Attempt()

		body, err := c.client.Fetch(ctx, target)
		if err != nil {
			collector.Error(ref, err)
			continue
		}

		records, itemErrs, err := c.parser.Parse(body, ref, n-collector.Len())
		if err != nil {
			collector.Error(ref, err)
			continue
		}
		for _, ie := range itemErrs {
			collector.Error(ie.Ref, ie.Err)
		}

		fetchedAt := time.Now()
		kept := 0
		for _, raw := range records {
			if collector.Len() >= n {
				break
			}
			rec, err := norm.Normalize(raw, fetchedAt)
			if err != nil {
				collector.Error(raw.Ref, err)
				continue
			}
			collector.Record(rec)
			kept++
		}

		slog.Info("scraped listing page", "page", page, "rows", len(records), "kept", kept)
	}

	return collector.Finalize()
}

// pageURL templates the listing URL for a page index; the first page is the
// bare base URL.
func (c *HTMLCrawler) pageURL(page int) string {
	if page <= 1 {
		return c.cfg.BaseURL
	}
	return fmt.Sprintf("%s?page=%d", c.cfg.BaseURL, page)
}
