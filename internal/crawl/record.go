package crawl

import "time"

// Mode identifies which crawler variant produced a run.
type Mode string

const (
	// ModeContinuousPulse polls a single asset on a fixed cadence.
	ModeContinuousPulse Mode = "continuous-pulse"
	// ModeHTMLBatch scrapes paginated listing pages for many assets.
	ModeHTMLBatch Mode = "html-batch"
	// ModeJSONBatch fetches many assets from a structured API in one call.
	ModeJSONBatch Mode = "json-batch"
)

// PriceRecord is the canonical unit of output shared by all crawler variants.
type PriceRecord struct {
	// Symbol is the short asset identifier, uppercase, non-empty.
	Symbol string
	// Name is the asset's display name.
	Name string
	// Rank is the position in the source ordering; positive and unique within a run.
	Rank int
	// Price is the asset price in the quote currency. Never negative.
	Price float64
	// Change24h is the 24-hour percent change. Zero when the source omits it.
	Change24h float64
	// MarketCap is the market capitalization in the quote currency.
	// Zero when the source omits it.
	MarketCap float64
	// FetchedAt is when the record was successfully retrieved.
	FetchedAt time.Time
}

// Parser extracts raw record candidates from one raw response. The two
// variants (listing-page HTML, markets-payload JSON) sit behind this one
// interface and are selected by run configuration. ref attributes the input
// for error reporting (e.g. "page 3", "payload"); limit bounds how many
// records the call may emit, with non-positive meaning unbounded. Items are
// processed independently: per-item failures come back as ItemErrors and the
// returned error is reserved for input-level failures.
type Parser interface {
	Parse(input []byte, ref string, limit int) ([]RawRecord, []ItemError, error)
}

// RawRecord is a parser's loosely-typed view of one asset before normalization.
// All fields are source text; the Normalizer owns coercion and validation.
type RawRecord struct {
	Rank      string
	Symbol    string
	Name      string
	Price     string
	Change24h string
	MarketCap string

	// Ref attributes the record to its origin (page/row or payload index)
	// so failures stay traceable to a specific item.
	Ref string
}
