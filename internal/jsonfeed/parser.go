package jsonfeed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cryptocrawler/internal/crawl"
)

// marketEntry mirrors one element of the markets endpoint's response list.
// Numeric fields are pointers so an absent field is distinguishable from zero.
type marketEntry struct {
	Name      string   `json:"name"`
	Symbol    string   `json:"symbol"`
	Price     *float64 `json:"current_price"`
	Change24h *float64 `json:"price_change_percentage_24h"`
	MarketCap *float64 `json:"market_cap"`
}

// Parser extracts raw records from one markets payload. A single payload
// covers the whole batch; there is no pagination on this path.
type Parser struct{}

// NewParser creates a markets payload parser.
func NewParser() *Parser {
	return &Parser{}
}

var _ crawl.Parser = (*Parser)(nil)

// Parse deserializes the payload and emits up to limit raw records in source
// order, rank assigned by position. A malformed element becomes one ItemError
// without aborting the batch; a payload that is not a JSON list at all is a
// payload-level error.
func (p *Parser) Parse(input []byte, ref string, limit int) ([]crawl.RawRecord, []crawl.ItemError, error) {
	var entries []marketEntry
	if err := json.Unmarshal(input, &entries); err != nil {
		return nil, nil, crawl.NewMalformedValueError(ref, "document")
	}

	var records []crawl.RawRecord
	var itemErrs []crawl.ItemError

	for i, entry := range entries {
		if limit > 0 && len(records) >= limit {
			break
		}
		ref := fmt.Sprintf("element %d", i+1)

		var missing string
		switch {
		case entry.Symbol == "":
			missing = "symbol"
		case entry.Name == "":
			missing = "name"
		case entry.Price == nil:
			missing = "current_price"
		}
		if missing != "" {
			itemErrs = append(itemErrs, crawl.ItemError{
				Ref: ref,
				Err: crawl.NewMissingFieldError(ref, missing),
			})
			continue
		}

		records = append(records, crawl.RawRecord{
			Rank:      strconv.Itoa(i + 1),
			Symbol:    entry.Symbol,
			Name:      entry.Name,
			Price:     formatFloat(entry.Price),
			Change24h: formatFloat(entry.Change24h),
			MarketCap: formatFloat(entry.MarketCap),
			Ref:       ref,
		})
	}

	return records, itemErrs, nil
}

// simplePriceEntry mirrors one asset of the simple price endpoint's response.
type simplePriceEntry struct {
	USD           *float64 `json:"usd"`
	LastUpdatedAt *int64   `json:"last_updated_at"`
}

// ParseSimplePrice extracts a single asset's price and source-side update
// time from a simple-price payload keyed by asset id.
func ParseSimplePrice(payload []byte, assetID string) (float64, time.Time, error) {
	var doc map[string]simplePriceEntry
	if err := json.Unmarshal(payload, &doc); err != nil {
		return 0, time.Time{}, crawl.NewMalformedValueError("payload", "document")
	}

	entry, ok := doc[assetID]
	if !ok {
		return 0, time.Time{}, crawl.NewMissingFieldError("payload", assetID)
	}
	if entry.USD == nil {
		return 0, time.Time{}, crawl.NewMissingFieldError(assetID, "usd")
	}

	var updated time.Time
	if entry.LastUpdatedAt != nil {
		updated = time.Unix(*entry.LastUpdatedAt, 0).UTC()
	}
	return *entry.USD, updated, nil
}

// formatFloat renders a numeric field back to source text for the normalizer.
// nil (field absent or JSON null) renders empty, which normalizes to zero.
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
