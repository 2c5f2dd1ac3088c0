package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptocrawler/internal/crawl"
)

// Normalizer converts loosely-typed raw records into canonical price records.
// It tracks ranks seen within its run, so construct one per run: the first
// occurrence of a rank is kept and later occurrences are rejected.
type Normalizer struct {
	seenRanks map[int]bool
}

// New creates a normalizer for one run.
func New() *Normalizer {
	return &Normalizer{seenRanks: make(map[int]bool)}
}

// Normalize coerces and validates one raw record. Same raw input always
// yields the same record or the same error kind, except for the duplicate
// rank rule, which depends on run order by definition.
func (n *Normalizer) Normalize(raw crawl.RawRecord, fetchedAt time.Time) (crawl.PriceRecord, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw.Symbol))
	if symbol == "" {
		return crawl.PriceRecord{}, crawl.NewMalformedValueError(raw.Ref, "symbol")
	}

	rank, err := strconv.Atoi(strings.TrimSpace(raw.Rank))
	if err != nil || rank <= 0 {
		return crawl.PriceRecord{}, crawl.NewNormalizationError(crawl.NormalizeInvalidRank, raw.Ref, raw.Rank)
	}
	if n.seenRanks[rank] {
		return crawl.PriceRecord{}, crawl.NewNormalizationError(crawl.NormalizeDuplicateRank, raw.Ref, raw.Rank)
	}

	price, err := parseAmount(raw.Price)
	if err != nil || price.IsNegative() {
		return crawl.PriceRecord{}, crawl.NewNormalizationError(crawl.NormalizeInvalidPrice, raw.Ref, raw.Price)
	}

	change, err := parseOptional(raw.Change24h)
	if err != nil {
		return crawl.PriceRecord{}, crawl.NewMalformedValueError(raw.Ref, "change_24h")
	}
	marketCap, err := parseOptional(raw.MarketCap)
	if err != nil {
		return crawl.PriceRecord{}, crawl.NewMalformedValueError(raw.Ref, "market_cap")
	}

	n.seenRanks[rank] = true

	return crawl.PriceRecord{
		Symbol:    symbol,
		Name:      strings.TrimSpace(raw.Name),
		Rank:      rank,
		Price:     price.InexactFloat64(),
		Change24h: change,
		MarketCap: marketCap,
		FetchedAt: fetchedAt,
	}, nil
}

// parseAmount parses source money text after stripping currency symbols,
// percent signs, and thousands separators. Decimal parsing avoids float
// artifacts on sub-cent prices before the final float64 conversion.
func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(cleanNumber(s))
}

// parseOptional parses a numeric field the source may omit; blank is zero.
func parseOptional(s string) (float64, error) {
	cleaned := cleanNumber(s)
	if cleaned == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

func cleanNumber(s string) string {
	r := strings.NewReplacer("$", "", "%", "", ",", "", " ", "")
	return r.Replace(strings.TrimSpace(s))
}
