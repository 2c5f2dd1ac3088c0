package normalize

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"cryptocrawler/internal/crawl"
)

func rawRecord() crawl.RawRecord {
	return crawl.RawRecord{
		Rank:      "1",
		Symbol:    "btc",
		Name:      "Bitcoin",
		Price:     "$67,345.12",
		Change24h: "1.25%",
		MarketCap: "$1,320,000,000,000",
		Ref:       "page 1 row 1",
	}
}

func TestNormalize_Success(t *testing.T) {
	now := time.Now()
	rec, err := New().Normalize(rawRecord(), now)
	if err != nil {
		t.Fatalf("Normalize() returned unexpected error: %v", err)
	}

	if rec.Symbol != "BTC" {
		t.Errorf("Symbol = %q, want BTC", rec.Symbol)
	}
	if rec.Rank != 1 {
		t.Errorf("Rank = %d, want 1", rec.Rank)
	}
	if rec.Price != 67345.12 {
		t.Errorf("Price = %v, want 67345.12", rec.Price)
	}
	if rec.Change24h != 1.25 {
		t.Errorf("Change24h = %v, want 1.25", rec.Change24h)
	}
	if rec.MarketCap != 1.32e12 {
		t.Errorf("MarketCap = %v, want 1.32e12", rec.MarketCap)
	}
	if !rec.FetchedAt.Equal(now) {
		t.Errorf("FetchedAt = %v, want %v", rec.FetchedAt, now)
	}
}

func TestNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*crawl.RawRecord)
		wantKind crawl.NormalizeKind
	}{
		{"non-numeric price", func(r *crawl.RawRecord) { r.Price = "N/A" }, crawl.NormalizeInvalidPrice},
		{"negative price", func(r *crawl.RawRecord) { r.Price = "-1.50" }, crawl.NormalizeInvalidPrice},
		{"empty price", func(r *crawl.RawRecord) { r.Price = "" }, crawl.NormalizeInvalidPrice},
		{"non-numeric rank", func(r *crawl.RawRecord) { r.Rank = "first" }, crawl.NormalizeInvalidRank},
		{"zero rank", func(r *crawl.RawRecord) { r.Rank = "0" }, crawl.NormalizeInvalidRank},
		{"negative rank", func(r *crawl.RawRecord) { r.Rank = "-3" }, crawl.NormalizeInvalidRank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawRecord()
			tt.mutate(&raw)

			_, err := New().Normalize(raw, time.Now())
			var nerr *crawl.NormalizationError
			if !errors.As(err, &nerr) {
				t.Fatalf("Normalize() error = %v, want *NormalizationError", err)
			}
			if nerr.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", nerr.Kind, tt.wantKind)
			}
		})
	}
}

func TestNormalize_BlankSymbol(t *testing.T) {
	raw := rawRecord()
	raw.Symbol = "   "

	_, err := New().Normalize(raw, time.Now())
	var perr *crawl.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Normalize() error = %v, want *ParseError", err)
	}
	if perr.Kind != crawl.ParseMalformedValue {
		t.Errorf("Kind = %q, want %q", perr.Kind, crawl.ParseMalformedValue)
	}
}

func TestNormalize_DuplicateRankKeepsFirst(t *testing.T) {
	n := New()
	now := time.Now()

	first := rawRecord()
	if _, err := n.Normalize(first, now); err != nil {
		t.Fatalf("first Normalize() returned error: %v", err)
	}

	second := rawRecord()
	second.Symbol = "eth"
	_, err := n.Normalize(second, now)

	var nerr *crawl.NormalizationError
	if !errors.As(err, &nerr) {
		t.Fatalf("second Normalize() error = %v, want *NormalizationError", err)
	}
	if nerr.Kind != crawl.NormalizeDuplicateRank {
		t.Errorf("Kind = %q, want %q", nerr.Kind, crawl.NormalizeDuplicateRank)
	}
}

func TestNormalize_DuplicateRankResetsPerRun(t *testing.T) {
	now := time.Now()
	if _, err := New().Normalize(rawRecord(), now); err != nil {
		t.Fatalf("run 1 Normalize() returned error: %v", err)
	}
	// A fresh normalizer is a fresh run; the same rank is valid again.
	if _, err := New().Normalize(rawRecord(), now); err != nil {
		t.Errorf("run 2 Normalize() returned error: %v", err)
	}
}

func TestNormalize_OptionalFieldsBlank(t *testing.T) {
	raw := rawRecord()
	raw.Change24h = ""
	raw.MarketCap = ""

	rec, err := New().Normalize(raw, time.Now())
	if err != nil {
		t.Fatalf("Normalize() returned unexpected error: %v", err)
	}
	if rec.Change24h != 0 || rec.MarketCap != 0 {
		t.Errorf("blank optional fields = (%v, %v), want (0, 0)", rec.Change24h, rec.MarketCap)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	now := time.Now()
	a, err := New().Normalize(rawRecord(), now)
	if err != nil {
		t.Fatalf("Normalize() returned error: %v", err)
	}
	b, err := New().Normalize(rawRecord(), now)
	if err != nil {
		t.Fatalf("Normalize() returned error: %v", err)
	}
	if a != b {
		t.Errorf("Normalize() not deterministic: %+v != %+v", a, b)
	}
}

func TestNormalize_IdempotentOnOwnOutput(t *testing.T) {
	now := time.Now()
	first, err := New().Normalize(rawRecord(), now)
	if err != nil {
		t.Fatalf("Normalize() returned error: %v", err)
	}

	// Re-normalizing a record's own textual representation changes nothing.
	roundTrip := crawl.RawRecord{
		Rank:      strconv.Itoa(first.Rank),
		Symbol:    first.Symbol,
		Name:      first.Name,
		Price:     strconv.FormatFloat(first.Price, 'f', -1, 64),
		Change24h: strconv.FormatFloat(first.Change24h, 'f', -1, 64),
		MarketCap: strconv.FormatFloat(first.MarketCap, 'f', -1, 64),
		Ref:       "round trip",
	}
	second, err := New().Normalize(roundTrip, now)
	if err != nil {
		t.Fatalf("round-trip Normalize() returned error: %v", err)
	}
	if first != second {
		t.Errorf("round trip changed the record: %+v != %+v", first, second)
	}
}
