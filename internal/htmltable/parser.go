package htmltable

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cryptocrawler/internal/crawl"
)

// Columns maps record fields to cell positions within a listing row. The
// listing markup is assumed changeable, so positions are configuration, not
// hard-wired constants.
type Columns struct {
	Rank      int
	Asset     int
	Price     int
	Change24h int
	MarketCap int
}

// DefaultColumns matches the listing site's current table layout: cell 0 is
// the watchlist toggle, the asset cell holds name and symbol as separate
// paragraph elements.
func DefaultColumns() Columns {
	return Columns{Rank: 1, Asset: 2, Price: 3, Change24h: 4, MarketCap: 7}
}

// Parser extracts raw records from one listing page. It is stateless across
// pages; the crawler calls Parse once per page and owns pagination itself.
type Parser struct {
	cols Columns
	// minCells is the cell count below which a row is treated as non-asset
	// filler (ads, section separators) and skipped without error.
	minCells int
}

// NewParser creates a parser for the given column layout.
func NewParser(cols Columns) *Parser {
	last := cols.Rank
	for _, idx := range []int{cols.Asset, cols.Price, cols.Change24h, cols.MarketCap} {
		if idx > last {
			last = idx
		}
	}
	return &Parser{cols: cols, minCells: last + 1}
}

var _ crawl.Parser = (*Parser)(nil)

// Parse extracts one RawRecord candidate per table row of a single page,
// emitting at most limit records when limit is positive. Rows are processed
// independently: a malformed row becomes one ItemError and never drops its
// siblings. The returned error is page-level, reported only when no listing
// table can be located at all.
func (p *Parser) Parse(input []byte, ref string, limit int) ([]crawl.RawRecord, []crawl.ItemError, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return nil, nil, crawl.NewMalformedValueError(ref, "document")
	}

	// Anchor on the first table body rather than site-specific class names;
	// the listing is the only ranked table on the page.
	rows := doc.Find("tbody").First().Find("tr")
	if rows.Length() == 0 {
		return nil, nil, crawl.NewMissingFieldError(ref, "table")
	}

	var records []crawl.RawRecord
	var itemErrs []crawl.ItemError

	rows.Each(func(i int, row *goquery.Selection) {
		if limit > 0 && len(records) >= limit {
			return
		}
		rowRef := fmt.Sprintf("%s row %d", ref, i+1)
		rec, ok, err := p.parseRow(row, rowRef)
		if err != nil {
			itemErrs = append(itemErrs, crawl.ItemError{Ref: rowRef, Err: err})
			return
		}
		if ok {
			records = append(records, rec)
		}
	})

	return records, itemErrs, nil
}

// parseRow extracts one row. ok is false for filler rows, which carry no error.
func (p *Parser) parseRow(row *goquery.Selection, ref string) (crawl.RawRecord, bool, error) {
	cells := row.Find("td")
	if cells.Length() < p.minCells {
		return crawl.RawRecord{}, false, nil
	}

	rank := text(cells.Eq(p.cols.Rank))
	name, symbol := p.parseAssetCell(cells.Eq(p.cols.Asset))
	price := text(cells.Eq(p.cols.Price))

	switch {
	case rank == "":
		return crawl.RawRecord{}, false, crawl.NewMissingFieldError(ref, "rank")
	case name == "":
		return crawl.RawRecord{}, false, crawl.NewMissingFieldError(ref, "name")
	case symbol == "":
		return crawl.RawRecord{}, false, crawl.NewMissingFieldError(ref, "symbol")
	case price == "":
		return crawl.RawRecord{}, false, crawl.NewMissingFieldError(ref, "price")
	}

	return crawl.RawRecord{
		Rank:      rank,
		Symbol:    symbol,
		Name:      name,
		Price:     price,
		Change24h: text(cells.Eq(p.cols.Change24h)),
		MarketCap: text(cells.Eq(p.cols.MarketCap)),
		Ref:       ref,
	}, true, nil
}

// parseAssetCell reads name and symbol from the asset cell. The current
// markup holds them as two paragraph elements; older layouts put both in
// the cell text, so whitespace-splitting is the fallback.
func (p *Parser) parseAssetCell(cell *goquery.Selection) (name, symbol string) {
	paras := cell.Find("p")
	if paras.Length() >= 2 {
		return text(paras.Eq(0)), text(paras.Eq(1))
	}

	parts := strings.Fields(cell.Text())
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return "", ""
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
