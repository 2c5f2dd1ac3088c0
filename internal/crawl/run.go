package crawl

import (
	"sort"
)

// ItemError attributes one failure to a specific row, element, page, or tick.
type ItemError struct {
	// Ref names the failed item: a symbol, "page 3", "page 2 row 7", "element 41".
	Ref string
	Err error
}

// CrawlRun is the result of one crawler invocation: an ordered record sequence
// plus every failure and warning the run produced. It is exclusively owned by
// the invocation that created it and carries no cross-run state.
type CrawlRun struct {
	Mode     Mode
	Records  []PriceRecord
	Errors   []ItemError
	Warnings []string
}

// Failed reports whether the run attempted at least one fetch and produced
// no records at all. Partial success is not failure.
func (r *CrawlRun) Failed(attempts int) bool {
	return attempts > 0 && len(r.Records) == 0
}

// Collector accumulates normalized records and per-item errors for one run.
// It is not safe for concurrent use; each run owns exactly one collector.
type Collector struct {
	mode     Mode
	records  []PriceRecord
	errors   []ItemError
	warnings []string
	attempts int
}

// NewCollector creates a collector for one run of the given mode.
func NewCollector(mode Mode) *Collector {
	return &Collector{mode: mode}
}

// Record appends a normalized record.
func (c *Collector) Record(rec PriceRecord) {
	c.records = append(c.records, rec)
}

// Error appends a per-item failure.
func (c *Collector) Error(ref string, err error) {
	c.errors = append(c.errors, ItemError{Ref: ref, Err: err})
}

// Warning appends a run-level warning.
func (c *Collector) Warning(msg string) {
	c.warnings = append(c.warnings, msg)
}

// Attempt counts one fetch attempt, successful or not. Finalize uses the
// count to distinguish a failed run from one that never fetched.
func (c *Collector) Attempt() {
	c.attempts++
}

// Len returns the number of records collected so far.
func (c *Collector) Len() int {
	return len(c.records)
}

// Finalize sorts records by ascending rank and returns the completed run.
// Parsers may yield rows out of order; output order is always rank-ascending.
// The error is a RunError when every attempted item failed, nil otherwise.
func (c *Collector) Finalize() (*CrawlRun, error) {
	sort.Slice(c.records, func(i, j int) bool {
		return c.records[i].Rank < c.records[j].Rank
	})

	run := &CrawlRun{
		Mode:     c.mode,
		Records:  c.records,
		Errors:   c.errors,
		Warnings: c.warnings,
	}

	if run.Failed(c.attempts) {
		return run, &RunError{Mode: c.mode, Attempts: c.attempts}
	}
	return run, nil
}
