package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"cryptocrawler/internal/batch"
	"cryptocrawler/internal/crawl"
	"cryptocrawler/internal/htmltable"
	"cryptocrawler/internal/jsonfeed"
	"cryptocrawler/internal/pulse"
	"cryptocrawler/internal/source"
	"cryptocrawler/internal/testutil"
)

func TestHTMLBatchEndToEnd(t *testing.T) {
	// Serves synthetic ranked listing pages keyed by the page query
	// parameter, 20 rows per page.
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			var err error
			page, err = strconv.Atoi(p)
			if err != nil {
				http.Error(w, "bad page", http.StatusBadRequest)
				return
			}
		}
		w.Write(testutil.ListingPage((page-1)*20+1, 20))
	}))
	defer server.Close()

	client := source.NewClient(source.Options{Timeout: 5 * time.Second})
	defer client.Close()

	crawler := batch.NewHTMLCrawler(client, htmltable.NewParser(htmltable.DefaultColumns()), batch.HTMLConfig{
		BaseURL:  server.URL,
		PageSize: 20,
	})

	run, err := crawler.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if requests != 5 {
		t.Errorf("server saw %d requests, want 5", requests)
	}
	if len(run.Records) != 100 {
		t.Fatalf("len(Records) = %d, want 100", len(run.Records))
	}
	if len(run.Errors) != 0 {
		t.Errorf("len(Errors) = %d, want 0: %v", len(run.Errors), run.Errors)
	}
	for i, rec := range run.Records {
		if rec.Rank != i+1 {
			t.Fatalf("Records[%d].Rank = %d, want %d", i, rec.Rank, i+1)
		}
	}
	if run.Records[0].Symbol != "C1" {
		t.Errorf("Records[0].Symbol = %q, want C1", run.Records[0].Symbol)
	}
}

func TestJSONBatchEndToEnd(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write(testutil.MarketsPayload(95))
	}))
	defer server.Close()

	client := source.NewClient(source.Options{Timeout: 5 * time.Second, Accept: "application/json"})
	defer client.Close()

	crawler := batch.NewJSONCrawler(client, jsonfeed.NewParser(), batch.JSONConfig{BaseURL: server.URL})

	run, err := crawler.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if requests != 1 {
		t.Errorf("server saw %d requests, want exactly 1", requests)
	}
	if len(run.Records) != 95 {
		t.Errorf("len(Records) = %d, want 95", len(run.Records))
	}
	if len(run.Warnings) != 1 {
		t.Errorf("len(Warnings) = %d, want 1", len(run.Warnings))
	}
}

func TestContinuousPulseEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ids") != "bitcoin" {
			http.Error(w, "unknown asset", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(testutil.SimplePricePayload("bitcoin", 67345.12, time.Now().Unix()))
	}))
	defer server.Close()

	client := source.NewClient(source.Options{Timeout: 5 * time.Second, Accept: "application/json"})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	crawler := pulse.New(client, jsonfeed.ParseSimplePrice, pulse.Config{
		BaseURL:  server.URL,
		AssetID:  "bitcoin",
		Symbol:   "BTC",
		Interval: time.Second,
		Clock:    testutil.NewFakeClock(time.Now()),
		OnTick: func(run *crawl.CrawlRun, sma float64) {
			ticks++
			if len(run.Records) != 1 {
				t.Errorf("tick %d: len(Records) = %d, want 1", ticks, len(run.Records))
			} else if run.Records[0].Price != 67345.12 {
				t.Errorf("tick %d: Price = %v, want 67345.12", ticks, run.Records[0].Price)
			}
			if sma != 67345.12 {
				t.Errorf("tick %d: sma = %v, want 67345.12", ticks, sma)
			}
			if ticks == 3 {
				cancel()
			}
		},
	})

	if err := crawler.Run(ctx); err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
}
