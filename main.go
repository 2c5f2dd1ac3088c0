package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cryptocrawler/internal/batch"
	"cryptocrawler/internal/config"
	"cryptocrawler/internal/crawl"
	"cryptocrawler/internal/htmltable"
	"cryptocrawler/internal/jsonfeed"
	"cryptocrawler/internal/pulse"
	"cryptocrawler/internal/ratelimit"
	"cryptocrawler/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Crawl failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	switch crawl.Mode(cfg.Mode) {
	case crawl.ModeContinuousPulse:
		return runPulse(ctx, cfg)
	case crawl.ModeHTMLBatch:
		return runHTMLBatch(ctx, cfg)
	case crawl.ModeJSONBatch:
		return runJSONBatch(ctx, cfg)
	default:
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

func runPulse(ctx context.Context, cfg *config.Config) error {
	limiter := ratelimit.New()
	limiter.SetInterval(ratelimit.SourceMarketsAPI, cfg.TickInterval)

	client := source.NewClient(source.Options{
		Timeout: cfg.HTTPTimeout,
		Accept:  "application/json",
		Limiter: limiter,
		Source:  ratelimit.SourceMarketsAPI,
	})
	defer client.Close()

	crawler := pulse.New(client, jsonfeed.ParseSimplePrice, pulse.Config{
		BaseURL:  cfg.SimplePriceBaseURL,
		AssetID:  cfg.AssetID,
		Symbol:   cfg.Symbol,
		Interval: cfg.TickInterval,
		OnTick: func(run *crawl.CrawlRun, sma float64) {
			for _, rec := range run.Records {
				fmt.Printf("[%s] %s -> USD: $%.2f | SMA(10): $%.2f\n",
					rec.FetchedAt.Format("2006-01-02T15:04:05"), rec.Symbol, rec.Price, sma)
			}
			for _, ie := range run.Errors {
				fmt.Printf("%s: ERROR - %v\n", ie.Ref, ie.Err)
			}
		},
	})

	fmt.Printf("Polling %s price every %s (Ctrl-C to stop)...\n", cfg.Symbol, cfg.TickInterval)
	return crawler.Run(ctx)
}

func runHTMLBatch(ctx context.Context, cfg *config.Config) error {
	client := source.NewClient(source.Options{Timeout: cfg.HTTPTimeout})
	defer client.Close()

	crawler := batch.NewHTMLCrawler(client, htmltable.NewParser(htmltable.DefaultColumns()), batch.HTMLConfig{
		BaseURL:  cfg.ListingBaseURL,
		PageSize: cfg.PageSize,
	})

	run, err := crawler.Run(ctx, cfg.AssetCount)
	report(run)
	return err
}

func runJSONBatch(ctx context.Context, cfg *config.Config) error {
	client := source.NewClient(source.Options{
		Timeout: cfg.HTTPTimeout,
		Accept:  "application/json",
	})
	defer client.Close()

	crawler := batch.NewJSONCrawler(client, jsonfeed.NewParser(), batch.JSONConfig{
		BaseURL: cfg.MarketsBaseURL,
	})

	run, err := crawler.Run(ctx, cfg.AssetCount)
	report(run)
	return err
}

// report prints a finished run: records rank-ascending, then errors and
// warnings. Output formatting beyond this belongs to a real reporting layer.
func report(run *crawl.CrawlRun) {
	for _, rec := range run.Records {
		fmt.Printf("%3d. %-10s %-24s $%.2f\n", rec.Rank, rec.Symbol, rec.Name, rec.Price)
	}
	for _, ie := range run.Errors {
		fmt.Printf("%s: ERROR - %v\n", ie.Ref, ie.Err)
	}
	for _, w := range run.Warnings {
		fmt.Printf("WARNING: %s\n", w)
	}
	fmt.Printf("Collected %d records, %d errors\n", len(run.Records), len(run.Errors))
}
