package source

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"resty.dev/v3"

	"cryptocrawler/internal/crawl"
	"cryptocrawler/internal/ratelimit"
)

const (
	defaultTimeout = 10 * time.Second

	// Listing pages reject obvious non-browser agents.
	defaultUserAgent = "Mozilla/5.0"
)

// Options configures a Client. The zero value gets documented defaults.
type Options struct {
	// Timeout bounds each fetch end to end. Defaults to 10s.
	Timeout time.Duration
	// UserAgent is sent with every request. Defaults to a browser-ish agent.
	UserAgent string
	// Accept is the Accept header, e.g. "application/json" for API targets.
	Accept string
	// Limiter paces requests; nil means no pacing.
	Limiter *ratelimit.Limiter
	// Source keys this client's requests in the limiter.
	Source ratelimit.Source
}

// Client performs one HTTP GET per Fetch call. It owns pacing and timeout
// bounding but never retries; retry policy belongs to the calling crawler.
type Client struct {
	http    *resty.Client
	limiter *ratelimit.Limiter
	source  ratelimit.Source
}

// NewClient creates a source client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)
	if opts.Accept != "" {
		httpClient.SetHeader("Accept", opts.Accept)
	}

	return &Client{
		http:    httpClient,
		limiter: opts.Limiter,
		source:  opts.Source,
	}
}

// Fetch issues exactly one GET to the fully-resolved target URL and returns
// the response body. Failures are classified into a *crawl.FetchError; the
// caller decides whether to skip the affected page or tick and continue.
func (c *Client) Fetch(ctx context.Context, target string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.source); err != nil {
			return nil, crawl.NewNetworkError(target, err)
		}
	}

	slog.Debug("fetching", "target", target)

	resp, err := c.http.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return nil, classify(target, err)
	}

	if !resp.IsSuccess() {
		return nil, crawl.NewHTTPStatusError(target, resp.StatusCode())
	}

	return resp.Bytes(), nil
}

// Close releases the underlying HTTP client's resources.
func (c *Client) Close() error {
	return c.http.Close()
}

// classify sorts a transport error into the timeout or network kind.
func classify(target string, err error) *crawl.FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return crawl.NewTimeoutError(target, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return crawl.NewTimeoutError(target, err)
	}
	return crawl.NewNetworkError(target, err)
}
