package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"cryptocrawler/internal/crawl"
)

// Config holds all configuration for the crawler. The core consumes these
// knobs but does not own them; defaults target the public listing tier,
// which needs no authentication.
type Config struct {
	// Mode selects the crawler variant.
	Mode string `mapstructure:"mode"`

	// AssetID is the API-side identifier for continuous-pulse mode.
	AssetID string `mapstructure:"asset_id"`
	// Symbol is the canonical symbol for continuous-pulse records.
	Symbol string `mapstructure:"symbol"`
	// AssetCount is how many assets batch modes request.
	AssetCount int `mapstructure:"asset_count"`
	// PageSize is the listing site's rows per page (HTML mode).
	PageSize int `mapstructure:"page_size"`
	// TickInterval is the continuous-pulse cadence floor.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// HTTPTimeout bounds each fetch.
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// Base URLs are configurable so tests can point at local servers.
	ListingBaseURL     string `mapstructure:"listing_base_url"`
	MarketsBaseURL     string `mapstructure:"markets_base_url"`
	SimplePriceBaseURL string `mapstructure:"simple_price_base_url"`
}

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence.
//
// Recognized environment variables:
//   - CRAWL_MODE (continuous-pulse | html-batch | json-batch)
//   - CRAWL_ASSET_ID, CRAWL_SYMBOL
//   - CRAWL_ASSET_COUNT, CRAWL_PAGE_SIZE
//   - CRAWL_TICK_INTERVAL, CRAWL_HTTP_TIMEOUT
//   - CRAWL_LISTING_BASE_URL, CRAWL_MARKETS_BASE_URL, CRAWL_SIMPLE_PRICE_BASE_URL
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("CRAWL")
	v.AutomaticEnv()

	v.SetDefault("mode", string(crawl.ModeJSONBatch))
	v.SetDefault("asset_id", "bitcoin")
	v.SetDefault("symbol", "BTC")
	v.SetDefault("asset_count", 100)
	v.SetDefault("page_size", 20)
	v.SetDefault("tick_interval", time.Second)
	v.SetDefault("http_timeout", 10*time.Second)
	v.SetDefault("listing_base_url", "https://coinmarketcap.com/")
	v.SetDefault("markets_base_url", "https://api.coingecko.com/api/v3/coins/markets")
	v.SetDefault("simple_price_base_url", "https://api.coingecko.com/api/v3/simple/price")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.cryptocrawler")

	// The config file is optional; defaults plus env cover every knob.
	_ = v.ReadInConfig()

	v.BindEnv("mode", "CRAWL_MODE")
	v.BindEnv("asset_id", "CRAWL_ASSET_ID")
	v.BindEnv("symbol", "CRAWL_SYMBOL")
	v.BindEnv("asset_count", "CRAWL_ASSET_COUNT")
	v.BindEnv("page_size", "CRAWL_PAGE_SIZE")
	v.BindEnv("tick_interval", "CRAWL_TICK_INTERVAL")
	v.BindEnv("http_timeout", "CRAWL_HTTP_TIMEOUT")
	v.BindEnv("listing_base_url", "CRAWL_LISTING_BASE_URL")
	v.BindEnv("markets_base_url", "CRAWL_MARKETS_BASE_URL")
	v.BindEnv("simple_price_base_url", "CRAWL_SIMPLE_PRICE_BASE_URL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch crawl.Mode(c.Mode) {
	case crawl.ModeContinuousPulse, crawl.ModeHTMLBatch, crawl.ModeJSONBatch:
	default:
		return fmt.Errorf("invalid mode %q", c.Mode)
	}
	if c.AssetCount <= 0 {
		return fmt.Errorf("asset_count must be positive, got %d", c.AssetCount)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.Symbol == "" || c.AssetID == "" {
		return fmt.Errorf("symbol and asset_id must be set")
	}
	return nil
}
