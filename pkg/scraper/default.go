package scraper

import (
	"context"
	"sync"

	"scrapekit/pkg/config"
)

var (
	defaultScraper *Scraper
	defaultOnce    sync.Once
)

// Default returns a shared Scraper with throttling disabled and no
// cache, for one-off fetches.
func Default() *Scraper {
	defaultOnce.Do(func() {
		cfg := config.DefaultConfig()
		cfg.RateLimit.RequestsPerMinute = 0
		// construction only fails on invalid config
		defaultScraper, _ = New(cfg)
	})
	return defaultScraper
}

// Get fetches a URL with the shared default Scraper.
func Get(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return Default().Get(ctx, url, opts...)
}
