// Package scraper wraps an ordinary request/response exchange with
// throttling, retrying and response caching, for long-running
// unattended retrieval from unreliable servers.
//
// The pipeline for one logical request is: consult the cache (a hit
// costs zero throttle budget and zero network I/O); on a miss acquire
// the rate limiter, perform the exchange through the protocol adapter
// matching the URL scheme, and retry transient failures with
// exponential backoff, re-acquiring the limiter before every physical
// attempt; finally write a cacheable outcome through to the store.
//
// FTP retrievals are normalized onto HTTP response semantics so the
// same pipeline governs both protocols: a completed transfer is a
// 200, a "file unavailable" reply is a 404.
//
// Usage:
//
//	cfg := config.DefaultConfig()
//	cfg.RateLimit.RequestsPerMinute = 30
//	cfg.Retry.Attempts = 3
//
//	s, err := scraper.New(cfg, scraper.WithCache(cache.NewMemory()))
//	if err != nil {
//	    // handle
//	}
//	defer s.Close()
//
//	resp, err := s.Get(ctx, "https://example.com/page?b=2&a=1")
//	if err != nil {
//	    // handle
//	}
//	fmt.Println(resp.StatusCode, resp.FromCache, resp.Text())
package scraper
