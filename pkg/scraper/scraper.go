package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"scrapekit/pkg/cache"
	"scrapekit/pkg/config"
	errs "scrapekit/pkg/errors"
	"scrapekit/pkg/logger"
	"scrapekit/pkg/ratelimit"
	"scrapekit/pkg/retry"
)

// Scraper orchestrates the request pipeline: cache lookup, throttling,
// retries with backoff, protocol dispatch and cache write-through.
//
// A single instance is safe for sequential use; the rate limiter and
// the cache backends carry their own locking, so concurrent callers
// sharing one instance keep the throttle-spacing invariant.
type Scraper struct {
	cfg          *config.Config
	limiter      ratelimit.Limiter
	store        cache.Store
	writeOnly    bool
	httpAdapter  Adapter
	ftpAdapter   Adapter
	ftpTransport FTPTransport
	httpClient   *http.Client
	log          logger.Logger
}

// Option customizes a Scraper at construction time.
type Option func(*Scraper)

// WithCache attaches a cache store.
func WithCache(store cache.Store) Option {
	return func(s *Scraper) { s.store = store }
}

// WithHTTPClient replaces the HTTP transport capability.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) { s.httpClient = client }
}

// WithFTPTransport replaces the FTP transfer capability.
func WithFTPTransport(t FTPTransport) Option {
	return func(s *Scraper) { s.ftpTransport = t }
}

// WithRateLimiter replaces the rate limiter.
func WithRateLimiter(l ratelimit.Limiter) Option {
	return func(s *Scraper) { s.limiter = l }
}

// WithLogger replaces the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) { s.log = l }
}

// New creates a Scraper from configuration. A nil config uses the
// defaults. The cache backend named in the config is opened unless a
// store is injected via WithCache.
func New(cfg *config.Config, opts ...Option) (*Scraper, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfiguration, err, "invalid configuration")
	}

	s := &Scraper{
		cfg:       cfg,
		writeOnly: cfg.Cache.WriteOnly,
		log:       logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.limiter == nil {
		s.limiter = ratelimit.New(cfg.RateLimit.RequestsPerMinute)
	}
	if s.store == nil && cfg.Cache.Backend != "" {
		store, err := cache.Open(cfg.Cache)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	if s.httpAdapter == nil {
		s.httpAdapter = NewHTTPAdapter(s.httpClient, s.log)
	}
	if s.ftpAdapter == nil {
		s.ftpAdapter = NewFTPAdapter(s.ftpTransport, s.log)
	}

	return s, nil
}

// Close releases the cache store, if any.
func (s *Scraper) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Request resolves one logical request and returns a uniform Response.
// The cache is consulted first; on a miss every physical attempt
// re-acquires the rate limiter, and only the finally successful
// attempt is written through to the cache.
func (s *Scraper) Request(ctx context.Context, method, rawurl string, opts ...RequestOption) (*Response, error) {
	method = strings.ToUpper(method)

	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfiguration, err, "invalid url")
	}
	if u.Scheme == "" {
		return nil, errs.Newf(errs.ErrorTypeConfiguration, "url %q has no scheme", rawurl)
	}

	var adapter Adapter
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		adapter = s.httpAdapter
	case "ftp":
		if method != http.MethodGet {
			return nil, errs.Newf(errs.ErrorTypeMethodUnsupported,
				"ftp requests do not support method %q", method)
		}
		adapter = s.ftpAdapter
	default:
		return nil, errs.Newf(errs.ErrorTypeConfiguration, "unsupported scheme %q", u.Scheme)
	}

	ro := s.resolveOptions(opts)
	req := &Request{
		Method:          method,
		URL:             rawurl,
		Header:          s.buildHeader(ro.header),
		Body:            ro.body,
		Timeout:         *ro.timeout,
		FollowRedirects: *ro.followRedirects,
		MaxRedirects:    *ro.maxRedirects,
	}

	var key string
	if s.store != nil {
		key = cache.Key(method, rawurl)
	}

	if key != "" && !s.writeOnly {
		if resp := s.lookupCache(key, rawurl); resp != nil {
			return resp, nil
		}
	}

	resp, err := s.fetch(ctx, adapter, req, ro)
	if err != nil {
		return nil, err
	}

	if s.cfg.HTTP.RaiseHTTPErrors && resp.StatusCode >= 400 {
		return nil, &HTTPStatusError{Response: resp}
	}

	if key != "" && cacheable(resp) {
		s.writeCache(key, resp)
	}

	return resp, nil
}

// fetch runs the throttle/attempt/retry loop for one logical request.
func (s *Scraper) fetch(ctx context.Context, adapter Adapter, req *Request, ro *requestOptions) (*Response, error) {
	var resp *Response

	attempt := func() error {
		// each retry is a physical request and pays the same
		// throttle cost as a fresh one
		s.limiter.Wait()

		s.log.DebugWithFields("dispatching request", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
		})

		r, err := adapter.Do(ctx, req)
		if err != nil {
			return err
		}
		resp = r

		if !acceptStatus(r.StatusCode, *ro.retryOn404) {
			return &errs.Error{
				Type:    errs.ErrorTypeHTTPStatus,
				Message: http.StatusText(r.StatusCode),
				Code:    r.StatusCode,
				URL:     req.URL,
			}
		}
		return nil
	}

	retryIf := func(err error) bool {
		var pe *errs.Error
		if errors.As(err, &pe) && pe.Type == errs.ErrorTypeHTTPStatus {
			return errs.IsRetryableStatusCode(pe.Code, *ro.retryOn404)
		}
		return retry.DefaultRetryIf(err)
	}

	err := retry.Do(attempt, &retry.Config{
		MaxAttempts: *ro.attempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:  s.cfg.Retry.Wait,
			MaxDelay:   s.cfg.Retry.MaxWait,
			Multiplier: 2.0,
		},
		RetryIf: retryIf,
		Context: ctx,
		Logger:  s.log,
	})
	if err != nil {
		// a response whose status kept us retrying is still a
		// response: surface it and let raise_http_errors decide
		if resp != nil && errs.IsType(err, errs.ErrorTypeHTTPStatus) {
			return resp, nil
		}
		return nil, err
	}

	return resp, nil
}

// acceptStatus reports whether a response status ends the retry loop.
// 404 is accepted by default since it rarely heals; retryOn404 opts
// into treating it as transient.
func acceptStatus(status int, retryOn404 bool) bool {
	if status < 400 {
		return true
	}
	return status == 404 && !retryOn404
}

// cacheable reports whether a response may be written through: only
// fresh success/redirect outcomes.
func cacheable(resp *Response) bool {
	return !resp.FromCache && resp.StatusCode >= 200 && resp.StatusCode < 400
}

func (s *Scraper) lookupCache(key, rawurl string) *Response {
	entry, ok, err := s.store.Get(key)
	if err != nil {
		s.log.WithError(err).Warn("cache lookup failed")
		return nil
	}
	if !ok {
		return nil
	}

	finalURL := rawurl
	if loc := http.Header(entry.Header).Get("Content-Location"); loc != "" {
		finalURL = loc
	}

	return &Response{
		StatusCode:   entry.StatusCode,
		Header:       entry.Header,
		Body:         entry.Body,
		Encoding:     entry.Encoding,
		URL:          finalURL,
		RequestedURL: rawurl,
		FromCache:    true,
	}
}

// writeCache stores a response snapshot. Cache writes are an
// optimization: failures are logged and never fail the request.
func (s *Scraper) writeCache(key string, resp *Response) {
	entry := &cache.Entry{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		Encoding:   resp.Encoding,
		StoredAt:   time.Now().UTC(),
	}
	if err := s.store.Set(key, entry); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// buildHeader merges per-call headers over the scraper defaults.
func (s *Scraper) buildHeader(h http.Header) http.Header {
	header := make(http.Header)
	for k, vs := range h {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	if header.Get("User-Agent") == "" && s.cfg.HTTP.UserAgent != "" {
		header.Set("User-Agent", s.cfg.HTTP.UserAgent)
	}
	if s.cfg.HTTP.DisableCompression && header.Get("Accept-Encoding") == "" {
		header.Set("Accept-Encoding", "text/*")
	}
	return header
}

// resolveOptions fills per-call overrides from scraper defaults.
func (s *Scraper) resolveOptions(opts []RequestOption) *requestOptions {
	ro := &requestOptions{}
	for _, opt := range opts {
		opt(ro)
	}
	if ro.timeout == nil {
		ro.timeout = &s.cfg.HTTP.Timeout
	}
	if ro.attempts == nil {
		ro.attempts = &s.cfg.Retry.Attempts
	}
	if ro.retryOn404 == nil {
		ro.retryOn404 = &s.cfg.Retry.RetryOn404
	}
	if ro.followRedirects == nil {
		ro.followRedirects = &s.cfg.HTTP.FollowRedirects
	}
	if ro.maxRedirects == nil {
		ro.maxRedirects = &s.cfg.HTTP.MaxRedirects
	}
	return ro
}

// Get issues a GET request.
func (s *Scraper) Get(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return s.Request(ctx, http.MethodGet, url, opts...)
}

// Post issues a POST request with the given body.
func (s *Scraper) Post(ctx context.Context, url string, body []byte, opts ...RequestOption) (*Response, error) {
	opts = append(opts, WithBody(body))
	return s.Request(ctx, http.MethodPost, url, opts...)
}

// Head issues a HEAD request.
func (s *Scraper) Head(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return s.Request(ctx, http.MethodHead, url, opts...)
}

// Put issues a PUT request with the given body.
func (s *Scraper) Put(ctx context.Context, url string, body []byte, opts ...RequestOption) (*Response, error) {
	opts = append(opts, WithBody(body))
	return s.Request(ctx, http.MethodPut, url, opts...)
}

// Delete issues a DELETE request.
func (s *Scraper) Delete(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return s.Request(ctx, http.MethodDelete, url, opts...)
}

// Retrieve stores the response body to disk, primarily for binary
// payloads. When path is empty a temporary file is created; either way
// the caller owns the file afterwards.
func (s *Scraper) Retrieve(ctx context.Context, url, path string, opts ...RequestOption) (string, *Response, error) {
	resp, err := s.Get(ctx, url, opts...)
	if err != nil {
		return "", nil, err
	}

	var f *os.File
	if path == "" {
		f, err = os.CreateTemp("", "scrapekit-*")
	} else {
		f, err = os.Create(path)
	}
	if err != nil {
		return "", nil, err
	}

	if _, err := f.Write(resp.Body); err != nil {
		f.Close()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		return "", nil, err
	}

	return f.Name(), resp, nil
}
