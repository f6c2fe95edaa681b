package scraper

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// Request describes one logical request. It is resolved once per call
// and not mutated by the pipeline afterwards.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte

	// Per-call overrides, resolved against scraper defaults.
	Timeout         time.Duration
	FollowRedirects bool
	// MaxRedirects bounds the redirect chain when following; 0 uses
	// the transport default.
	MaxRedirects int
}

// Response is the uniform result shape returned for both HTTP and FTP
// exchanges. It is owned solely by the caller after return.
type Response struct {
	// StatusCode is the HTTP status, with FTP outcomes mapped onto
	// HTTP-equivalent codes (success 200, file unavailable 404).
	StatusCode int
	Header     http.Header
	Body       []byte
	// Encoding is the detected charset name, if any.
	Encoding string
	// URL is the final URL after redirects.
	URL string
	// RequestedURL is the URL originally requested.
	RequestedURL string
	// History lists intermediate redirect URLs, oldest first.
	History []string
	// FromCache is true when the response was replayed from cache.
	FromCache bool
}

// Text returns the body decoded to UTF-8, best effort: the stored
// charset first, then content sniffing, then raw bytes as-is.
func (r *Response) Text() string {
	enc, name := charset.Lookup(r.Encoding)
	if enc == nil {
		enc, name, _ = charset.DetermineEncoding(r.Body, r.Header.Get("Content-Type"))
	}
	if enc == nil || name == "utf-8" {
		return string(r.Body)
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(r.Body), enc.NewDecoder()))
	if err != nil {
		return string(r.Body)
	}
	return string(decoded)
}

// detectEncoding names the charset of a body for cache storage.
func detectEncoding(body []byte, contentType string) string {
	_, name, _ := charset.DetermineEncoding(body, contentType)
	return name
}

// HTTPStatusError is returned when raise_http_errors is enabled and
// the final response status is outside the success/redirect range.
type HTTPStatusError struct {
	Response *Response
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%d while retrieving %s", e.Response.StatusCode, e.Response.URL)
}

// requestOptions collects per-call overrides.
type requestOptions struct {
	header          http.Header
	body            []byte
	timeout         *time.Duration
	attempts        *int
	retryOn404      *bool
	followRedirects *bool
	maxRedirects    *int
}

// RequestOption overrides a scraper default for a single call.
type RequestOption func(*requestOptions)

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = make(http.Header)
		}
		o.header.Set(key, value)
	}
}

// WithHeaders merges a full header set into the request.
func WithHeaders(h http.Header) RequestOption {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = make(http.Header)
		}
		for k, vs := range h {
			for _, v := range vs {
				o.header.Add(k, v)
			}
		}
	}
}

// WithBody sets the request body.
func WithBody(body []byte) RequestOption {
	return func(o *requestOptions) { o.body = body }
}

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = &d }
}

// WithRetries overrides the attempt budget for this call.
func WithRetries(attempts int) RequestOption {
	return func(o *requestOptions) { o.attempts = &attempts }
}

// WithRetryOn404 retries 404 responses for this call; use on pages
// known to exist.
func WithRetryOn404() RequestOption {
	on := true
	return func(o *requestOptions) { o.retryOn404 = &on }
}

// WithoutRedirects disables redirect following for this call.
func WithoutRedirects() RequestOption {
	off := false
	return func(o *requestOptions) { o.followRedirects = &off }
}

// WithMaxRedirects bounds the redirect chain for this call; exceeding
// it surfaces as a transport error.
func WithMaxRedirects(n int) RequestOption {
	return func(o *requestOptions) { o.maxRedirects = &n }
}
