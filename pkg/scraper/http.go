package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	errs "scrapekit/pkg/errors"
	"scrapekit/pkg/logger"
)

// Adapter performs one physical exchange for a protocol family and
// normalizes the outcome into a Response.
type Adapter interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPAdapter delegates to an *http.Client, which owns redirect
// following, connection reuse and TLS.
type HTTPAdapter struct {
	client *http.Client
	log    logger.Logger
}

// NewHTTPAdapter wraps the given client; nil uses a fresh client with
// no global timeout (timeouts are applied per attempt via context).
func NewHTTPAdapter(client *http.Client, log logger.Logger) *HTTPAdapter {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &HTTPAdapter{client: client, log: log}
}

// Do performs one HTTP exchange. The whole exchange, redirects
// included, counts as a single attempt.
func (a *HTTPAdapter) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfiguration, err, "cannot build request")
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	client := a.client
	switch {
	case !req.FollowRedirects:
		// shallow copy so the redirect policy is per request
		c := *a.client
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		client = &c
	case req.MaxRedirects > 0:
		c := *a.client
		limit := req.MaxRedirects
		c.CheckRedirect = func(r *http.Request, via []*http.Request) error {
			if len(via) > limit {
				return fmt.Errorf("stopped after %d redirects", limit)
			}
			return nil
		}
		client = &c
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err, req.URL)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classifyTransportError(err, req.URL)
	}

	return &Response{
		StatusCode:   httpResp.StatusCode,
		Header:       httpResp.Header,
		Body:         raw,
		Encoding:     detectEncoding(raw, httpResp.Header.Get("Content-Type")),
		URL:          httpResp.Request.URL.String(),
		RequestedURL: req.URL,
		History:      redirectHistory(httpResp),
	}, nil
}

// redirectHistory walks the response chain left behind by the
// transport and returns the intermediate URLs, oldest first.
func redirectHistory(resp *http.Response) []string {
	var history []string
	for r := resp.Request.Response; r != nil; r = r.Request.Response {
		history = append(history, r.Request.URL.String())
	}
	// the chain is newest first
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history
}

// classifyTransportError maps transport failures onto the retryable
// error taxonomy.
func classifyTransportError(err error, url string) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &errs.Error{Type: errs.ErrorTypeTimeout, Message: "request timed out", URL: url, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &errs.Error{Type: errs.ErrorTypeTimeout, Message: "request timed out", URL: url, Err: err}
	case errors.Is(err, context.Canceled):
		return err
	default:
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: err.Error(), URL: url, Err: err}
	}
}
