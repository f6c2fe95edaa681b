package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key returns a deterministic cache key for a request, or "" when the
// request is not cacheable. Only GET requests are keyed; the URL is
// normalized so that equal requests always map to the same key.
func Key(method, rawurl string) string {
	if !strings.EqualFold(method, "GET") {
		return ""
	}
	return NormalizeURL(rawurl)
}

// NormalizeURL rewrites the URL with query parameters ordered
// alphabetically, preventing cache misses due to non-deterministic
// server-side ordering of params in the query string.
func NormalizeURL(rawurl string) string {
	parsed, err := url.Parse(rawurl)
	if err != nil {
		return rawurl
	}

	query := parsed.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		values := query[k]
		sort.Strings(values)
		for _, v := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	parsed.RawQuery = b.String()

	return parsed.String()
}
