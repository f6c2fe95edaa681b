package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyOnlyForGET(t *testing.T) {
	assert.NotEmpty(t, Key("GET", "http://example.com/page"))
	assert.NotEmpty(t, Key("get", "http://example.com/page"))

	for _, method := range []string{"POST", "PUT", "DELETE", "HEAD", "PATCH"} {
		assert.Empty(t, Key(method, "http://example.com/page"), method)
	}
}

func TestKeyDeterministic(t *testing.T) {
	a := Key("GET", "http://example.com/page?b=2&a=1")
	b := Key("GET", "http://example.com/page?b=2&a=1")
	assert.Equal(t, a, b)
}

func TestNormalizeURLSortsQueryParams(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{
			"two params swapped",
			"http://example.com/page?b=2&a=1",
			"http://example.com/page?a=1&b=2",
		},
		{
			"three params shuffled",
			"http://example.com/?c=3&a=1&b=2",
			"http://example.com/?b=2&c=3&a=1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, NormalizeURL(test.a), NormalizeURL(test.b))
		})
	}
}

func TestNormalizeURLPreservesDistinctRequests(t *testing.T) {
	assert.NotEqual(t,
		NormalizeURL("http://example.com/page?a=1"),
		NormalizeURL("http://example.com/page?a=2"))
	assert.NotEqual(t,
		NormalizeURL("http://example.com/one"),
		NormalizeURL("http://example.com/two"))
}

func TestNormalizeURLNoQuery(t *testing.T) {
	assert.Equal(t, "http://example.com/page", NormalizeURL("http://example.com/page"))
}
