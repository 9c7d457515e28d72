package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitKey(t *testing.T) {
	assert.Equal(t, "ratelimit:lookup:10.0.0.1", RateLimitKey("lookup", "10.0.0.1"))
	assert.Equal(t, "ratelimit:key:uh_abcd1", RateLimitKey("key", "uh_abcd1"))
}

func TestRateLimitKey_ScopesDoNotCollide(t *testing.T) {
	assert.NotEqual(t, RateLimitKey("lookup", "x"), RateLimitKey("key", "x"))
}

func TestInvalidationEncoding(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		slug    string
		valid   bool
	}{
		{"all", "*", "", true},
		{"slug", "slug:demo", "demo", true},
		{"empty slug", "slug:", "", false},
		{"garbage", "demo", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug, ok := decodeInvalidation(tt.payload)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.slug, slug)
		})
	}

	slug, ok := decodeInvalidation(encodeInvalidation("seoul-metro"))
	assert.True(t, ok)
	assert.Equal(t, "seoul-metro", slug)

	slug, ok = decodeInvalidation(encodeInvalidation(""))
	assert.True(t, ok)
	assert.Equal(t, "", slug)
}
