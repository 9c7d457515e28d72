package cache

import (
	"fmt"
	"strings"
)

// InvalidationChannel carries tenant cache invalidations between replicas.
const InvalidationChannel = "unionhome:tenant-cache:invalidate"

const (
	invalidateAll  = "*"
	invalidateSlug = "slug:"
)

func RateLimitKey(scope, subject string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, subject)
}

func encodeInvalidation(slug string) string {
	if slug == "" {
		return invalidateAll
	}
	return invalidateSlug + slug
}

func decodeInvalidation(payload string) (string, bool) {
	if payload == invalidateAll {
		return "", true
	}
	if s, ok := strings.CutPrefix(payload, invalidateSlug); ok && s != "" {
		return s, true
	}
	return "", false
}
