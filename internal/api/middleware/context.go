package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	keyUnionIDKey   contextKey = "key_union_id"
	keyPrefixKey    contextKey = "key_prefix"
	apiKeyScopesKey contextKey = "api_key_scopes"
)

// SetKeyUnionID records the union that owns the authenticated API key.
func SetKeyUnionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, keyUnionIDKey, id)
}

// GetKeyUnionID returns the union that owns the authenticated API key. It is
// not the union addressed by the URL; handlers compare the two.
func GetKeyUnionID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(keyUnionIDKey).(uuid.UUID)
	return id, ok
}

func setKeyPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, keyPrefixKey, prefix)
}

func getKeyPrefix(r *http.Request) (string, bool) {
	prefix, ok := r.Context().Value(keyPrefixKey).(string)
	return prefix, ok
}

// SetScopes attaches API key scopes to ctx.
func SetScopes(ctx context.Context, scopes []string) context.Context {
	return context.WithValue(ctx, apiKeyScopesKey, scopes)
}

// HasScope reports whether the authenticated key carries scope.
func HasScope(r *http.Request, scope string) bool {
	scopes, _ := r.Context().Value(apiKeyScopesKey).([]string)
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}
