package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// ScopeWrite lets a key manage its own union's board.
	ScopeWrite = "write"
	// ScopePlatform grants operator access across every union.
	ScopePlatform = "platform"
)

// KeyPrefixLen is the number of leading characters of a raw key stored in
// clear for lookup.
const KeyPrefixLen = 8

// APIKey authenticates a union administrator (or a platform operator) against
// the write and admin endpoints. Raw keys are shown once at creation; only the
// bcrypt hash is stored.
type APIKey struct {
	ID         uuid.UUID  `db:"id"           json:"id"`
	UnionID    uuid.UUID  `db:"union_id"     json:"union_id"`
	Name       string     `db:"name"         json:"name"`
	KeyHash    string     `db:"key_hash"     json:"-"`
	KeyPrefix  string     `db:"key_prefix"   json:"key_prefix"`
	Scopes     []string   `db:"scopes"       json:"scopes"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	DeletedAt  *time.Time `db:"deleted_at"   json:"-"`
	CreatedAt  time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"   json:"updated_at"`
}

// HasScope reports whether the key carries the given scope.
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
