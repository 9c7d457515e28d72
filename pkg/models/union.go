package models

import (
	"time"

	"github.com/google/uuid"
)

// Union is a tenant: one organization with its own homepage, addressed by Slug.
// Slug is unique and never changes once assigned; the profile fields are
// edited by union administrators and carry no identity.
type Union struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Slug      string    `db:"slug"       json:"slug"`
	Name      string    `db:"name"       json:"name,omitempty"`
	Address   string    `db:"address"    json:"address,omitempty"`
	Phone     string    `db:"phone"      json:"phone,omitempty"`
	Email     string    `db:"email"      json:"email,omitempty"`
	LogoURL   string    `db:"logo_url"   json:"logo_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName is the name shown on the homepage, falling back to the slug
// for unions that have not filled in their profile yet.
func (u *Union) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Slug
}
