package tenant

import "errors"

var (
	// ErrInvalidSlug is returned when a candidate slug fails validation.
	ErrInvalidSlug = errors.New("invalid tenant slug")

	// ErrTenantNotFound is returned when a slug does not resolve to a union.
	ErrTenantNotFound = errors.New("tenant not found")
)
