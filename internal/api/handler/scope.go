package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/unionhome/internal/api/response"
	"github.com/kiranshivaraju/unionhome/internal/slug"
	"github.com/kiranshivaraju/unionhome/internal/tenant"
	"github.com/kiranshivaraju/unionhome/pkg/models"
)

// TenantResolver maps a slug to a union. Absence covers both unknown slugs
// and store failures.
type TenantResolver interface {
	GetOrFetchBySlug(ctx context.Context, slug string) (*models.Union, bool)
}

// Scope re-derives the union addressed by the {slug} URL parameter. Handlers
// never trust gateway headers for authorization decisions.
type Scope struct {
	resolver TenantResolver
	rule     slug.Rule
}

// NewScope creates a Scope that validates slugs with rule.
func NewScope(resolver TenantResolver, rule slug.Rule) *Scope {
	if rule == nil {
		rule = slug.Valid
	}
	return &Scope{resolver: resolver, rule: rule}
}

// Union resolves the {slug} parameter. On failure it writes the error
// response and returns false.
func (s *Scope) Union(w http.ResponseWriter, r *http.Request) (*models.Union, bool) {
	return s.resolve(w, r, chi.URLParam(r, "slug"))
}

// Lookup validates and resolves raw, returning tenant.ErrInvalidSlug or
// tenant.ErrTenantNotFound on failure. Invalid slugs never reach the store.
func (s *Scope) Lookup(ctx context.Context, raw string) (*models.Union, error) {
	if !s.rule(raw) {
		return nil, tenant.ErrInvalidSlug
	}
	u, ok := s.resolver.GetOrFetchBySlug(ctx, raw)
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return u, nil
}

func (s *Scope) resolve(w http.ResponseWriter, r *http.Request, raw string) (*models.Union, bool) {
	u, err := s.Lookup(r.Context(), raw)
	switch {
	case errors.Is(err, tenant.ErrInvalidSlug):
		response.Error(w, http.StatusBadRequest, "INVALID_SLUG", "Invalid union slug", nil)
		return nil, false
	case err != nil:
		response.Error(w, http.StatusNotFound, "TENANT_NOT_FOUND", "Union not found", nil)
		return nil, false
	}
	return u, true
}
