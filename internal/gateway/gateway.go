// Package gateway resolves the union addressed by the first path segment of
// every inbound request and forwards the request annotated with its identity.
//
// Requests for the site root, static assets and reserved system paths pass
// through untouched. Everything else is treated as a tenant candidate: an
// invalid or unknown slug ends at the not-found handler, a known one continues
// with the union attached to the request context and to the X-Tenant-*
// headers.
package gateway

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/kiranshivaraju/unionhome/internal/api/response"
	"github.com/kiranshivaraju/unionhome/internal/slug"
	"github.com/kiranshivaraju/unionhome/internal/tenant"
	"github.com/kiranshivaraju/unionhome/pkg/models"
)

// Identity headers set on forwarded requests. Inbound copies are always
// removed so clients cannot spoof them.
const (
	HeaderSlug = "X-Tenant-Slug"
	HeaderID   = "X-Tenant-Id"
	HeaderName = "X-Tenant-Name"
)

// Terminal states of a request, used as metric labels.
const (
	StateRootPath       = "root_path"
	StateStaticAsset    = "static_asset"
	StateSystemPath     = "system_path"
	StateTenantResolved = "tenant_resolved"
	StateTenantNotFound = "tenant_not_found"
)

// StateTenantCandidate is the intermediate state returned by Classify for
// paths that must be resolved.
const StateTenantCandidate = "tenant_candidate"

var staticAssetPattern = regexp.MustCompile(`\.[A-Za-z0-9]{1,8}$`)

// Resolver is the tenant lookup the gateway depends on.
type Resolver interface {
	GetOrFetchBySlug(ctx context.Context, slug string) (*models.Union, bool)
}

// Observer receives the terminal state of every request.
type Observer interface {
	ObserveGateway(state string)
}

type config struct {
	reserved map[string]struct{}
	notFound http.Handler
	observer Observer
	rule     slug.Rule
}

// Option configures the gateway.
type Option func(*config)

// WithReservedPaths replaces the set of first path segments that are never
// treated as tenants.
func WithReservedPaths(paths []string) Option {
	return func(c *config) {
		c.reserved = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			p = strings.Trim(strings.TrimSpace(p), "/")
			if p != "" {
				c.reserved[p] = struct{}{}
			}
		}
	}
}

// WithNotFound sets the handler that answers invalid and unknown slugs.
func WithNotFound(h http.Handler) Option {
	return func(c *config) {
		c.notFound = h
	}
}

// WithObserver reports terminal states, typically to Prometheus.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observer = o
	}
}

// WithSlugRule overrides the slug syntax check. Defaults to slug.Valid.
func WithSlugRule(rule slug.Rule) Option {
	return func(c *config) {
		c.rule = rule
	}
}

// Gateway is the tenant-resolving middleware.
type Gateway struct {
	resolver Resolver
	cfg      config
}

// New creates a Gateway. Without WithReservedPaths every non-root,
// non-asset path is a tenant candidate.
func New(resolver Resolver, opts ...Option) *Gateway {
	cfg := config{
		reserved: map[string]struct{}{},
		notFound: http.HandlerFunc(NotFound),
		rule:     slug.Valid,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Gateway{resolver: resolver, cfg: cfg}
}

// Classify returns the state a path ends in before any lookup, and the
// candidate slug when that state is StateTenantCandidate.
func (g *Gateway) Classify(path string) (state, candidate string) {
	if path == "" || path == "/" {
		return StateRootPath, ""
	}

	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return StateRootPath, ""
	}

	segments := strings.Split(trimmed, "/")
	if staticAssetPattern.MatchString(segments[len(segments)-1]) {
		return StateStaticAsset, ""
	}

	first := segments[0]
	if _, ok := g.cfg.reserved[first]; ok {
		return StateSystemPath, ""
	}
	return StateTenantCandidate, first
}

// Handler wraps next with tenant resolution.
func (g *Gateway) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(HeaderSlug)
		r.Header.Del(HeaderID)
		r.Header.Del(HeaderName)

		state, candidate := g.Classify(r.URL.Path)
		if state != StateTenantCandidate {
			g.observe(state)
			next.ServeHTTP(w, r)
			return
		}

		if !g.cfg.rule(candidate) {
			g.observe(StateTenantNotFound)
			g.cfg.notFound.ServeHTTP(w, r)
			return
		}

		u, ok := g.resolver.GetOrFetchBySlug(r.Context(), candidate)
		if !ok {
			g.observe(StateTenantNotFound)
			g.cfg.notFound.ServeHTTP(w, r)
			return
		}

		g.observe(StateTenantResolved)
		r = r.WithContext(tenant.WithUnion(r.Context(), u))
		SetIdentityHeaders(r.Header, u)
		next.ServeHTTP(w, r)
	})
}

// SetIdentityHeaders writes the union's identity into h. The name is
// percent-encoded because header values must be ASCII.
func SetIdentityHeaders(h http.Header, u *models.Union) {
	h.Set(HeaderSlug, u.Slug)
	h.Set(HeaderID, u.ID.String())
	h.Set(HeaderName, url.PathEscape(u.DisplayName()))
}

// NotFound is the default not-found handler.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, http.StatusNotFound, "TENANT_NOT_FOUND", "Union not found", nil)
}

func (g *Gateway) observe(state string) {
	if g.cfg.observer != nil {
		g.cfg.observer.ObserveGateway(state)
	}
}
