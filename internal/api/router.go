package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/unionhome/internal/api/middleware"
	"github.com/kiranshivaraju/unionhome/internal/api/response"
	"github.com/kiranshivaraju/unionhome/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth            *mw.Auth
	KeyRateLimit    *mw.RateLimit
	LookupRateLimit *mw.RateLimit
	// Gateway resolves the tenant of every request before routing.
	Gateway  func(http.Handler) http.Handler
	Observer mw.RequestObserver

	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler

	LookupHandler      http.HandlerFunc
	ListAnnouncements  http.HandlerFunc
	GetAnnouncement    http.HandlerFunc
	CreateAnnouncement http.HandlerFunc
	DeleteAnnouncement http.HandlerFunc

	InvalidateTenant http.HandlerFunc
	ClearTenantCache http.HandlerFunc
	TenantCacheStats http.HandlerFunc
	CreateKeyHandler http.HandlerFunc

	// Homepage serves tenant pages unless PageProxy is set, in which case
	// the root and every tenant page go to the external renderer.
	Homepage  http.HandlerFunc
	PageProxy http.Handler
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger(deps.Observer))
	r.Use(mw.Recovery)
	if deps.Gateway != nil {
		r.Use(deps.Gateway)
	}

	// Public endpoints
	r.Get("/health", orNotImplemented(deps.HealthHandler))
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.With(limit(deps.LookupRateLimit)...).
		Get("/api/v1/unions/lookup", orNotImplemented(deps.LookupHandler))

	r.Route("/api/v1/unions/{slug}/announcements", func(r chi.Router) {
		r.Get("/", orNotImplemented(deps.ListAnnouncements))
		r.Get("/{id}", orNotImplemented(deps.GetAnnouncement))

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Authenticate)
			r.Use(limit(deps.KeyRateLimit)...)

			r.Post("/", orNotImplemented(deps.CreateAnnouncement))
			r.Delete("/{id}", orNotImplemented(deps.DeleteAnnouncement))
		})
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(limit(deps.KeyRateLimit)...)
		r.Use(deps.Auth.RequireScope(models.ScopePlatform))

		r.Delete("/api/v1/admin/tenant-cache/{slug}", orNotImplemented(deps.InvalidateTenant))
		r.Delete("/api/v1/admin/tenant-cache", orNotImplemented(deps.ClearTenantCache))
		r.Get("/api/v1/admin/tenant-cache/stats", orNotImplemented(deps.TenantCacheStats))

		r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
	})

	// Tenant pages
	if deps.PageProxy != nil {
		r.Handle("/", deps.PageProxy)
		r.Handle("/{slug}", deps.PageProxy)
		r.Handle("/{slug}/*", deps.PageProxy)
	} else {
		r.Get("/{slug}", orNotImplemented(deps.Homepage))
		r.Get("/{slug}/*", orNotImplemented(deps.Homepage))
	}

	return r
}

func limit(rl *mw.RateLimit) []func(http.Handler) http.Handler {
	if rl == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{rl.Limit}
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
