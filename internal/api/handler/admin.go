package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/unionhome/internal/api/response"
	"github.com/kiranshivaraju/unionhome/internal/tenant"
)

// InvalidationPublisher broadcasts cache invalidations to other replicas.
// An empty slug means every entry.
type InvalidationPublisher interface {
	PublishInvalidation(ctx context.Context, slug string) error
}

// NewInvalidateTenantHandler returns an http.HandlerFunc for
// DELETE /api/v1/admin/tenant-cache/{slug}. Use it after renaming or
// removing a union so the change is visible before the TTL runs out.
func NewInvalidateTenantHandler(c *tenant.Cache, pub InvalidationPublisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := chi.URLParam(r, "slug")
		if s == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_SLUG", "Invalid union slug", nil)
			return
		}

		c.Delete(s)
		response.JSON(w, map[string]any{
			"slug":        s,
			"broadcasted": broadcast(r.Context(), pub, s),
		})
	}
}

// NewClearTenantCacheHandler returns an http.HandlerFunc for
// DELETE /api/v1/admin/tenant-cache.
func NewClearTenantCacheHandler(c *tenant.Cache, pub InvalidationPublisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := c.Len()
		c.Clear()
		response.JSON(w, map[string]any{
			"cleared":     n,
			"broadcasted": broadcast(r.Context(), pub, ""),
		})
	}
}

type cacheStatsResponse struct {
	Entries    int          `json:"entries"`
	TTLSeconds int64        `json:"ttl_seconds"`
	Resolver   tenant.Stats `json:"resolver"`
}

// NewTenantCacheStatsHandler returns an http.HandlerFunc for
// GET /api/v1/admin/tenant-cache/stats.
func NewTenantCacheStatsHandler(res *tenant.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		c := res.Cache()
		response.JSON(w, cacheStatsResponse{
			Entries:    c.Len(),
			TTLSeconds: int64(c.DefaultTTL().Seconds()),
			Resolver:   res.Stats(),
		})
	}
}

func broadcast(ctx context.Context, pub InvalidationPublisher, slug string) bool {
	if pub == nil {
		return false
	}
	if err := pub.PublishInvalidation(ctx, slug); err != nil {
		slog.Warn("tenant cache invalidation not broadcast", "slug", slug, "error", err)
		return false
	}
	return true
}
