package tenant

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/kiranshivaraju/unionhome/internal/store"
	"github.com/kiranshivaraju/unionhome/pkg/models"
)

// Resolution outcomes, used as metric labels.
const (
	OutcomeHit        = "hit"
	OutcomeMiss       = "miss"
	OutcomeNotFound   = "not_found"
	OutcomeStoreError = "store_error"
)

// Finder is the slice of the store the resolver needs.
type Finder interface {
	GetUnionBySlug(ctx context.Context, slug string) (*models.Union, error)
}

// Observer receives one call per resolution outcome.
type Observer interface {
	ObserveResolution(outcome string)
}

// Stats is a snapshot of resolver counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	NotFound    int64 `json:"not_found"`
	StoreErrors int64 `json:"store_errors"`
}

// Resolver turns a slug into a union using the cache, then the store.
type Resolver struct {
	cache    *Cache
	finder   Finder
	observer Observer
	logger   *slog.Logger

	hits, misses, notFound, storeErrors atomic.Int64
}

// NewResolver creates a Resolver. observer may be nil.
func NewResolver(cache *Cache, finder Finder, observer Observer) *Resolver {
	return &Resolver{
		cache:    cache,
		finder:   finder,
		observer: observer,
		logger:   slog.Default().With("component", "tenant_resolver"),
	}
}

// Cache returns the cache shared by this resolver.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// GetOrFetchBySlug returns the union for slug, or false when it does not
// exist or the store could not be read. Only found unions are cached.
func (r *Resolver) GetOrFetchBySlug(ctx context.Context, slug string) (*models.Union, bool) {
	if u, ok := r.cache.Get(slug); ok {
		r.hits.Add(1)
		r.observe(OutcomeHit)
		return u, true
	}

	u, err := r.finder.GetUnionBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.notFound.Add(1)
			r.observe(OutcomeNotFound)
			return nil, false
		}
		r.storeErrors.Add(1)
		r.observe(OutcomeStoreError)
		r.logger.Error("union lookup failed, treating as not found",
			"slug", slug,
			"error", err,
		)
		return nil, false
	}
	if u == nil {
		r.notFound.Add(1)
		r.observe(OutcomeNotFound)
		return nil, false
	}

	r.misses.Add(1)
	r.observe(OutcomeMiss)
	r.cache.Set(slug, u, 0)
	return u, true
}

// Stats returns the current counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		Hits:        r.hits.Load(),
		Misses:      r.misses.Load(),
		NotFound:    r.notFound.Load(),
		StoreErrors: r.storeErrors.Load(),
	}
}

func (r *Resolver) observe(outcome string) {
	if r.observer != nil {
		r.observer.ObserveResolution(outcome)
	}
}
