// Package main is the entrypoint for the unionhome server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/unionhome/internal/api"
	"github.com/kiranshivaraju/unionhome/internal/api/handler"
	mw "github.com/kiranshivaraju/unionhome/internal/api/middleware"
	"github.com/kiranshivaraju/unionhome/internal/api/response"
	"github.com/kiranshivaraju/unionhome/internal/cache"
	"github.com/kiranshivaraju/unionhome/internal/config"
	"github.com/kiranshivaraju/unionhome/internal/gateway"
	"github.com/kiranshivaraju/unionhome/internal/metrics"
	"github.com/kiranshivaraju/unionhome/internal/slug"
	"github.com/kiranshivaraju/unionhome/internal/store"
	"github.com/kiranshivaraju/unionhome/internal/tenant"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout     = 30 * time.Second
	resubscribeInterval = 5 * time.Second
	keyRequestsPerMin   = 60
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional and only used in development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"tenant_cache_ttl", cfg.Tenant.CacheTTL.String(),
		"upstream", cfg.Gateway.UpstreamURL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Tenant resolution: one cache per process, shared by every consumer
	pgStore := store.NewPostgresStore(pool)
	m := metrics.New()
	tenantCache := tenant.NewCache(cfg.Tenant.CacheTTL)
	resolver := tenant.NewResolver(tenantCache, pgStore, m)

	gw := gateway.New(resolver,
		gateway.WithReservedPaths(cfg.Gateway.ReservedPaths),
		gateway.WithObserver(m),
	)

	// 6. Build router with dependencies
	strict := handler.NewScope(resolver, slug.Valid)
	board := handler.NewScope(resolver, slug.ValidLowercase)

	deps := api.Dependencies{
		Auth:            mw.NewAuth(pgStore),
		KeyRateLimit:    mw.NewRateLimit(redisCache, keyRequestsPerMin, "key", mw.ByKeyPrefix),
		LookupRateLimit: mw.NewRateLimit(redisCache, cfg.Tenant.LookupRateLimit, "lookup", mw.ByClientIP),
		Gateway:         gw.Handler,
		Observer:        m,

		HealthHandler:  healthHandler(pgStore, redisCache),
		MetricsHandler: m.Handler(),

		LookupHandler:      handler.NewLookupHandler(strict),
		ListAnnouncements:  handler.NewListAnnouncementsHandler(board, pgStore),
		GetAnnouncement:    handler.NewGetAnnouncementHandler(board, pgStore),
		CreateAnnouncement: handler.NewCreateAnnouncementHandler(board, pgStore),
		DeleteAnnouncement: handler.NewDeleteAnnouncementHandler(board, pgStore),

		InvalidateTenant: handler.NewInvalidateTenantHandler(tenantCache, redisCache),
		ClearTenantCache: handler.NewClearTenantCacheHandler(tenantCache, redisCache),
		TenantCacheStats: handler.NewTenantCacheStatsHandler(resolver),
		CreateKeyHandler: handler.NewCreateKeyHandler(strict, pgStore),

		Homepage: handler.NewHomepageHandler(pgStore),
	}

	if cfg.Gateway.UpstreamURL != "" {
		proxy, err := handler.NewUpstreamProxy(cfg.Gateway.UpstreamURL)
		if err != nil {
			return fmt.Errorf("create upstream proxy: %w", err)
		}
		deps.PageProxy = proxy
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		watchInvalidations(gctx, redisCache, tenantCache)
		return nil
	})

	// Graceful shutdown on signal or when the listener fails
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down, draining connections...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}

// invalidationSource delivers tenant cache invalidations published by any
// replica.
type invalidationSource interface {
	SubscribeInvalidations(ctx context.Context, fn func(slug string)) error
}

// watchInvalidations applies remote invalidations to the local tenant cache
// until ctx is done, resubscribing after connection loss.
func watchInvalidations(ctx context.Context, src invalidationSource, c *tenant.Cache) {
	for {
		err := src.SubscribeInvalidations(ctx, func(s string) {
			applyInvalidation(c, s)
		})
		if ctx.Err() != nil {
			return
		}
		slog.Warn("tenant cache invalidation feed lost, retrying",
			"error", err,
			"retry_in", resubscribeInterval.String(),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeInterval):
		}
	}
}

func applyInvalidation(c *tenant.Cache, s string) {
	if s == "" {
		c.Clear()
		slog.Info("tenant cache cleared by remote invalidation")
		return
	}
	c.Delete(s)
	slog.Info("tenant cache entry invalidated", "slug", s)
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
