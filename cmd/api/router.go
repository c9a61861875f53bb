package main

import (
	"context"
	"net/http"
	"time"

	"servicecatalog/internal/catalog"
	"servicecatalog/internal/config"
	"servicecatalog/internal/httpx"
	"servicecatalog/internal/ingest"
	"servicecatalog/internal/platform/crypto"

	"go.uber.org/zap"
)

// newRouter wires handlers and the middleware chain. ready may be nil when
// the service runs without a database.
func newRouter(ctx context.Context, cfg config.API, catalogSvc *catalog.Service, runner ingest.Runner, ready func(context.Context) error, logger *zap.Logger) http.Handler {
	catalogHandler := catalog.NewHTTPHandler(catalogSvc)
	ingestHandler := ingest.NewHTTPHandler(runner)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !catalogSvc.Loaded() {
			http.Error(w, "catalog not loaded", http.StatusServiceUnavailable)
			return
		}
		if ready != nil {
			pingCtx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := ready(pingCtx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /v1/catalog/entries", catalogHandler.List)
	router.HandleFunc("GET /v1/catalog/entries/{key}", catalogHandler.Get)
	router.HandleFunc("GET /v1/catalog/categories", catalogHandler.Categories)
	router.HandleFunc("GET /v1/catalog/stats", catalogHandler.Stats)

	adminOnly := httpx.RequireRole(cfg.Auth.JWTSecret, crypto.RoleAdmin)
	router.Handle("/internal/jobs/ingest", adminOnly(http.HandlerFunc(ingestHandler.Ingest)))

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
}
