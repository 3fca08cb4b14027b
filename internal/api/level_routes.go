package api

import (
	"net/http"
	"time"

	"github.com/levelforge/server/internal/auth"
	"github.com/levelforge/server/internal/catalog"
	"github.com/levelforge/server/internal/config"
	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/performance"
	"github.com/levelforge/server/internal/streaming"
)

// SetupLevelRoutes registers level generation and retrieval routes.
func SetupLevelRoutes(mux *http.ServeMux, store LevelStore, cat *catalog.Memory[geom.Rect], cfg *config.Config, streams *streaming.Manager, profiler *performance.Profiler, authHandlers *auth.AuthHandlers) {
	handlers := NewLevelHandlers(store, cat, cfg, streams, profiler)

	// Per-client rate limiting for level requests
	clientRateLimit := ClientRateLimitMiddleware(100, 1*time.Minute)

	levelHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/api/levels":
			handlers.CreateLevel(w, r)
		case r.Method == "GET" && r.URL.Path == "/api/levels":
			handlers.ListLevels(w, r)
		case r.Method == "GET":
			handlers.GetLevel(w, r)
		case r.Method == "DELETE":
			handlers.DeleteLevel(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	authenticatedHandler := authHandlers.AuthMiddleware(levelHandler)
	rateLimitedHandler := clientRateLimit(authenticatedHandler)

	mux.Handle("/api/levels/", rateLimitedHandler)
	mux.Handle("/api/levels", rateLimitedHandler)

	mux.HandleFunc("/health", handlers.HealthCheck)
	mux.Handle("/api/stats", authHandlers.AuthMiddleware(http.HandlerFunc(handlers.Stats)))
}

// SetupAuthRoutes sets up authentication routes with rate limiting.
func SetupAuthRoutes(mux *http.ServeMux, cfg *config.Config) *auth.AuthHandlers {
	jwtService := auth.NewJWTService(cfg)
	apiKeyService := auth.NewAPIKeyService(cfg)
	authHandlers := auth.NewAuthHandlers(jwtService, apiKeyService)

	// 5 requests per minute per IP for token issuance
	authRateLimit := RateLimitMiddleware(5, 1*time.Minute)

	mux.Handle("/api/auth/token", authRateLimit(http.HandlerFunc(authHandlers.Token)))

	return authHandlers
}

// SecurityHeadersMiddleware wraps auth.SecurityHeadersMiddleware for use in main
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return auth.SecurityHeadersMiddleware(next)
}
