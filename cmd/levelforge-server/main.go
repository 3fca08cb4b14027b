package main

import (
	"log"
	"net/http"

	"github.com/levelforge/server/internal/api"
	"github.com/levelforge/server/internal/catalog"
	"github.com/levelforge/server/internal/compression"
	"github.com/levelforge/server/internal/config"
	"github.com/levelforge/server/internal/database"
	"github.com/levelforge/server/internal/geom"
	"github.com/levelforge/server/internal/performance"
	"github.com/levelforge/server/internal/streaming"
)

// main starts the LevelForge generation server: load config, open the
// database, build the template catalog, register routes, listen.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	templateStorage := database.NewTemplateStorage(db)
	if err := templateStorage.SeedDefaults(); err != nil {
		log.Fatalf("Failed to seed default templates: %v", err)
	}

	cat, err := loadCatalog(templateStorage)
	if err != nil {
		log.Fatalf("Failed to load template catalog: %v", err)
	}
	log.Printf("Loaded %d templates into the catalog", len(cat.Templates()))

	levelStorage := database.NewLevelStorage(db)
	streams := streaming.NewManager()
	profiler := performance.NewProfiler(true)

	mux := http.NewServeMux()
	authHandlers := api.SetupAuthRoutes(mux, cfg)
	api.SetupLevelRoutes(mux, levelStorage, cat, cfg, streams, profiler, authHandlers)

	wsHandlers := api.NewWebSocketHandlers(cfg, streams)
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)

	// Middleware chain: security headers -> CORS -> gzip -> routes.
	handler := api.SecurityHeadersMiddleware(api.CORSMiddleware(compression.GzipMiddleware(mux)))

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("LevelForge server starting on %s (environment: %s)", server.Addr, cfg.Server.Environment)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// loadCatalog builds the in-memory catalog from stored template records,
// falling back to the built-in set when the table is empty.
func loadCatalog(storage *database.TemplateStorage) (*catalog.Memory[geom.Rect], error) {
	records, err := storage.ListTemplates()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return catalog.Default(), nil
	}
	return catalog.FromRecords(records)
}
