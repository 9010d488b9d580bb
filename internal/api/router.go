package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/embedding"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/primary"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/retrieval"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/settings"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/store"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/syncer"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/vectorstore"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	db *store.DB,
	settingsMgr *settings.Manager,
	guard settings.Guard,
	retrievalSvc *retrieval.Service,
	pipeline *syncer.Pipeline,
	metrics *store.MetricsStore,
	prim *primary.Store,
	embedder retrieval.Embedder,
	ollama *embedding.OllamaClient,
	qdrant *vectorstore.QdrantClient,
	apiKey string,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	// Handlers
	healthH := NewHealthHandler(db, ollama, qdrant, prim)
	settingsH := NewSettingsHandler(settingsMgr)
	indexH := NewIndexHandler(qdrant, settingsMgr, guard)
	syncH := NewSyncHandler(pipeline, metrics, qdrant)
	retrieveH := NewRetrieveHandler(retrievalSvc)
	memoryH := NewMemoryHandler(prim, embedder)

	// Unauthenticated routes
	r.Get("/health", healthH.Health)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsH.Get)
			r.Patch("/", settingsH.Patch)
			r.Post("/restore-defaults", settingsH.RestoreDefaults)
		})

		r.Get("/status", syncH.Status)

		r.Route("/indexes", func(r chi.Router) {
			r.Get("/", indexH.List)
			r.Post("/", indexH.Create)
			r.Delete("/{name}", indexH.Delete)
			r.Post("/{name}/wipe", indexH.Wipe)
		})

		r.Post("/sync", syncH.Sync)
		r.Post("/hydrate", syncH.Hydrate)
		r.Get("/metrics", syncH.Metrics)
		r.Post("/reset-metrics", syncH.ResetMetrics)

		r.Route("/memories", func(r chi.Router) {
			r.Get("/", memoryH.List)
			r.Post("/", memoryH.Store)
		})

		r.Post("/retrieve", retrieveH.Retrieve)
	})

	return r
}
