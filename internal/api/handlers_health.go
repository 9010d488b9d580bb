package api

import (
	"net/http"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/embedding"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/primary"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/store"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/vectorstore"
)

type HealthHandler struct {
	db      *store.DB
	ollama  *embedding.OllamaClient
	qdrant  *vectorstore.QdrantClient
	primary *primary.Store
}

func NewHealthHandler(db *store.DB, ollama *embedding.OllamaClient, qdrant *vectorstore.QdrantClient, prim *primary.Store) *HealthHandler {
	return &HealthHandler{db: db, ollama: ollama, qdrant: qdrant, primary: prim}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := models.HealthResponse{
		Status: "ok",
	}

	// Check Ollama
	if err := h.ollama.HealthCheck(ctx); err != nil {
		resp.Ollama = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.Ollama = models.ServiceCheck{Status: "ok"}
	}

	// Check Qdrant
	if err := h.qdrant.HealthCheck(ctx); err != nil {
		resp.Qdrant = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.Qdrant = models.ServiceCheck{Status: "ok"}
	}

	// Check DB
	if err := h.db.Ping(); err != nil {
		resp.DB = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.DB = models.ServiceCheck{Status: "ok"}
	}

	resp.MemoryCount = h.primary.Count()

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
