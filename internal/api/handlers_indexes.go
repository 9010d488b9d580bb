package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/settings"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/vectorstore"
)

type IndexHandler struct {
	qdrant   *vectorstore.QdrantClient
	settings *settings.Manager
	guard    settings.Guard
}

func NewIndexHandler(qdrant *vectorstore.QdrantClient, settingsMgr *settings.Manager, guard settings.Guard) *IndexHandler {
	return &IndexHandler{qdrant: qdrant, settings: settingsMgr, guard: guard}
}

// List handles GET /indexes
func (h *IndexHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	names, err := h.qdrant.ListIndexes(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	indexes := make([]models.IndexInfo, 0, len(names))
	for _, name := range names {
		desc, err := h.qdrant.DescribeIndex(ctx, name)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		namespaces, err := h.qdrant.ListNamespaces(ctx, name)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		indexes = append(indexes, models.IndexInfo{
			Name:        desc.Name,
			Dimension:   desc.Dimension,
			Metric:      desc.Metric,
			VectorCount: desc.VectorCount,
			Namespaces:  namespaces,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"indexes": indexes})
}

// Create handles POST /indexes
func (h *IndexHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIndexRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Dimension < 1 {
		writeError(w, http.StatusBadRequest, "dimension must be positive")
		return
	}

	exists, err := h.qdrant.IndexExists(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "index already exists")
		return
	}

	if err := h.qdrant.CreateIndex(r.Context(), req.Name, req.Dimension, req.Metric); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.IndexInfo{
		Name:      req.Name,
		Dimension: req.Dimension,
		Metric:    req.Metric,
	})
}

// Delete handles DELETE /indexes/{name}
func (h *IndexHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.guard.CanChangeIndexSettings() {
		writeError(w, http.StatusConflict, models.ErrOperationInProgress.Error())
		return
	}

	name := chi.URLParam(r, "name")

	if err := h.qdrant.DeleteIndex(r.Context(), name); err != nil {
		writeServiceError(w, err)
		return
	}

	// Retrieval must never point at a deleted index.
	if err := h.settings.ClearActiveIndex(name); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Wipe handles POST /indexes/{name}/wipe
func (h *IndexHandler) Wipe(w http.ResponseWriter, r *http.Request) {
	if !h.guard.CanChangeIndexSettings() {
		writeError(w, http.StatusConflict, models.ErrOperationInProgress.Error())
		return
	}

	name := chi.URLParam(r, "name")

	var req models.WipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.qdrant.Wipe(r.Context(), name, req.Namespace); err != nil {
		writeServiceError(w, err)
		return
	}

	remaining, err := h.qdrant.Count(r.Context(), name, "")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"wiped":            true,
		"remainingVectors": remaining,
	})
}
