package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/store"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/syncer"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/vectorstore"
)

type SyncHandler struct {
	pipeline *syncer.Pipeline
	metrics  *store.MetricsStore
	qdrant   *vectorstore.QdrantClient
}

func NewSyncHandler(pipeline *syncer.Pipeline, metrics *store.MetricsStore, qdrant *vectorstore.QdrantClient) *SyncHandler {
	return &SyncHandler{pipeline: pipeline, metrics: metrics, qdrant: qdrant}
}

// Sync handles POST /sync
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req models.SyncRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.IndexName == "" {
		writeError(w, http.StatusBadRequest, "indexName is required")
		return
	}
	if req.Namespace == "" {
		writeError(w, http.StatusBadRequest, "namespace is required")
		return
	}

	// Once started, a sync runs to completion or failure; a client
	// disconnect must not abort it mid-push.
	result, err := h.pipeline.Sync(context.WithoutCancel(r.Context()), req.IndexName, req.Namespace)
	if err != nil {
		var partial *models.PartialSyncError
		if errors.As(err, &partial) {
			// Pushed vectors stay in place; re-running the sync skips them.
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":  partial.Error(),
				"result": result,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Hydrate handles POST /hydrate
func (h *SyncHandler) Hydrate(w http.ResponseWriter, r *http.Request) {
	var req models.HydrateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.IndexName == "" {
		writeError(w, http.StatusBadRequest, "indexName is required")
		return
	}
	if req.Namespace == "" {
		writeError(w, http.StatusBadRequest, "namespace is required")
		return
	}

	// A disconnect mid-hydrate would otherwise strand the primary store
	// half-filled; the operation always runs to completion or failure.
	result, err := h.pipeline.Hydrate(context.WithoutCancel(r.Context()), req.IndexName, req.Namespace, req.Limit)
	if err != nil {
		var partial *models.PartialHydrateError
		if errors.As(err, &partial) {
			// The working set is degraded; re-running hydrate is the recovery.
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":  partial.Error(),
				"result": result,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Status handles GET /status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	available := h.qdrant.HealthCheck(r.Context()) == nil

	writeJSON(w, http.StatusOK, models.StatusResponse{
		Available: available,
		Operation: h.pipeline.Current(),
	})
}

// Metrics handles GET /metrics
func (h *SyncHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.metrics.Get()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ResetMetrics handles POST /reset-metrics
func (h *SyncHandler) ResetMetrics(w http.ResponseWriter, r *http.Request) {
	if err := h.metrics.Reset(); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
