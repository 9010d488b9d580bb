package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/fingerprint"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/primary"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/retrieval"
)

type MemoryHandler struct {
	primary  *primary.Store
	embedder retrieval.Embedder
}

func NewMemoryHandler(prim *primary.Store, embedder retrieval.Embedder) *MemoryHandler {
	return &MemoryHandler{primary: prim, embedder: embedder}
}

// Store handles POST /memories
func (h *MemoryHandler) Store(w http.ResponseWriter, r *http.Request) {
	var req models.StoreMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if !req.Type.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid type: must be prompt or response")
		return
	}

	embedding, err := h.embedder.Embed(r.Context(), req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	mem := &models.Memory{
		ID:              uuid.New().String(),
		Content:         req.Content,
		Type:            req.Type,
		Embedding:       embedding,
		OriginMessageID: req.OriginMessageID,
		Timestamp:       time.Now().Unix(),
		Metadata:        req.Metadata,
	}
	if err := h.primary.Insert(r.Context(), mem); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.StoreMemoryResponse{
		ID:          mem.ID,
		Fingerprint: fingerprint.ForMemory(mem),
	})
}

// List handles GET /memories
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	memories := h.primary.List(r.Context())
	sort.Slice(memories, func(i, j int) bool {
		if memories[i].Timestamp != memories[j].Timestamp {
			return memories[i].Timestamp > memories[j].Timestamp
		}
		return memories[i].ID < memories[j].ID
	})

	writeJSON(w, http.StatusOK, models.ListMemoriesResponse{
		Memories: memories,
		Total:    len(memories),
	})
}
