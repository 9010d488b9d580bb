package api

import (
	"net/http"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/retrieval"
)

type RetrieveHandler struct {
	svc *retrieval.Service
}

func NewRetrieveHandler(svc *retrieval.Service) *RetrieveHandler {
	return &RetrieveHandler{svc: svc}
}

// Retrieve handles POST /retrieve
func (h *RetrieveHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req models.RetrieveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp, err := h.svc.Retrieve(r.Context(), req.Query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
