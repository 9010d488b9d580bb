package models

// StoreMemoryRequest is the payload for POST /memories.
type StoreMemoryRequest struct {
	Content         string            `json:"content"`
	Type            MemoryType        `json:"type"`
	OriginMessageID string            `json:"originMessageId"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// StoreMemoryResponse is returned from POST /memories.
type StoreMemoryResponse struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
}

// ListMemoriesResponse is returned from GET /memories.
type ListMemoriesResponse struct {
	Memories []*Memory `json:"memories"`
	Total    int       `json:"total"`
}

// RetrieveRequest is the payload for POST /retrieve.
type RetrieveRequest struct {
	Query string `json:"query"`
}

// RetrieveResponse carries the ranked memories handed to the prompt builder.
type RetrieveResponse struct {
	Results            []ScoredMemory `json:"results"`
	Classification     string         `json:"classification"`
	EffectiveThreshold float64        `json:"effectiveThreshold"`
}

// CreateIndexRequest is the payload for POST /indexes.
type CreateIndexRequest struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
}

// IndexInfo describes a secondary-store index.
type IndexInfo struct {
	Name        string   `json:"name"`
	Dimension   int      `json:"dimension"`
	Metric      string   `json:"metric"`
	VectorCount int      `json:"vectorCount"`
	Namespaces  []string `json:"namespaces"`
}

// WipeRequest is the payload for POST /indexes/{name}/wipe.
type WipeRequest struct {
	Namespace string `json:"namespace"`
}

// SyncRequest is the payload for POST /sync.
type SyncRequest struct {
	IndexName string `json:"indexName"`
	Namespace string `json:"namespace"`
}

// HydrateRequest is the payload for POST /hydrate.
type HydrateRequest struct {
	IndexName string `json:"indexName"`
	Namespace string `json:"namespace"`
	Limit     int    `json:"limit"`
}

// StatusResponse reports secondary-store reachability and the in-flight
// operation, if any.
type StatusResponse struct {
	Available bool           `json:"available"`
	Operation *SyncOperation `json:"operation,omitempty"`
}

// ServiceCheck is a single dependency check inside the health response.
type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status      string       `json:"status"`
	Ollama      ServiceCheck `json:"ollama"`
	Qdrant      ServiceCheck `json:"qdrant"`
	DB          ServiceCheck `json:"db"`
	MemoryCount int          `json:"memoryCount"`
}

// EmbeddingCacheEntry stores a cached embedding keyed by content hash.
type EmbeddingCacheEntry struct {
	ContentHash string `json:"contentHash"`
	Embedding   []byte `json:"embedding"`
	Dimension   int    `json:"dimension"`
	Model       string `json:"model"`
	UpdatedAt   int64  `json:"updatedAt"`
}
