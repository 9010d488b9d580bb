package models

// OperationKind identifies the cross-store operation holding the lock.
type OperationKind string

const (
	OperationNone    OperationKind = "none"
	OperationSync    OperationKind = "sync"
	OperationHydrate OperationKind = "hydrate"
)

// SyncOperation describes an in-flight sync or hydrate. Exactly one may be
// active at a time; it is created when the operation begins and destroyed on
// completion or failure.
type SyncOperation struct {
	Kind        OperationKind `json:"kind"`
	TargetIndex string        `json:"targetIndex"`
	Namespace   string        `json:"namespace"`
	StartedAt   int64         `json:"startedAt"`
}

// SyncResult reports what a sync pushed into the secondary store.
type SyncResult struct {
	PushedCount         int     `json:"pushedCount"`
	DuplicateCount      int     `json:"duplicateCount"`
	DedupRate           float64 `json:"dedupRate"`
	TotalVectorsInIndex int     `json:"totalVectorsInIndex"`
}

// HydrateResult reports what a hydrate restored into the primary store.
type HydrateResult struct {
	RestoredCount    int     `json:"restoredCount"`
	DuplicateCount   int     `json:"duplicateCount"`
	DedupRate        float64 `json:"dedupRate"`
	VectorsProcessed int     `json:"vectorsProcessed"`
}

// SyncMetrics holds the cumulative dedup counters persisted across runs.
type SyncMetrics struct {
	PushedTotal            int64 `json:"pushedTotal"`
	SyncDuplicatesTotal    int64 `json:"syncDuplicatesTotal"`
	RestoredTotal          int64 `json:"restoredTotal"`
	HydrateDuplicatesTotal int64 `json:"hydrateDuplicatesTotal"`
	UpdatedAt              int64 `json:"updatedAt"`
}
