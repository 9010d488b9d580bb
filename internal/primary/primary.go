// Package primary wraps chromem-go as the fast, in-process vector index the
// engine retrieves from on every chat turn. The durable copy of the memory
// set lives in the secondary store and is moved back and forth by the sync
// and hydrate pipelines.
package primary

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

const collectionName = "working_memory"

// Store holds the working memory set. A guarded id→memory map sits beside
// the chromem collection: chromem answers similarity queries, the map
// preserves full memory records (timestamps, origin references, metadata)
// and supports the enumeration sync needs.
type Store struct {
	db  *chromem.DB
	dim int

	mu   sync.RWMutex
	col  *chromem.Collection
	byID map[string]*models.Memory
}

// Scored pairs a memory with the store's native cosine similarity in [-1,1].
type Scored struct {
	Memory     *models.Memory
	Similarity float64
}

// New creates an empty primary store configured for the given embedding
// dimension.
func New(dim int) (*Store, error) {
	if dim < 1 {
		return nil, &models.ConfigError{Field: "dimension", Reason: fmt.Sprintf("must be positive, got %d", dim)}
	}

	db := chromem.NewDB()
	col, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Store{
		db:   db,
		dim:  dim,
		col:  col,
		byID: make(map[string]*models.Memory),
	}, nil
}

// Dimension returns the configured embedding dimension.
func (s *Store) Dimension() int {
	return s.dim
}

// Insert adds a memory. Vectors whose length disagrees with the configured
// dimension are rejected before any mutation.
func (s *Store) Insert(ctx context.Context, mem *models.Memory) error {
	if len(mem.Embedding) != s.dim {
		return fmt.Errorf("%w: got %d, store configured for %d",
			models.ErrDimensionMismatch, len(mem.Embedding), s.dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := chromem.Document{
		ID:        mem.ID,
		Content:   mem.Content,
		Embedding: mem.Embedding,
		Metadata:  map[string]string{"type": string(mem.Type)},
	}
	if err := s.col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	s.byID[mem.ID] = mem
	return nil
}

// List returns all memories currently in the store.
func (s *Store) List(ctx context.Context) []*models.Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Memory, 0, len(s.byID))
	for _, mem := range s.byID {
		out = append(out, mem)
	}
	return out
}

// Count returns the number of memories in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Query returns up to k memories nearest to the query embedding, with the
// store's native cosine similarity. Returns nil when the store is empty.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]Scored, error) {
	if len(embedding) != s.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, store configured for %d",
			models.ErrDimensionMismatch, len(embedding), s.dim)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.byID) == 0 || k < 1 {
		return nil, nil
	}
	if k > len(s.byID) {
		k = len(s.byID) // chromem rejects nResults beyond the collection size
	}

	results, err := s.col.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", models.ErrStoreUnavailable, err)
	}

	scored := make([]Scored, 0, len(results))
	for _, r := range results {
		mem, ok := s.byID[r.ID]
		if !ok {
			continue
		}
		scored = append(scored, Scored{Memory: mem, Similarity: float64(r.Similarity)})
	}
	return scored, nil
}

// Clear removes every memory. Used by hydrate, which replaces the working
// set wholesale; destructive and explicitly user-confirmed upstream.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	col, err := s.db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}

	s.col = col
	s.byID = make(map[string]*models.Memory)
	return nil
}
