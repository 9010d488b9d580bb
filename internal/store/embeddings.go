package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

// EmbeddingCacheStore is the durable tier of the embedding cache, keyed by
// content hash. Encoding the same text twice is wasted work and, because the
// encoder is non-deterministic, would also produce slightly different
// vectors.
type EmbeddingCacheStore struct {
	db *DB
}

func NewEmbeddingCacheStore(db *DB) *EmbeddingCacheStore {
	return &EmbeddingCacheStore{db: db}
}

// Get returns the cached entry for a content hash, or nil on a miss.
func (s *EmbeddingCacheStore) Get(contentHash string) (*models.EmbeddingCacheEntry, error) {
	row := s.db.QueryRow(`
		SELECT content_hash, embedding, dimension, model, updated_at
		FROM embedding_cache WHERE content_hash = ?`, contentHash)

	var out models.EmbeddingCacheEntry
	err := row.Scan(&out.ContentHash, &out.Embedding, &out.Dimension, &out.Model, &out.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("embedding cache get: %w", err)
	}
	return &out, nil
}

// Put upserts a cache entry.
func (s *EmbeddingCacheStore) Put(e *models.EmbeddingCacheEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO embedding_cache (content_hash, embedding, dimension, model, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			embedding = excluded.embedding,
			dimension = excluded.dimension,
			model = excluded.model,
			updated_at = excluded.updated_at`,
		e.ContentHash, e.Embedding, e.Dimension, e.Model, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("embedding cache put: %w", err)
	}
	return nil
}
