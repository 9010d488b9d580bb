package embedding

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/search"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/store"
)

// CachedEmbedder wraps an Embedder with two cache tiers keyed by content
// hash: a ristretto in-memory cache for hot entries and the SQLite table for
// durability across restarts.
type CachedEmbedder struct {
	client  Embedder
	hot     *ristretto.Cache
	durable *store.EmbeddingCacheStore
	model   string
	dim     int
}

func NewCachedEmbedder(client Embedder, durable *store.EmbeddingCacheStore, model string, maxBytes int64) (*CachedEmbedder, error) {
	hot, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &CachedEmbedder{
		client:  client,
		hot:     hot,
		durable: durable,
		model:   model,
		dim:     client.Dimensions(),
	}, nil
}

// Embed returns the embedding for text, consulting the hot cache, then the
// durable cache, then the encoder. Cache write failures are non-fatal.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	hash := ContentHash(text)

	if v, ok := e.hot.Get(hash); ok {
		if vec, ok := v.([]float32); ok {
			return vec, nil
		}
	}

	entry, err := e.durable.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	if entry != nil && entry.Model == e.model && entry.Dimension == e.dim {
		vec := search.BytesToFloat32(entry.Embedding)
		e.hot.Set(hash, vec, int64(len(vec)*4))
		return vec, nil
	}

	vec, err := e.client.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.hot.Set(hash, vec, int64(len(vec)*4))
	_ = e.durable.Put(&models.EmbeddingCacheEntry{
		ContentHash: hash,
		Embedding:   search.Float32ToBytes(vec),
		Dimension:   e.dim,
		Model:       e.model,
	})

	return vec, nil
}

// Dimensions returns the embedding vector size.
func (e *CachedEmbedder) Dimensions() int {
	return e.dim
}

// Close releases the in-memory cache.
func (e *CachedEmbedder) Close() {
	e.hot.Close()
}

// ContentHash computes a SHA-256 hash of text content.
func ContentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h)
}
