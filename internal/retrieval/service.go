// Package retrieval composes classification, threshold resolution, embedding,
// and similarity search into the single entry point the chat pipeline calls
// on every turn.
package retrieval

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/classify"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/threshold"
)

// Embedder encodes query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher ranks memories against a query embedding.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, threshold float64, contextSize int) ([]models.ScoredMemory, error)
}

// Snapshotter provides the settings snapshot a request runs under.
type Snapshotter interface {
	Snapshot() *models.RetrievalSettings
}

// Service answers retrieval requests.
type Service struct {
	settings Snapshotter
	resolver *threshold.Resolver
	embedder Embedder
	engine   Searcher
	logger   *slog.Logger
}

func NewService(settings Snapshotter, resolver *threshold.Resolver, embedder Embedder, engine Searcher, logger *slog.Logger) *Service {
	return &Service{
		settings: settings,
		resolver: resolver,
		embedder: embedder,
		engine:   engine,
		logger:   logger,
	}
}

// Retrieve classifies the query, resolves the effective threshold, and
// returns the ranked memories. A single settings snapshot governs the whole
// call; concurrent settings changes affect only later requests. When
// retrieval is disabled the result is empty, not an error.
func (s *Service) Retrieve(ctx context.Context, query string) (*models.RetrieveResponse, error) {
	snap := s.settings.Snapshot()
	class := classify.Classify(query)

	if !snap.IsEnabled {
		return &models.RetrieveResponse{
			Results:        []models.ScoredMemory{},
			Classification: string(class),
		}, nil
	}

	effective, err := s.resolver.Resolve(snap, class)
	if err != nil {
		return nil, err
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := s.engine.Search(ctx, embedding, effective, snap.ContextSize)
	if err != nil {
		// An unreachable store degrades to empty context so the chat flow
		// can continue without memories. Anything else is surfaced.
		if errors.Is(err, models.ErrStoreUnavailable) {
			s.logger.Warn("primary store unavailable, returning empty context", "error", err)
			return &models.RetrieveResponse{
				Results:            []models.ScoredMemory{},
				Classification:     string(class),
				EffectiveThreshold: effective,
			}, nil
		}
		return nil, err
	}

	s.logger.Debug("retrieval completed",
		"classification", class,
		"effectiveThreshold", effective,
		"results", len(results))

	return &models.RetrieveResponse{
		Results:            results,
		Classification:     string(class),
		EffectiveThreshold: effective,
	}, nil
}
