package search

import (
	"context"
	"sort"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/primary"
)

// VectorSource is the slice of the primary store the engine queries.
type VectorSource interface {
	Query(ctx context.Context, embedding []float32, k int) ([]primary.Scored, error)
	Count() int
}

// Engine ranks memories against a query embedding and applies the effective
// similarity threshold.
type Engine struct {
	source VectorSource
}

func NewEngine(source VectorSource) *Engine {
	return &Engine{source: source}
}

// Search returns up to contextSize memories whose normalized similarity
// meets threshold, ordered by score descending with newer memories first on
// ties. An empty result is a valid outcome, not an error.
func (e *Engine) Search(ctx context.Context, embedding []float32, threshold float64, contextSize int) ([]models.ScoredMemory, error) {
	// Overfetch so that candidates filtered out by the threshold don't
	// starve the result set.
	k := contextSize * 4
	if total := e.source.Count(); k > total {
		k = total
	}
	if k == 0 {
		return []models.ScoredMemory{}, nil
	}

	candidates, err := e.source.Query(ctx, embedding, k)
	if err != nil {
		return nil, err
	}

	results := make([]models.ScoredMemory, 0, contextSize)
	for _, c := range candidates {
		score := NormalizeCosine(c.Similarity)
		if score < threshold {
			continue
		}
		results = append(results, models.ScoredMemory{Memory: c.Memory, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Memory.Timestamp > results[j].Memory.Timestamp
	})

	if len(results) > contextSize {
		results = results[:contextSize]
	}
	return results, nil
}
