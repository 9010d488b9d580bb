// Package threshold turns the configured base similarity threshold into the
// effective cutoff applied to a query, based on its classification. This
// asymmetry is the engine's core retrieval-quality lever: questions lower
// the bar to widen recall, statements raise it to tighten precision.
package threshold

import (
	"math"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/classify"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

// Policy blends the base threshold with the question/statement factors.
// It is a tunable, swappable choice; MinMax is the default.
type Policy func(base, questionFactor, statementFactor float64, class classify.Class) float64

// MinMax takes the smaller of base and questionFactor for questions and the
// larger of base and statementFactor for statements. It is the simplest
// policy that guarantees the question threshold never exceeds the statement
// threshold for the same settings.
func MinMax(base, questionFactor, statementFactor float64, class classify.Class) float64 {
	if class == classify.Question {
		return math.Min(base, questionFactor)
	}
	return math.Max(base, statementFactor)
}

// Resolver computes effective thresholds under a fixed policy.
type Resolver struct {
	policy Policy
}

// NewResolver creates a resolver. A nil policy selects MinMax.
func NewResolver(policy Policy) *Resolver {
	if policy == nil {
		policy = MinMax
	}
	return &Resolver{policy: policy}
}

// Resolve validates the settings and returns the effective threshold for a
// classified query, clamped to [0,1]. Factors outside the configured range
// fail with a configuration error rather than being silently clamped.
func (r *Resolver) Resolve(s *models.RetrievalSettings, class classify.Class) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	eff := r.policy(s.SimilarityThreshold, s.QuestionThresholdFactor, s.StatementThresholdFactor, class)
	return clamp01(eff), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
