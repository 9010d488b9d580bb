package threshold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/classify"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

func validSettings() models.RetrievalSettings {
	s := models.DefaultRetrievalSettings()
	s.SimilarityThreshold = 0.75
	s.QuestionThresholdFactor = 0.60
	s.StatementThresholdFactor = 0.90
	return s
}

func TestResolveQuestionLowersBar(t *testing.T) {
	r := NewResolver(nil)
	s := validSettings()

	eff, err := r.Resolve(&s, classify.Question)
	require.NoError(t, err)
	assert.InDelta(t, 0.60, eff, 1e-9)
	assert.LessOrEqual(t, eff, s.SimilarityThreshold)
}

func TestResolveStatementRaisesBar(t *testing.T) {
	r := NewResolver(nil)
	s := validSettings()

	eff, err := r.Resolve(&s, classify.Statement)
	require.NoError(t, err)
	assert.InDelta(t, 0.90, eff, 1e-9)
	assert.GreaterOrEqual(t, eff, s.SimilarityThreshold)
}

// The question threshold must never exceed the statement threshold for the
// same base settings, for any in-range combination.
func TestResolveMonotonicWidening(t *testing.T) {
	r := NewResolver(nil)

	bases := []float64{0, 0.3, 0.55, 0.75, 0.95, 1}
	factors := []float64{0.55, 0.6, 0.75, 0.9, 0.95}

	for _, base := range bases {
		for _, qf := range factors {
			for _, sf := range factors {
				s := validSettings()
				s.SimilarityThreshold = base
				s.QuestionThresholdFactor = qf
				s.StatementThresholdFactor = sf

				q, err := r.Resolve(&s, classify.Question)
				require.NoError(t, err)
				st, err := r.Resolve(&s, classify.Statement)
				require.NoError(t, err)

				assert.LessOrEqual(t, q, st,
					"base=%g qf=%g sf=%g", base, qf, sf)
				assert.GreaterOrEqual(t, q, 0.0)
				assert.LessOrEqual(t, st, 1.0)
			}
		}
	}
}

func TestResolveRejectsOutOfRangeFactors(t *testing.T) {
	r := NewResolver(nil)

	s := validSettings()
	s.QuestionThresholdFactor = 0.40 // below the configured range
	_, err := r.Resolve(&s, classify.Question)
	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "questionThresholdFactor", cfgErr.Field)

	s = validSettings()
	s.StatementThresholdFactor = 0.99 // above the configured range
	_, err = r.Resolve(&s, classify.Statement)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "statementThresholdFactor", cfgErr.Field)
}

func TestResolveRejectsInvalidBase(t *testing.T) {
	r := NewResolver(nil)
	s := validSettings()
	s.SimilarityThreshold = 1.2

	_, err := r.Resolve(&s, classify.Question)
	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "similarityThreshold", cfgErr.Field)
}

func TestCustomPolicy(t *testing.T) {
	// A weighted-average policy is a legal substitute.
	weighted := func(base, qf, sf float64, class classify.Class) float64 {
		if class == classify.Question {
			return (base + qf) / 2
		}
		return (base + sf) / 2
	}
	r := NewResolver(weighted)
	s := validSettings()

	q, err := r.Resolve(&s, classify.Question)
	require.NoError(t, err)
	assert.InDelta(t, 0.675, q, 1e-9)
}
