package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/threshold"
)

type fixedSettings struct {
	s models.RetrievalSettings
}

func (f *fixedSettings) Snapshot() *models.RetrievalSettings { return &f.s }

type fixedEmbedder struct {
	vec   []float32
	calls int
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vec, nil
}

type recordingSearcher struct {
	gotThreshold   float64
	gotContextSize int
	results        []models.ScoredMemory
}

func (r *recordingSearcher) Search(ctx context.Context, embedding []float32, threshold float64, contextSize int) ([]models.ScoredMemory, error) {
	r.gotThreshold = threshold
	r.gotContextSize = contextSize
	return r.results, nil
}

func enabledSettings() models.RetrievalSettings {
	s := models.DefaultRetrievalSettings()
	s.ActiveIndexName = "memories"
	s.IsEnabled = true
	return s
}

func newService(settings models.RetrievalSettings, embedder Embedder, searcher Searcher) *Service {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewService(&fixedSettings{s: settings}, threshold.NewResolver(nil), embedder, searcher, logger)
}

func TestRetrieveQuestionWidensThreshold(t *testing.T) {
	searcher := &recordingSearcher{results: []models.ScoredMemory{}}
	svc := newService(enabledSettings(), &fixedEmbedder{vec: []float32{1, 0}}, searcher)

	resp, err := svc.Retrieve(context.Background(), "What is vector search?")
	require.NoError(t, err)

	assert.Equal(t, "question", resp.Classification)
	// Defaults: base 0.75, question factor 0.60.
	assert.Equal(t, 0.60, resp.EffectiveThreshold)
	assert.Equal(t, 0.60, searcher.gotThreshold)
	assert.Equal(t, 5, searcher.gotContextSize)
}

func TestRetrieveStatementTightensThreshold(t *testing.T) {
	searcher := &recordingSearcher{results: []models.ScoredMemory{}}
	svc := newService(enabledSettings(), &fixedEmbedder{vec: []float32{1, 0}}, searcher)

	resp, err := svc.Retrieve(context.Background(), "Vector search uses embeddings.")
	require.NoError(t, err)

	assert.Equal(t, "statement", resp.Classification)
	// Defaults: base 0.75, statement factor 0.90.
	assert.Equal(t, 0.90, resp.EffectiveThreshold)
}

func TestRetrieveDisabledReturnsEmpty(t *testing.T) {
	s := enabledSettings()
	s.IsEnabled = false
	embedder := &fixedEmbedder{vec: []float32{1, 0}}
	svc := newService(s, embedder, &recordingSearcher{})

	resp, err := svc.Retrieve(context.Background(), "What happened yesterday?")
	require.NoError(t, err)

	assert.Empty(t, resp.Results)
	assert.Equal(t, "question", resp.Classification)
	// No embedding work is done when retrieval is off.
	assert.Equal(t, 0, embedder.calls)
}

func TestRetrieveInvalidSettingsRejected(t *testing.T) {
	s := enabledSettings()
	s.QuestionThresholdFactor = 0.2 // below the allowed range
	svc := newService(s, &fixedEmbedder{vec: []float32{1, 0}}, &recordingSearcher{})

	_, err := svc.Retrieve(context.Background(), "What is this?")
	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "questionThresholdFactor", cfgErr.Field)
}

type failingSearcher struct{}

func (f *failingSearcher) Search(ctx context.Context, embedding []float32, threshold float64, contextSize int) ([]models.ScoredMemory, error) {
	return nil, fmt.Errorf("%w: connection refused", models.ErrStoreUnavailable)
}

func TestRetrieveDegradesWhenStoreUnavailable(t *testing.T) {
	svc := newService(enabledSettings(), &fixedEmbedder{vec: []float32{1, 0}}, &failingSearcher{})

	resp, err := svc.Retrieve(context.Background(), "What do we know?")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, "question", resp.Classification)
}

func TestRetrievePassesResultsThrough(t *testing.T) {
	want := []models.ScoredMemory{
		{Memory: &models.Memory{ID: "a"}, Score: 0.9},
		{Memory: &models.Memory{ID: "b"}, Score: 0.8},
	}
	svc := newService(enabledSettings(), &fixedEmbedder{vec: []float32{1, 0}}, &recordingSearcher{results: want})

	resp, err := svc.Retrieve(context.Background(), "tell me about a and b?")
	require.NoError(t, err)
	assert.Equal(t, want, resp.Results)
}
