package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8742, cfg.Port)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaBaseURL)
	assert.Equal(t, "http://localhost:6333", cfg.QdrantURL)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, 768, cfg.EmbeddingDim)
	assert.Equal(t, 100, cfg.SyncBatchSize)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("EMBEDDING_DIM", "384")
	t.Setenv("SYNC_BATCH_SIZE", "50")
	t.Setenv("API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 384, cfg.EmbeddingDim)
	assert.Equal(t, 50, cfg.SyncBatchSize)
	assert.Equal(t, "secret", cfg.APIKey)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PORT", "99999")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsZeroDimension(t *testing.T) {
	t.Setenv("EMBEDDING_DIM", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestMalformedEnvFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8742, cfg.Port)
}
