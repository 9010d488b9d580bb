package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port           int
	DBPath         string
	OllamaBaseURL  string
	QdrantURL      string
	EmbeddingModel string
	EmbeddingDim   int
	LogLevel       string
	APIKey         string
	// Sync tuning
	SyncBatchSize int
	// Embedding cache
	EmbeddingCacheBytes int64
	// Optional YAML file overriding the built-in settings defaults
	SettingsDefaultsPath string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                 envInt("PORT", 8742),
		DBPath:               envStr("ENGINE_DB_PATH", "/data/engine.db"),
		OllamaBaseURL:        envStr("OLLAMA_BASE_URL", "http://localhost:11434"),
		QdrantURL:            envStr("QDRANT_URL", "http://localhost:6333"),
		EmbeddingModel:       envStr("EMBEDDING_MODEL", "nomic-embed-text"),
		EmbeddingDim:         envInt("EMBEDDING_DIM", 768),
		LogLevel:             envStr("LOG_LEVEL", "info"),
		APIKey:               envStr("API_KEY", ""),
		SyncBatchSize:        envInt("SYNC_BATCH_SIZE", 100),
		EmbeddingCacheBytes:  envInt64("EMBEDDING_CACHE_BYTES", 64<<20),
		SettingsDefaultsPath: envStr("SETTINGS_DEFAULTS_PATH", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("ENGINE_DB_PATH must not be empty")
	}
	if c.OllamaBaseURL == "" {
		return fmt.Errorf("OLLAMA_BASE_URL must not be empty")
	}
	if c.QdrantURL == "" {
		return fmt.Errorf("QDRANT_URL must not be empty")
	}
	if c.EmbeddingDim < 1 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.EmbeddingDim)
	}
	if c.SyncBatchSize < 1 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be positive, got %d", c.SyncBatchSize)
	}
	if c.EmbeddingCacheBytes < 1 {
		return fmt.Errorf("EMBEDDING_CACHE_BYTES must be positive, got %d", c.EmbeddingCacheBytes)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}
