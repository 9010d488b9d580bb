package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

// SettingsStore persists the single retrieval-settings row.
type SettingsStore struct {
	db *DB
}

func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the persisted settings, or nil if none have been saved yet.
func (s *SettingsStore) Get() (*models.RetrievalSettings, error) {
	row := s.db.QueryRow(`
		SELECT context_size, similarity_threshold, question_threshold_factor,
		       statement_threshold_factor, active_index_name, namespace, is_enabled
		FROM retrieval_settings WHERE id = 1`)

	var out models.RetrievalSettings
	var enabled int
	err := row.Scan(
		&out.ContextSize,
		&out.SimilarityThreshold,
		&out.QuestionThresholdFactor,
		&out.StatementThresholdFactor,
		&out.ActiveIndexName,
		&out.Namespace,
		&enabled,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	out.IsEnabled = enabled != 0
	return &out, nil
}

// Put upserts the settings row.
func (s *SettingsStore) Put(v *models.RetrievalSettings) error {
	enabled := 0
	if v.IsEnabled {
		enabled = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO retrieval_settings (
			id, context_size, similarity_threshold, question_threshold_factor,
			statement_threshold_factor, active_index_name, namespace, is_enabled, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			context_size = excluded.context_size,
			similarity_threshold = excluded.similarity_threshold,
			question_threshold_factor = excluded.question_threshold_factor,
			statement_threshold_factor = excluded.statement_threshold_factor,
			active_index_name = excluded.active_index_name,
			namespace = excluded.namespace,
			is_enabled = excluded.is_enabled,
			updated_at = excluded.updated_at`,
		v.ContextSize, v.SimilarityThreshold, v.QuestionThresholdFactor,
		v.StatementThresholdFactor, v.ActiveIndexName, v.Namespace, enabled,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
