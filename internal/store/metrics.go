package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

// MetricsStore persists the cumulative dedup counters that survive restarts.
type MetricsStore struct {
	db *DB
}

func NewMetricsStore(db *DB) *MetricsStore {
	return &MetricsStore{db: db}
}

// Get returns the counters, zero-valued if none have been recorded yet.
func (s *MetricsStore) Get() (*models.SyncMetrics, error) {
	row := s.db.QueryRow(`
		SELECT pushed_total, sync_duplicates_total, restored_total,
		       hydrate_duplicates_total, updated_at
		FROM sync_metrics WHERE id = 1`)

	var out models.SyncMetrics
	err := row.Scan(
		&out.PushedTotal,
		&out.SyncDuplicatesTotal,
		&out.RestoredTotal,
		&out.HydrateDuplicatesTotal,
		&out.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return &models.SyncMetrics{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sync metrics: %w", err)
	}
	return &out, nil
}

// AddSync accumulates counters from a completed (possibly partial) sync.
func (s *MetricsStore) AddSync(pushed, duplicates int) error {
	return s.add(pushed, duplicates, 0, 0)
}

// AddHydrate accumulates counters from a completed (possibly partial) hydrate.
func (s *MetricsStore) AddHydrate(restored, duplicates int) error {
	return s.add(0, 0, restored, duplicates)
}

func (s *MetricsStore) add(pushed, syncDup, restored, hydrateDup int) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_metrics (
			id, pushed_total, sync_duplicates_total, restored_total,
			hydrate_duplicates_total, updated_at
		) VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pushed_total = pushed_total + excluded.pushed_total,
			sync_duplicates_total = sync_duplicates_total + excluded.sync_duplicates_total,
			restored_total = restored_total + excluded.restored_total,
			hydrate_duplicates_total = hydrate_duplicates_total + excluded.hydrate_duplicates_total,
			updated_at = excluded.updated_at`,
		pushed, syncDup, restored, hydrateDup, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("accumulate sync metrics: %w", err)
	}
	return nil
}

// Reset zeroes all cumulative counters.
func (s *MetricsStore) Reset() error {
	_, err := s.db.Exec(`
		INSERT INTO sync_metrics (
			id, pushed_total, sync_duplicates_total, restored_total,
			hydrate_duplicates_total, updated_at
		) VALUES (1, 0, 0, 0, 0, ?)
		ON CONFLICT(id) DO UPDATE SET
			pushed_total = 0,
			sync_duplicates_total = 0,
			restored_total = 0,
			hydrate_duplicates_total = 0,
			updated_at = excluded.updated_at`,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("reset sync metrics: %w", err)
	}
	return nil
}
