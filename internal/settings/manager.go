// Package settings owns the retrieval configuration: an atomic in-memory
// snapshot backed by SQLite, with optional YAML defaults loaded at startup.
package settings

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/store"
)

// Guard decides whether index-binding settings may change right now. The
// operation lock manager implements it: binding changes are rejected while a
// sync or hydrate is running.
type Guard interface {
	CanChangeIndexSettings() bool
}

// Manager serves immutable settings snapshots. Readers call Snapshot and get
// a consistent value for the whole request; writers go through Patch,
// RestoreDefaults, or the pipeline-only binding methods.
type Manager struct {
	store    *store.SettingsStore
	guard    Guard
	defaults models.RetrievalSettings
	logger   *slog.Logger

	mu      sync.Mutex // serializes writers
	current atomic.Pointer[models.RetrievalSettings]
}

// NewManager loads persisted settings, falling back to the defaults file
// (when configured) and then to built-in defaults.
func NewManager(st *store.SettingsStore, guard Guard, defaultsPath string, logger *slog.Logger) (*Manager, error) {
	defaults := models.DefaultRetrievalSettings()
	if defaultsPath != "" {
		loaded, err := loadDefaultsFile(defaultsPath)
		if err != nil {
			return nil, err
		}
		defaults = loaded
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}

	m := &Manager{
		store:    st,
		guard:    guard,
		defaults: defaults,
		logger:   logger,
	}

	persisted, err := st.Get()
	if err != nil {
		return nil, err
	}
	initial := defaults
	if persisted != nil {
		if err := persisted.Validate(); err != nil {
			logger.Warn("persisted settings invalid, using defaults", "error", err)
		} else {
			initial = *persisted
		}
	}
	m.current.Store(&initial)
	return m, nil
}

// Snapshot returns the current settings value. The pointer target is never
// mutated; callers may read it for the lifetime of a request.
func (m *Manager) Snapshot() *models.RetrievalSettings {
	return m.current.Load()
}

// Patch applies a partial update. The merged result is validated before
// anything is persisted or published; binding changes are refused while an
// operation is running.
func (m *Manager) Patch(p *models.SettingsPatch) (*models.RetrievalSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Guard is consulted under the writer mutex so an operation starting
	// between check and write cannot interleave with a binding change.
	if p.TouchesIndexBinding() && !m.guard.CanChangeIndexSettings() {
		return nil, models.ErrOperationInProgress
	}

	next := *m.current.Load()
	p.Apply(&next)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := m.store.Put(&next); err != nil {
		return nil, err
	}

	m.current.Store(&next)
	m.logger.Info("settings updated",
		"contextSize", next.ContextSize,
		"similarityThreshold", next.SimilarityThreshold,
		"activeIndex", next.ActiveIndexName,
		"namespace", next.Namespace,
		"enabled", next.IsEnabled,
	)
	return &next, nil
}

// RestoreDefaults replaces the settings with the configured defaults.
func (m *Manager) RestoreDefaults() (*models.RetrievalSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.guard.CanChangeIndexSettings() {
		return nil, models.ErrOperationInProgress
	}

	next := m.defaults
	if err := m.store.Put(&next); err != nil {
		return nil, err
	}

	m.current.Store(&next)
	m.logger.Info("settings restored to defaults")
	return &next, nil
}

// BindIndex points retrieval at an index and namespace and enables it.
// Called by the sync and hydrate pipelines while they hold the operation
// lock, so it bypasses the guard.
func (m *Manager) BindIndex(index, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := *m.current.Load()
	next.ActiveIndexName = index
	next.Namespace = namespace
	next.IsEnabled = true
	if err := m.store.Put(&next); err != nil {
		return err
	}

	m.current.Store(&next)
	return nil
}

// ClearActiveIndex disables retrieval if the named index is the active one.
// Called when an index is deleted so retrieval never points at a missing
// index.
func (m *Manager) ClearActiveIndex(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.current.Load()
	if cur.ActiveIndexName != name {
		return nil
	}

	next := *cur
	next.ActiveIndexName = ""
	next.IsEnabled = false
	if err := m.store.Put(&next); err != nil {
		return err
	}

	m.current.Store(&next)
	m.logger.Info("active index deleted, retrieval disabled", "index", name)
	return nil
}

func loadDefaultsFile(path string) (models.RetrievalSettings, error) {
	out := models.DefaultRetrievalSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, fmt.Errorf("read defaults file: %w", err)
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse defaults file: %w", err)
	}
	return out, nil
}
