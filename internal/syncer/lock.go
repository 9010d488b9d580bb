// Package syncer moves memories between the primary and secondary vector
// stores: sync pushes the working set out durably, hydrate restores it back.
// Both run under a process-wide operation lock with no queueing.
package syncer

import (
	"sync"
	"time"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

// lockState is the operation lock's explicit state machine.
type lockState int

const (
	stateIdle lockState = iota
	stateSyncing
	stateHydrating
)

// LockManager enforces single-operation semantics: at most one sync or
// hydrate runs at a time, and index-binding settings cannot change while one
// is running. Begin never blocks; a busy lock returns
// ErrOperationInProgress and the caller retries explicitly.
type LockManager struct {
	mu      sync.Mutex
	state   lockState
	current *models.SyncOperation
}

func NewLockManager() *LockManager {
	return &LockManager{state: stateIdle}
}

// Begin acquires the lock for an operation. Returns ErrOperationInProgress
// if any operation currently holds it.
func (l *LockManager) Begin(kind models.OperationKind, index, namespace string) (*models.SyncOperation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateIdle {
		return nil, models.ErrOperationInProgress
	}

	switch kind {
	case models.OperationSync:
		l.state = stateSyncing
	case models.OperationHydrate:
		l.state = stateHydrating
	default:
		return nil, &models.ConfigError{Field: "operation", Reason: "unknown operation kind " + string(kind)}
	}

	op := &models.SyncOperation{
		Kind:        kind,
		TargetIndex: index,
		Namespace:   namespace,
		StartedAt:   time.Now().Unix(),
	}
	l.current = op
	return op, nil
}

// End releases the lock. Called on every exit path, success or failure.
func (l *LockManager) End() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = stateIdle
	l.current = nil
}

// Current returns the in-flight operation, or nil when idle.
func (l *LockManager) Current() *models.SyncOperation {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return nil
	}
	op := *l.current
	return &op
}

// CanChangeIndexSettings reports whether index-binding settings may change.
func (l *LockManager) CanChangeIndexSettings() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateIdle
}
