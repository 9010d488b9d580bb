package syncer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BITBANSHEE-C137/StructuredMemoryEngine-replit-sub001/internal/models"
)

func TestLockSingleOperation(t *testing.T) {
	lock := NewLockManager()

	op, err := lock.Begin(models.OperationSync, "memories", "prod")
	require.NoError(t, err)
	assert.Equal(t, models.OperationSync, op.Kind)
	assert.Equal(t, "memories", op.TargetIndex)

	_, err = lock.Begin(models.OperationHydrate, "memories", "prod")
	assert.ErrorIs(t, err, models.ErrOperationInProgress)
	_, err = lock.Begin(models.OperationSync, "other", "prod")
	assert.ErrorIs(t, err, models.ErrOperationInProgress)

	lock.End()

	_, err = lock.Begin(models.OperationHydrate, "memories", "prod")
	assert.NoError(t, err)
}

func TestLockBlocksIndexSettingsWhileBusy(t *testing.T) {
	lock := NewLockManager()
	assert.True(t, lock.CanChangeIndexSettings())

	_, err := lock.Begin(models.OperationSync, "memories", "prod")
	require.NoError(t, err)
	assert.False(t, lock.CanChangeIndexSettings())

	lock.End()
	assert.True(t, lock.CanChangeIndexSettings())
}

func TestLockCurrentReportsOperation(t *testing.T) {
	lock := NewLockManager()
	assert.Nil(t, lock.Current())

	_, err := lock.Begin(models.OperationHydrate, "memories", "prod")
	require.NoError(t, err)

	cur := lock.Current()
	require.NotNil(t, cur)
	assert.Equal(t, models.OperationHydrate, cur.Kind)
	assert.Equal(t, "prod", cur.Namespace)
	assert.NotZero(t, cur.StartedAt)

	lock.End()
	assert.Nil(t, lock.Current())
}

func TestLockConcurrentBeginOneWinner(t *testing.T) {
	lock := NewLockManager()

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = lock.Begin(models.OperationSync, "memories", "prod")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, models.ErrOperationInProgress)
		}
	}
	assert.Equal(t, 1, winners)
}
