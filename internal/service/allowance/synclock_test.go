package allowance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLock_RunsBodyAndReleases(t *testing.T) {
	locks := newFakeSyncLockRepo()
	m := NewSyncLockManager(locks, DefaultLockStaleness)

	ran := false
	err := m.WithLock(context.Background(), testInternID, "tester", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	lock, err := locks.Get(context.Background(), testInternID)
	require.NoError(t, err)
	assert.Equal(t, allowance.SyncLockDone, lock.Status)
	assert.Equal(t, "tester", lock.StartedBy)
	assert.NotNil(t, lock.FinishedAt)
	assert.Nil(t, lock.ErrorMessage)
}

func TestWithLock_ConcurrentRunsAreExclusive(t *testing.T) {
	locks := newFakeSyncLockRepo()
	m := NewSyncLockManager(locks, DefaultLockStaleness)

	holding := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = m.WithLock(context.Background(), testInternID, "first", func(ctx context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()

	// Second caller arrives while the first holds a fresh lease.
	<-holding
	err := m.WithLock(context.Background(), testInternID, "second", func(ctx context.Context) error {
		t.Error("second body must not run while the lease is held")
		return nil
	})
	assert.ErrorIs(t, err, allowance.ErrSyncAlreadyRunning)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	lock, err := locks.Get(context.Background(), testInternID)
	require.NoError(t, err)
	assert.Equal(t, allowance.SyncLockDone, lock.Status)
	assert.Equal(t, "first", lock.StartedBy)
}

// First-ever acquire has no lease row to serialize on, so the handshake
// must settle the bootstrap itself: exactly one of N concurrent first
// acquirers may run its body.
func TestWithLock_FirstAcquireIsExclusive(t *testing.T) {
	locks := newFakeSyncLockRepo()
	m := NewSyncLockManager(locks, DefaultLockStaleness)

	const attempts = 8
	var bodies int32
	release := make(chan struct{})
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		go func(id int) {
			results <- m.WithLock(context.Background(), testInternID, fmt.Sprintf("caller-%d", id), func(ctx context.Context) error {
				atomic.AddInt32(&bodies, 1)
				<-release
				return nil
			})
		}(i)
	}

	// The winner blocks inside its body, so the first attempts-1 results
	// must all be back-offs.
	for i := 0; i < attempts-1; i++ {
		assert.ErrorIs(t, <-results, allowance.ErrSyncAlreadyRunning)
	}

	close(release)
	require.NoError(t, <-results)
	assert.Equal(t, int32(1), atomic.LoadInt32(&bodies))
}

func TestWithLock_BodyFailureRecordsError(t *testing.T) {
	locks := newFakeSyncLockRepo()
	m := NewSyncLockManager(locks, DefaultLockStaleness)

	bodyErr := errors.New("replace failed")
	err := m.WithLock(context.Background(), testInternID, "tester", func(ctx context.Context) error {
		return bodyErr
	})
	assert.ErrorIs(t, err, bodyErr)

	lock, getErr := locks.Get(context.Background(), testInternID)
	require.NoError(t, getErr)
	assert.Equal(t, allowance.SyncLockError, lock.Status)
	require.NotNil(t, lock.ErrorMessage)
	assert.Equal(t, "replace failed", *lock.ErrorMessage)
}

func TestWithLock_ErroredLeaseIsReusable(t *testing.T) {
	locks := newFakeSyncLockRepo()
	m := NewSyncLockManager(locks, DefaultLockStaleness)

	_ = m.WithLock(context.Background(), testInternID, "first", func(ctx context.Context) error {
		return errors.New("boom")
	})

	ran := false
	err := m.WithLock(context.Background(), testInternID, "second", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	lock, err := locks.Get(context.Background(), testInternID)
	require.NoError(t, err)
	assert.Equal(t, allowance.SyncLockDone, lock.Status)
	assert.Nil(t, lock.ErrorMessage)
}

func TestWithLock_StaleLeaseIsReclaimed(t *testing.T) {
	locks := newFakeSyncLockRepo()
	m := NewSyncLockManager(locks, DefaultLockStaleness)

	// Simulate a holder that crashed mid-run and never finished.
	require.NoError(t, locks.Acquire(context.Background(), testInternID, "crashed", time.Now(), DefaultLockStaleness))
	locks.backdate(testInternID, DefaultLockStaleness+time.Second)

	ran := false
	err := m.WithLock(context.Background(), testInternID, "reclaimer", func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	lock, err := locks.Get(context.Background(), testInternID)
	require.NoError(t, err)
	assert.Equal(t, "reclaimer", lock.StartedBy)
}

func TestWithLock_FreshLeaseBlocksUntilStale(t *testing.T) {
	locks := newFakeSyncLockRepo()
	m := NewSyncLockManager(locks, DefaultLockStaleness)

	require.NoError(t, locks.Acquire(context.Background(), testInternID, "holder", time.Now(), DefaultLockStaleness))

	err := m.WithLock(context.Background(), testInternID, "second", func(ctx context.Context) error {
		t.Error("body must not run under a fresh foreign lease")
		return nil
	})
	assert.ErrorIs(t, err, allowance.ErrSyncAlreadyRunning)

	// The blocked attempt must not clobber the holder's lease.
	lock, getErr := locks.Get(context.Background(), testInternID)
	require.NoError(t, getErr)
	assert.Equal(t, allowance.SyncLockRunning, lock.Status)
	assert.Equal(t, "holder", lock.StartedBy)
}
