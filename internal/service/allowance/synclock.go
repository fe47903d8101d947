package allowance

import (
	"context"
	"time"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
)

// SyncLockManager serializes wallet aggregation per intern through a
// lease document with staleness-based reclamation. This is weaker than a
// real distributed lock: if a holder crashes, the lease only becomes
// reclaimable after the staleness window, and a holder that is merely
// slow can then race its reclaimer. That window is an accepted trade-off
// for a low-contention, single-writer-per-intern workload on a store
// with no native TTL locks.
type SyncLockManager struct {
	locks     allowance.SyncLockRepository
	staleness time.Duration
}

func NewSyncLockManager(locks allowance.SyncLockRepository, staleness time.Duration) *SyncLockManager {
	return &SyncLockManager{locks: locks, staleness: staleness}
}

// WithLock runs fn only when no other run holds a fresh lease for the
// intern. Acquisition is transactional; fn itself runs outside the
// transaction. On success the lease transitions to done, on failure to
// error with the message captured, and fn's error is re-raised.
func (m *SyncLockManager) WithLock(ctx context.Context, internID, startedBy string, fn func(ctx context.Context) error) error {
	if err := m.locks.Acquire(ctx, internID, startedBy, time.Now(), m.staleness); err != nil {
		// Includes ErrSyncAlreadyRunning, which callers treat as a
		// valid skip rather than a failure.
		return err
	}

	if err := fn(ctx); err != nil {
		msg := err.Error()
		// fn's error takes precedence over a failed ERROR transition; a
		// lease stuck RUNNING self-heals via staleness reclamation.
		_ = m.locks.Finish(ctx, internID, time.Now(), &msg)
		return err
	}

	return m.locks.Finish(ctx, internID, time.Now(), nil)
}
