package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type syncLockRepository struct {
	db *database.DB
}

func NewSyncLockRepository(db *database.DB) allowance.SyncLockRepository {
	return &syncLockRepository{db: db}
}

// Acquire runs the lease handshake as a single read-modify-write
// transaction. The guarded insert settles the first-ever sync, where no
// row exists yet for FOR UPDATE to serialize: exactly one bootstrap
// acquirer creates the RUNNING row and holds the lease, the loser's
// insert resolves to DO NOTHING and falls through to the locked re-read.
// From then on SELECT ... FOR UPDATE serializes concurrent acquirers;
// whoever reads first decides, the loser re-reads the fresh RUNNING row
// and backs off with ErrSyncAlreadyRunning.
func (r *syncLockRepository) Acquire(ctx context.Context, internID, startedBy string, now time.Time, staleness time.Duration) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO wallet_sync_locks (intern_id, status, started_at, started_by, finished_at, error_message)
			VALUES ($1, $2, $3, $4, NULL, NULL)
			ON CONFLICT (intern_id) DO NOTHING
		`, internID, allowance.SyncLockRunning, now, startedBy)
		if err != nil {
			return fmt.Errorf("failed to create sync lock: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return nil
		}

		var status allowance.SyncLockStatus
		var startedAt time.Time
		err = tx.QueryRow(ctx, `
			SELECT status, started_at
			FROM wallet_sync_locks
			WHERE intern_id = $1
			FOR UPDATE
		`, internID).Scan(&status, &startedAt)
		if err != nil {
			return fmt.Errorf("failed to read sync lock: %w", err)
		}

		if status == allowance.SyncLockRunning && now.Sub(startedAt) <= staleness {
			return allowance.ErrSyncAlreadyRunning
		}

		// Finished or stale: take the lease. Prior finish/error details
		// are cleared with the overwrite.
		_, err = tx.Exec(ctx, `
			UPDATE wallet_sync_locks
			SET status = $2, started_at = $3, started_by = $4, finished_at = NULL, error_message = NULL
			WHERE intern_id = $1
		`, internID, allowance.SyncLockRunning, now, startedBy)
		if err != nil {
			return fmt.Errorf("failed to take sync lock: %w", err)
		}

		return nil
	})
}

func (r *syncLockRepository) Finish(ctx context.Context, internID string, finishedAt time.Time, errMessage *string) error {
	q := GetQuerier(ctx, r.db)

	status := allowance.SyncLockDone
	if errMessage != nil {
		status = allowance.SyncLockError
	}

	_, err := q.Exec(ctx, `
		UPDATE wallet_sync_locks
		SET status = $2, finished_at = $3, error_message = $4
		WHERE intern_id = $1
	`, internID, status, finishedAt, errMessage)
	if err != nil {
		return fmt.Errorf("failed to finish sync lock: %w", err)
	}

	return nil
}

func (r *syncLockRepository) Get(ctx context.Context, internID string) (allowance.SyncLock, error) {
	q := GetQuerier(ctx, r.db)

	var l allowance.SyncLock
	err := q.QueryRow(ctx, `
		SELECT intern_id, status, started_at, started_by, finished_at, error_message
		FROM wallet_sync_locks
		WHERE intern_id = $1
	`, internID).Scan(&l.InternID, &l.Status, &l.StartedAt, &l.StartedBy, &l.FinishedAt, &l.ErrorMessage)
	if err != nil {
		if err == pgx.ErrNoRows {
			return allowance.SyncLock{}, allowance.ErrSyncLockNotFound
		}
		return allowance.SyncLock{}, fmt.Errorf("failed to get sync lock: %w", err)
	}

	return l, nil
}
