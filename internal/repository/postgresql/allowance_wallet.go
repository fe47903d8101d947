package postgresql

import (
	"context"
	"fmt"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// walletBatchChunkSize keeps each batch well under the store's per-batch
// statement cap.
const walletBatchChunkSize = 400

type walletRepository struct {
	db *database.DB
}

func NewWalletRepository(db *database.DB) allowance.WalletRepository {
	return &walletRepository{db: db}
}

const walletColumns = `intern_id, total_amount, total_pending_amount, total_paid_amount,
	total_calculated_amount, total_office_days, total_remote_days, total_unpaid_leave_days,
	status_summary, planned_payout_date, last_payment_date, last_paid_at, synced_at`

func (r *walletRepository) GetByIntern(ctx context.Context, internID string) (allowance.Wallet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + walletColumns + `
		FROM allowance_wallets
		WHERE intern_id = $1
	`

	var w allowance.Wallet
	err := q.QueryRow(ctx, query, internID).Scan(
		&w.InternID, &w.TotalAmount, &w.TotalPendingAmount, &w.TotalPaidAmount,
		&w.TotalCalculatedAmount, &w.TotalOfficeDays, &w.TotalRemoteDays, &w.TotalUnpaidLeaveDays,
		&w.StatusSummary, &w.PlannedPayoutDate, &w.LastPaymentDate, &w.LastPaidAt, &w.SyncedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return allowance.Wallet{}, allowance.ErrWalletNotFound
		}
		return allowance.Wallet{}, fmt.Errorf("failed to get allowance wallet: %w", err)
	}

	return w, nil
}

func (r *walletRepository) ListMonths(ctx context.Context, internID string) ([]allowance.WalletMonth, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT intern_id, month_key, status, calculated_amount, amount,
		       office_days, remote_days, unpaid_leave_days,
		       planned_payout_date, payment_date, paid_at, is_payout_locked, lock_reason
		FROM allowance_wallet_months
		WHERE intern_id = $1
		ORDER BY month_key
	`

	rows, err := q.Query(ctx, query, internID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet months: %w", err)
	}
	defer rows.Close()

	var months []allowance.WalletMonth
	for rows.Next() {
		var m allowance.WalletMonth
		if err := rows.Scan(
			&m.InternID, &m.MonthKey, &m.Status, &m.CalculatedAmount, &m.Amount,
			&m.Breakdown.OfficeDays, &m.Breakdown.RemoteDays, &m.Breakdown.UnpaidLeaveDays,
			&m.PlannedPayoutDate, &m.PaymentDate, &m.PaidAt, &m.IsPayoutLocked, &m.LockReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wallet month: %w", err)
		}
		months = append(months, m)
	}

	return months, nil
}

// Replace rewrites the wallet summary and all month breakdowns in one
// transaction. Month rows are queued through pgx batches chunked at
// walletBatchChunkSize statements.
func (r *walletRepository) Replace(ctx context.Context, wallet allowance.Wallet, months []allowance.WalletMonth) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		upsertWallet := `
			INSERT INTO allowance_wallets (
				intern_id, total_amount, total_pending_amount, total_paid_amount,
				total_calculated_amount, total_office_days, total_remote_days, total_unpaid_leave_days,
				status_summary, planned_payout_date, last_payment_date, last_paid_at, synced_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (intern_id) DO UPDATE SET
				total_amount = EXCLUDED.total_amount,
				total_pending_amount = EXCLUDED.total_pending_amount,
				total_paid_amount = EXCLUDED.total_paid_amount,
				total_calculated_amount = EXCLUDED.total_calculated_amount,
				total_office_days = EXCLUDED.total_office_days,
				total_remote_days = EXCLUDED.total_remote_days,
				total_unpaid_leave_days = EXCLUDED.total_unpaid_leave_days,
				status_summary = EXCLUDED.status_summary,
				planned_payout_date = EXCLUDED.planned_payout_date,
				last_payment_date = EXCLUDED.last_payment_date,
				last_paid_at = EXCLUDED.last_paid_at,
				synced_at = EXCLUDED.synced_at
		`
		if _, err := tx.Exec(ctx, upsertWallet,
			wallet.InternID, wallet.TotalAmount, wallet.TotalPendingAmount, wallet.TotalPaidAmount,
			wallet.TotalCalculatedAmount, wallet.TotalOfficeDays, wallet.TotalRemoteDays, wallet.TotalUnpaidLeaveDays,
			wallet.StatusSummary, wallet.PlannedPayoutDate, wallet.LastPaymentDate, wallet.LastPaidAt, wallet.SyncedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert allowance wallet: %w", err)
		}

		// Month rows not present in this sync are stale projections.
		if _, err := tx.Exec(ctx, `DELETE FROM allowance_wallet_months WHERE intern_id = $1`, wallet.InternID); err != nil {
			return fmt.Errorf("failed to clear wallet months: %w", err)
		}

		upsertMonth := `
			INSERT INTO allowance_wallet_months (
				intern_id, month_key, status, calculated_amount, amount,
				office_days, remote_days, unpaid_leave_days,
				planned_payout_date, payment_date, paid_at, is_payout_locked, lock_reason
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`

		for start := 0; start < len(months); start += walletBatchChunkSize {
			end := start + walletBatchChunkSize
			if end > len(months) {
				end = len(months)
			}

			batch := &pgx.Batch{}
			for _, m := range months[start:end] {
				batch.Queue(upsertMonth,
					m.InternID, m.MonthKey, m.Status, m.CalculatedAmount, m.Amount,
					m.Breakdown.OfficeDays, m.Breakdown.RemoteDays, m.Breakdown.UnpaidLeaveDays,
					m.PlannedPayoutDate, m.PaymentDate, m.PaidAt, m.IsPayoutLocked, m.LockReason,
				)
			}

			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("failed to write wallet months: %w", err)
			}
		}

		return nil
	})
}
