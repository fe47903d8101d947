package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type claimRepository struct {
	db *database.DB
}

func NewClaimRepository(db *database.DB) allowance.ClaimRepository {
	return &claimRepository{db: db}
}

const claimColumns = `intern_id, month_key, status, calculated_amount, amount,
	office_days, remote_days, unpaid_leave_days,
	planned_payout_date, payment_date, paid_at,
	supervisor_adjusted_amount, admin_adjusted_amount,
	is_payout_locked, lock_reason, created_at, updated_at`

func scanClaim(row pgx.Row) (allowance.Claim, error) {
	var c allowance.Claim
	err := row.Scan(
		&c.InternID, &c.MonthKey, &c.Status, &c.CalculatedAmount, &c.Amount,
		&c.Breakdown.OfficeDays, &c.Breakdown.RemoteDays, &c.Breakdown.UnpaidLeaveDays,
		&c.PlannedPayoutDate, &c.PaymentDate, &c.PaidAt,
		&c.SupervisorAdjustedAmount, &c.AdminAdjustedAmount,
		&c.IsPayoutLocked, &c.LockReason, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *claimRepository) GetByInternAndMonth(ctx context.Context, internID, monthKey string) (allowance.Claim, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + claimColumns + `
		FROM allowance_claims
		WHERE intern_id = $1 AND month_key = $2
	`

	c, err := scanClaim(q.QueryRow(ctx, query, internID, monthKey))
	if err != nil {
		if err == pgx.ErrNoRows {
			return allowance.Claim{}, allowance.ErrClaimNotFound
		}
		return allowance.Claim{}, fmt.Errorf("failed to get allowance claim: %w", err)
	}

	return c, nil
}

func (r *claimRepository) ListByIntern(ctx context.Context, internID string) ([]allowance.Claim, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + claimColumns + `
		FROM allowance_claims
		WHERE intern_id = $1
		ORDER BY month_key
	`

	rows, err := q.Query(ctx, query, internID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allowance claims: %w", err)
	}
	defer rows.Close()

	var claims []allowance.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allowance claim: %w", err)
		}
		claims = append(claims, c)
	}

	return claims, nil
}

// Upsert is deliberately a merge, not a full-row overwrite: only the
// recomputed columns are touched, and amount falls back to the stored
// value when the engine passes nil (override in effect). Status, paid
// timestamps, overrides and created_at always survive.
func (r *claimRepository) Upsert(ctx context.Context, write allowance.ClaimWrite) (allowance.Claim, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO allowance_claims (
			intern_id, month_key, status, calculated_amount, amount,
			office_days, remote_days, unpaid_leave_days,
			planned_payout_date, is_payout_locked, lock_reason
		) VALUES ($1, $2, $3, $4, COALESCE($5, $4), $6, $7, $8, $9, $10, $11)
		ON CONFLICT (intern_id, month_key) DO UPDATE SET
			calculated_amount = EXCLUDED.calculated_amount,
			amount = COALESCE($5, allowance_claims.amount),
			office_days = EXCLUDED.office_days,
			remote_days = EXCLUDED.remote_days,
			unpaid_leave_days = EXCLUDED.unpaid_leave_days,
			planned_payout_date = EXCLUDED.planned_payout_date,
			is_payout_locked = EXCLUDED.is_payout_locked,
			lock_reason = EXCLUDED.lock_reason,
			updated_at = NOW()
		RETURNING ` + claimColumns

	c, err := scanClaim(q.QueryRow(ctx, query,
		write.InternID, write.MonthKey, allowance.ClaimStatusPending,
		write.CalculatedAmount, write.Amount,
		write.Breakdown.OfficeDays, write.Breakdown.RemoteDays, write.Breakdown.UnpaidLeaveDays,
		write.PlannedPayoutDate, write.IsPayoutLocked, write.LockReason,
	))
	if err != nil {
		return allowance.Claim{}, fmt.Errorf("failed to upsert allowance claim: %w", err)
	}

	return c, nil
}

func (r *claimRepository) ApplyAdjustment(ctx context.Context, internID, monthKey string, adj allowance.ClaimAdjustment) (allowance.Claim, error) {
	q := GetQuerier(ctx, r.db)

	setParts := []string{"updated_at = NOW()"}
	args := []interface{}{internID, monthKey}
	argIdx := 3

	if adj.SupervisorAdjustedAmount != nil {
		setParts = append(setParts, fmt.Sprintf("supervisor_adjusted_amount = $%d", argIdx))
		args = append(args, *adj.SupervisorAdjustedAmount)
		argIdx++
	}
	if adj.AdminAdjustedAmount != nil {
		setParts = append(setParts, fmt.Sprintf("admin_adjusted_amount = $%d", argIdx))
		args = append(args, *adj.AdminAdjustedAmount)
		argIdx++
	}
	if adj.Amount != nil {
		setParts = append(setParts, fmt.Sprintf("amount = $%d", argIdx))
		args = append(args, *adj.Amount)
		argIdx++
	}
	if adj.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *adj.Status)
		argIdx++
	}
	if adj.PaymentDate != nil {
		setParts = append(setParts, fmt.Sprintf("payment_date = $%d", argIdx))
		args = append(args, *adj.PaymentDate)
		argIdx++
	}
	if adj.PaidAt != nil {
		setParts = append(setParts, fmt.Sprintf("paid_at = $%d", argIdx))
		args = append(args, *adj.PaidAt)
		argIdx++
	}

	query := fmt.Sprintf(`
		UPDATE allowance_claims
		SET %s
		WHERE intern_id = $1 AND month_key = $2
		RETURNING `+claimColumns,
		strings.Join(setParts, ", "),
	)

	c, err := scanClaim(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return allowance.Claim{}, allowance.ErrClaimNotFound
		}
		return allowance.Claim{}, fmt.Errorf("failed to adjust allowance claim: %w", err)
	}

	return c, nil
}
