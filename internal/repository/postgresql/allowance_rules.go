package postgresql

import (
	"context"
	"fmt"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type rulesRepository struct {
	db *database.DB
}

func NewRulesRepository(db *database.DB) allowance.RulesRepository {
	return &rulesRepository{db: db}
}

func (r *rulesRepository) GetRules(ctx context.Context) (allowance.Rules, error) {
	q := GetQuerier(ctx, r.db)

	// Single-row config table; the latest row wins if HR ever inserts a
	// replacement instead of updating.
	query := `
		SELECT payout_frequency, office_day_rate, remote_day_rate, apply_tax, tax_percent
		FROM allowance_rules
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var rules allowance.Rules
	err := q.QueryRow(ctx, query).Scan(
		&rules.PayoutFrequency, &rules.OfficeDayRate, &rules.RemoteDayRate, &rules.ApplyTax, &rules.TaxPercent,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return allowance.Rules{}, allowance.ErrRulesNotConfigured
		}
		return allowance.Rules{}, fmt.Errorf("failed to get allowance rules: %w", err)
	}

	return rules, nil
}

func (r *rulesRepository) GetPayPeriod(ctx context.Context, monthKey string) (allowance.PayPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT month_key, planned_payout_date
		FROM pay_periods
		WHERE month_key = $1
	`

	var p allowance.PayPeriod
	err := q.QueryRow(ctx, query, monthKey).Scan(&p.MonthKey, &p.PlannedPayoutDate)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Unscheduled months are normal; claims just carry no payout date.
			return allowance.PayPeriod{MonthKey: monthKey}, nil
		}
		return allowance.PayPeriod{}, fmt.Errorf("failed to get pay period: %w", err)
	}

	return p, nil
}
