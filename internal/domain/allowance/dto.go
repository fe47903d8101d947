package allowance

import (
	"time"

	"github.com/internflow/internflow-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CLAIM DTOs ==========

type ClaimResponse struct {
	InternID                 string           `json:"intern_id"`
	MonthKey                 string           `json:"month_key"`
	Status                   string           `json:"status"`
	CalculatedAmount         decimal.Decimal  `json:"calculated_amount"`
	Amount                   decimal.Decimal  `json:"amount"`
	OfficeDays               int              `json:"office_days"`
	RemoteDays               int              `json:"remote_days"`
	UnpaidLeaveDays          int              `json:"unpaid_leave_days"`
	PlannedPayoutDate        *string          `json:"planned_payout_date,omitempty"`
	PaymentDate              *string          `json:"payment_date,omitempty"`
	PaidAt                   *string          `json:"paid_at,omitempty"`
	SupervisorAdjustedAmount *decimal.Decimal `json:"supervisor_adjusted_amount,omitempty"`
	AdminAdjustedAmount      *decimal.Decimal `json:"admin_adjusted_amount,omitempty"`
	IsPayoutLocked           bool             `json:"is_payout_locked"`
	LockReason               *string          `json:"lock_reason,omitempty"`
}

// RecomputeResultResponse is the structured outcome of one recompute run.
type RecomputeResultResponse struct {
	Success         bool          `json:"success"`
	Frozen          bool          `json:"frozen"`
	AttendanceDays  int           `json:"attendance_days"`
	LeaveDays       int           `json:"leave_days"`
	SkippedEntries  int           `json:"skipped_entries"`
	WalletSynced    bool          `json:"wallet_synced"`
	WalletSyncError *string       `json:"wallet_sync_error,omitempty"`
	Claim           ClaimResponse `json:"claim"`
}

// ========== WALLET DTOs ==========

type WalletMonthResponse struct {
	MonthKey          string          `json:"month_key"`
	Status            string          `json:"status"`
	CalculatedAmount  decimal.Decimal `json:"calculated_amount"`
	Amount            decimal.Decimal `json:"amount"`
	OfficeDays        int             `json:"office_days"`
	RemoteDays        int             `json:"remote_days"`
	UnpaidLeaveDays   int             `json:"unpaid_leave_days"`
	PlannedPayoutDate *string         `json:"planned_payout_date,omitempty"`
	PaymentDate       *string         `json:"payment_date,omitempty"`
	PaidAt            *string         `json:"paid_at,omitempty"`
	IsPayoutLocked    bool            `json:"is_payout_locked"`
	LockReason        *string         `json:"lock_reason,omitempty"`
}

type WalletResponse struct {
	InternID              string                `json:"intern_id"`
	TotalAmount           decimal.Decimal       `json:"total_amount"`
	TotalPendingAmount    decimal.Decimal       `json:"total_pending_amount"`
	TotalPaidAmount       decimal.Decimal       `json:"total_paid_amount"`
	TotalCalculatedAmount decimal.Decimal       `json:"total_calculated_amount"`
	TotalOfficeDays       int                   `json:"total_office_days"`
	TotalRemoteDays       int                   `json:"total_remote_days"`
	TotalUnpaidLeaveDays  int                   `json:"total_unpaid_leave_days"`
	StatusSummary         string                `json:"status_summary"`
	PlannedPayoutDate     *string               `json:"planned_payout_date,omitempty"`
	LastPaymentDate       *string               `json:"last_payment_date,omitempty"`
	LastPaidAt            *string               `json:"last_paid_at,omitempty"`
	SyncedAt              string                `json:"synced_at"`
	Months                []WalletMonthResponse `json:"months,omitempty"`
}

// SyncResultResponse reports a wallet sync attempt. AlreadyRunning means
// another run held the lease; callers should treat it as success-no-op.
type SyncResultResponse struct {
	Success        bool            `json:"success"`
	AlreadyRunning bool            `json:"already_running"`
	ClaimCount     int             `json:"claim_count"`
	Wallet         *WalletResponse `json:"wallet,omitempty"`
}

// ========== REQUEST DTOs ==========

type AdjustClaimRequest struct {
	InternID                 string           `json:"-"`
	MonthKey                 string           `json:"-"`
	SupervisorAdjustedAmount *decimal.Decimal `json:"supervisor_adjusted_amount,omitempty"`
	AdminAdjustedAmount      *decimal.Decimal `json:"admin_adjusted_amount,omitempty"`
	MarkPaid                 *bool            `json:"mark_paid,omitempty"`
	PaymentDate              *string          `json:"payment_date,omitempty"` // "YYYY-MM-DD"
}

func (r *AdjustClaimRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.SupervisorAdjustedAmount != nil && r.SupervisorAdjustedAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "supervisor_adjusted_amount", Message: "must be non-negative"})
	}
	if r.AdminAdjustedAmount != nil && r.AdminAdjustedAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "admin_adjusted_amount", Message: "must be non-negative"})
	}
	if r.PaymentDate != nil {
		if _, ok := validator.IsValidDate(*r.PaymentDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be YYYY-MM-DD"})
		}
	}
	if r.SupervisorAdjustedAmount == nil && r.AdminAdjustedAmount == nil && r.MarkPaid == nil {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "at least one field is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== MAPPERS ==========

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format("2006-01-02")
	return &str
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format(time.RFC3339)
	return &str
}

func MapClaimResponse(c Claim) ClaimResponse {
	return ClaimResponse{
		InternID:                 c.InternID,
		MonthKey:                 c.MonthKey,
		Status:                   string(c.Status),
		CalculatedAmount:         c.CalculatedAmount,
		Amount:                   c.Amount,
		OfficeDays:               c.Breakdown.OfficeDays,
		RemoteDays:               c.Breakdown.RemoteDays,
		UnpaidLeaveDays:          c.Breakdown.UnpaidLeaveDays,
		PlannedPayoutDate:        formatDate(c.PlannedPayoutDate),
		PaymentDate:              formatDate(c.PaymentDate),
		PaidAt:                   formatTimestamp(c.PaidAt),
		SupervisorAdjustedAmount: c.SupervisorAdjustedAmount,
		AdminAdjustedAmount:      c.AdminAdjustedAmount,
		IsPayoutLocked:           c.IsPayoutLocked,
		LockReason:               c.LockReason,
	}
}

func MapWalletResponse(w Wallet, months []WalletMonth) WalletResponse {
	resp := WalletResponse{
		InternID:              w.InternID,
		TotalAmount:           w.TotalAmount,
		TotalPendingAmount:    w.TotalPendingAmount,
		TotalPaidAmount:       w.TotalPaidAmount,
		TotalCalculatedAmount: w.TotalCalculatedAmount,
		TotalOfficeDays:       w.TotalOfficeDays,
		TotalRemoteDays:       w.TotalRemoteDays,
		TotalUnpaidLeaveDays:  w.TotalUnpaidLeaveDays,
		StatusSummary:         string(w.StatusSummary),
		PlannedPayoutDate:     formatDate(w.PlannedPayoutDate),
		LastPaymentDate:       formatDate(w.LastPaymentDate),
		LastPaidAt:            formatTimestamp(w.LastPaidAt),
		SyncedAt:              w.SyncedAt.Format(time.RFC3339),
	}
	for _, m := range months {
		resp.Months = append(resp.Months, WalletMonthResponse{
			MonthKey:          m.MonthKey,
			Status:            string(m.Status),
			CalculatedAmount:  m.CalculatedAmount,
			Amount:            m.Amount,
			OfficeDays:        m.Breakdown.OfficeDays,
			RemoteDays:        m.Breakdown.RemoteDays,
			UnpaidLeaveDays:   m.Breakdown.UnpaidLeaveDays,
			PlannedPayoutDate: formatDate(m.PlannedPayoutDate),
			PaymentDate:       formatDate(m.PaymentDate),
			PaidAt:            formatTimestamp(m.PaidAt),
			IsPayoutLocked:    m.IsPayoutLocked,
			LockReason:        m.LockReason,
		})
	}
	return resp
}
