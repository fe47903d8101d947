package allowance

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus enum
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusPaid     ClaimStatus = "paid"
)

// PayoutFrequency enum
type PayoutFrequency string

const (
	PayoutMonthly    PayoutFrequency = "monthly"
	PayoutEndProgram PayoutFrequency = "end_program"
)

// Rules - allowance policy read from the config store.
type Rules struct {
	PayoutFrequency PayoutFrequency
	OfficeDayRate   decimal.Decimal
	RemoteDayRate   decimal.Decimal
	ApplyTax        bool
	TaxPercent      decimal.Decimal
}

// PayPeriod - payout planning for one calendar month. PlannedPayoutDate
// may be nil when HR has not scheduled the month yet.
type PayPeriod struct {
	MonthKey          string
	PlannedPayoutDate *time.Time
}

// Breakdown - per-claim day-type counters.
type Breakdown struct {
	OfficeDays      int
	RemoteDays      int
	UnpaidLeaveDays int
}

// Claim - the computed/payable allowance for one intern for one calendar
// month. Identity is (InternID, MonthKey). Once Status is paid the claim
// is frozen: recomputation returns the stored values untouched.
type Claim struct {
	InternID          string
	MonthKey          string
	Status            ClaimStatus
	CalculatedAmount  decimal.Decimal
	Amount            decimal.Decimal
	Breakdown         Breakdown
	PlannedPayoutDate *time.Time
	PaymentDate       *time.Time
	PaidAt            *time.Time

	// Manual overrides; admin wins over supervisor, both win over the
	// calculated amount.
	SupervisorAdjustedAmount *decimal.Decimal
	AdminAdjustedAmount      *decimal.Decimal

	IsPayoutLocked bool
	LockReason     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasOverride reports whether a manual adjustment is in effect.
func (c Claim) HasOverride() bool {
	return c.AdminAdjustedAmount != nil || c.SupervisorAdjustedAmount != nil
}

// OverrideAmount resolves the effective override, admin first.
func (c Claim) OverrideAmount() *decimal.Decimal {
	if c.AdminAdjustedAmount != nil {
		return c.AdminAdjustedAmount
	}
	return c.SupervisorAdjustedAmount
}

// WalletStatusSummary enum
type WalletStatusSummary string

const (
	WalletStatusEmpty      WalletStatusSummary = "empty"
	WalletStatusAllPaid    WalletStatusSummary = "all_paid"
	WalletStatusHasPending WalletStatusSummary = "has_pending"
)

// Wallet - derived per-intern aggregate over the full claim set. It is
// rebuilt wholesale on every sync and carries no information a claim does
// not already have.
type Wallet struct {
	InternID              string
	TotalAmount           decimal.Decimal
	TotalPendingAmount    decimal.Decimal
	TotalPaidAmount       decimal.Decimal
	TotalCalculatedAmount decimal.Decimal
	TotalOfficeDays       int
	TotalRemoteDays       int
	TotalUnpaidLeaveDays  int
	StatusSummary         WalletStatusSummary

	// Earliest planned payout among unpaid claims that have one.
	PlannedPayoutDate *time.Time
	// Taken from the paid claim with the latest paid timestamp.
	LastPaymentDate *time.Time
	LastPaidAt      *time.Time

	SyncedAt time.Time
}

// WalletMonth - denormalized per-month projection of one claim, rewritten
// together with the wallet in the same batch.
type WalletMonth struct {
	InternID          string
	MonthKey          string
	Status            ClaimStatus
	CalculatedAmount  decimal.Decimal
	Amount            decimal.Decimal
	Breakdown         Breakdown
	PlannedPayoutDate *time.Time
	PaymentDate       *time.Time
	PaidAt            *time.Time
	IsPayoutLocked    bool
	LockReason        *string
}

// SyncLockStatus enum
type SyncLockStatus string

const (
	SyncLockRunning SyncLockStatus = "running"
	SyncLockDone    SyncLockStatus = "done"
	SyncLockError   SyncLockStatus = "error"
)

// SyncLock - per-intern lease guarding wallet aggregation. A running
// lease younger than the staleness threshold blocks new runs; once stale
// it is reclaimable. Never deleted.
type SyncLock struct {
	InternID     string
	Status       SyncLockStatus
	StartedAt    time.Time
	StartedBy    string
	FinishedAt   *time.Time
	ErrorMessage *string
}
