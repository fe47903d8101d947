package allowance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ClaimWrite carries the recomputation engine's output for one claim.
// Amount is nil when a manual override is in effect and the stored amount
// must survive the write; all omitted claim fields (status, paid
// timestamps, overrides, created_at) are preserved by the store.
type ClaimWrite struct {
	InternID          string
	MonthKey          string
	CalculatedAmount  decimal.Decimal
	Amount            *decimal.Decimal
	Breakdown         Breakdown
	PlannedPayoutDate *time.Time
	IsPayoutLocked    bool
	LockReason        *string
}

// ClaimAdjustment is a staff-authored partial update. Nil fields are left
// untouched.
type ClaimAdjustment struct {
	SupervisorAdjustedAmount *decimal.Decimal
	AdminAdjustedAmount      *decimal.Decimal
	Amount                   *decimal.Decimal
	Status                   *ClaimStatus
	PaymentDate              *time.Time
	PaidAt                   *time.Time
}

type ClaimRepository interface {
	GetByInternAndMonth(ctx context.Context, internID, monthKey string) (Claim, error)
	ListByIntern(ctx context.Context, internID string) ([]Claim, error)
	// Upsert merges the write into the stored claim, creating it (and
	// setting created_at) only when absent.
	Upsert(ctx context.Context, write ClaimWrite) (Claim, error)
	ApplyAdjustment(ctx context.Context, internID, monthKey string, adj ClaimAdjustment) (Claim, error)
}

type WalletRepository interface {
	GetByIntern(ctx context.Context, internID string) (Wallet, error)
	ListMonths(ctx context.Context, internID string) ([]WalletMonth, error)
	// Replace rewrites the wallet summary and every per-month breakdown
	// atomically.
	Replace(ctx context.Context, wallet Wallet, months []WalletMonth) error
}

type SyncLockRepository interface {
	// Acquire performs the lease handshake in a single read-modify-write
	// transaction: it returns ErrSyncAlreadyRunning when a running lease
	// younger than staleness exists, otherwise overwrites the lock to
	// running as of now.
	Acquire(ctx context.Context, internID, startedBy string, now time.Time, staleness time.Duration) error
	// Finish transitions the lease to done (errMessage nil) or error.
	Finish(ctx context.Context, internID string, finishedAt time.Time, errMessage *string) error
	Get(ctx context.Context, internID string) (SyncLock, error)
}

// RulesRepository is the config store boundary.
type RulesRepository interface {
	GetRules(ctx context.Context) (Rules, error)
	// GetPayPeriod returns a PayPeriod with a nil payout date when the
	// month has not been scheduled; absence is not an error.
	GetPayPeriod(ctx context.Context, monthKey string) (PayPeriod, error)
}
