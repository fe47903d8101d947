package allowance

import "context"

// AllowanceService defines the engine's exposed operations.
type AllowanceService interface {
	// RecomputeClaim rebuilds the claim for one intern and month from
	// attendance, leave and correction data, then refreshes the wallet as
	// a best-effort follow-up.
	RecomputeClaim(ctx context.Context, internID, monthKey string) (RecomputeResultResponse, error)

	// SyncWallet folds the intern's full claim set into the wallet and
	// per-month breakdowns under the sync lease. A fresh concurrent run
	// yields AlreadyRunning, not an error.
	SyncWallet(ctx context.Context, internID string) (SyncResultResponse, error)

	// GetWallet returns the stored wallet with its month breakdowns.
	GetWallet(ctx context.Context, internID string) (WalletResponse, error)

	ListClaims(ctx context.Context, internID string) ([]ClaimResponse, error)
	GetClaim(ctx context.Context, internID, monthKey string) (ClaimResponse, error)

	// AdjustClaim applies a staff override and/or marks the claim paid.
	AdjustClaim(ctx context.Context, req AdjustClaimRequest) (ClaimResponse, error)
}
