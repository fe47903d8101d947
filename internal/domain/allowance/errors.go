package allowance

import "errors"

var (
	ErrClaimNotFound      = errors.New("allowance claim not found")
	ErrWalletNotFound     = errors.New("allowance wallet not found")
	ErrRulesNotConfigured = errors.New("allowance rules not configured")
	ErrClaimAlreadyPaid   = errors.New("allowance claim already paid, cannot modify")
	ErrInvalidInternID    = errors.New("invalid intern id")
	ErrInvalidMonthKey    = errors.New("invalid month key, expected YYYY-MM")
	ErrSyncLockNotFound   = errors.New("wallet sync lock not found")

	// ErrSyncAlreadyRunning is a valid skip outcome, not a failure:
	// another caller holds a fresh wallet sync lease for this intern.
	ErrSyncAlreadyRunning = errors.New("wallet sync already running for this intern")
)
