package allowance

import (
	"context"
	"time"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
)

// SyncWallet folds the intern's full claim set into the wallet summary
// and per-month breakdowns, committed as one atomic batch under the sync
// lease. A concurrent fresh run yields AlreadyRunning, not an error.
func (s *AllowanceServiceImpl) SyncWallet(ctx context.Context, internID string) (allowance.SyncResultResponse, error) {
	if err := validateInternID(internID); err != nil {
		return allowance.SyncResultResponse{}, err
	}

	startedBy, _, _ := callerFromContext(ctx)

	var wallet allowance.Wallet
	var months []allowance.WalletMonth
	var claimCount int

	err := s.lock.WithLock(ctx, internID, startedBy, func(ctx context.Context) error {
		claims, err := s.claimRepo.ListByIntern(ctx, internID)
		if err != nil {
			return err
		}
		claimCount = len(claims)

		wallet, months = foldWallet(internID, claims, time.Now())
		return s.walletRepo.Replace(ctx, wallet, months)
	})
	if err != nil {
		if err == allowance.ErrSyncAlreadyRunning {
			return allowance.SyncResultResponse{Success: true, AlreadyRunning: true}, nil
		}
		return allowance.SyncResultResponse{}, err
	}

	resp := allowance.MapWalletResponse(wallet, months)
	return allowance.SyncResultResponse{
		Success:    true,
		ClaimCount: claimCount,
		Wallet:     &resp,
	}, nil
}

// foldWallet rebuilds the wallet wholesale from the claim set. The wallet
// carries nothing a claim does not already have, so this fold is the
// whole definition of its contents.
func foldWallet(internID string, claims []allowance.Claim, now time.Time) (allowance.Wallet, []allowance.WalletMonth) {
	wallet := allowance.Wallet{
		InternID:      internID,
		StatusSummary: allowance.WalletStatusEmpty,
		SyncedAt:      now,
	}

	if len(claims) == 0 {
		return wallet, nil
	}

	months := make([]allowance.WalletMonth, 0, len(claims))
	allPaid := true

	// Last-payment candidates: the paid claim with the latest paid-at
	// timestamp wins; payment dates are only consulted when no claim
	// carries a timestamp at all.
	var lastPaidAt *allowance.Claim
	var lastPaymentDate *allowance.Claim

	for i := range claims {
		c := claims[i]

		wallet.TotalAmount = wallet.TotalAmount.Add(c.Amount)
		wallet.TotalCalculatedAmount = wallet.TotalCalculatedAmount.Add(c.CalculatedAmount)
		wallet.TotalOfficeDays += c.Breakdown.OfficeDays
		wallet.TotalRemoteDays += c.Breakdown.RemoteDays
		wallet.TotalUnpaidLeaveDays += c.Breakdown.UnpaidLeaveDays

		if c.Status == allowance.ClaimStatusPaid {
			wallet.TotalPaidAmount = wallet.TotalPaidAmount.Add(c.Amount)

			if c.PaidAt != nil && (lastPaidAt == nil || c.PaidAt.After(*lastPaidAt.PaidAt)) {
				lastPaidAt = &claims[i]
			}
			if c.PaymentDate != nil && (lastPaymentDate == nil || c.PaymentDate.After(*lastPaymentDate.PaymentDate)) {
				lastPaymentDate = &claims[i]
			}
		} else {
			allPaid = false
			wallet.TotalPendingAmount = wallet.TotalPendingAmount.Add(c.Amount)

			if c.PlannedPayoutDate != nil &&
				(wallet.PlannedPayoutDate == nil || c.PlannedPayoutDate.Before(*wallet.PlannedPayoutDate)) {
				wallet.PlannedPayoutDate = c.PlannedPayoutDate
			}
		}

		months = append(months, allowance.WalletMonth{
			InternID:          c.InternID,
			MonthKey:          c.MonthKey,
			Status:            c.Status,
			CalculatedAmount:  c.CalculatedAmount,
			Amount:            c.Amount,
			Breakdown:         c.Breakdown,
			PlannedPayoutDate: c.PlannedPayoutDate,
			PaymentDate:       c.PaymentDate,
			PaidAt:            c.PaidAt,
			IsPayoutLocked:    c.IsPayoutLocked,
			LockReason:        c.LockReason,
		})
	}

	if allPaid {
		wallet.StatusSummary = allowance.WalletStatusAllPaid
	} else {
		wallet.StatusSummary = allowance.WalletStatusHasPending
	}

	switch {
	case lastPaidAt != nil:
		wallet.LastPaidAt = lastPaidAt.PaidAt
		wallet.LastPaymentDate = lastPaidAt.PaymentDate
	case lastPaymentDate != nil:
		wallet.LastPaymentDate = lastPaymentDate.PaymentDate
	}

	return wallet, months
}
