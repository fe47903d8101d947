package allowance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/domain/attendance"
	"github.com/internflow/internflow-backend-go/internal/domain/intern"
	"github.com/internflow/internflow-backend-go/internal/domain/leave"
	"github.com/internflow/internflow-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	// maxBillableHoursPerDay caps a day's payable span.
	maxBillableHoursPerDay = 8.0
	// breakDeductionHours is subtracted from every attendance span.
	breakDeductionHours = 1.0
	// leaveLookbackDays widens the leave query so intervals starting
	// before the month but overlapping it are still counted.
	leaveLookbackDays = 31
)

var hoursPerDay = decimal.NewFromInt(8)

// RecomputeClaim derives the monetary claim for one intern and month.
// Paid claims are frozen and returned verbatim. The wallet refresh at the
// end is best-effort: the claim write is the durability boundary.
func (s *AllowanceServiceImpl) RecomputeClaim(ctx context.Context, internID, monthKey string) (allowance.RecomputeResultResponse, error) {
	if err := validateInternID(internID); err != nil {
		return allowance.RecomputeResultResponse{}, err
	}
	if err := validateMonthKey(monthKey); err != nil {
		return allowance.RecomputeResultResponse{}, err
	}

	existing, err := s.claimRepo.GetByInternAndMonth(ctx, internID, monthKey)
	exists := true
	if err != nil {
		if !errors.Is(err, allowance.ErrClaimNotFound) {
			return allowance.RecomputeResultResponse{}, err
		}
		exists = false
	}

	// Idempotence boundary: a paid claim never changes again, no matter
	// what the underlying attendance data says now.
	if exists && existing.Status == allowance.ClaimStatusPaid {
		return allowance.RecomputeResultResponse{
			Success: true,
			Frozen:  true,
			Claim:   allowance.MapClaimResponse(existing),
		}, nil
	}

	monthStart, monthEnd := monthBounds(monthKey)

	rules, err := s.rulesRepo.GetRules(ctx)
	if err != nil {
		return allowance.RecomputeResultResponse{}, err
	}

	profile, err := s.internRepo.GetByID(ctx, internID)
	if err != nil {
		return allowance.RecomputeResultResponse{}, err
	}

	payPeriod, err := s.rulesRepo.GetPayPeriod(ctx, monthKey)
	if err != nil {
		return allowance.RecomputeResultResponse{}, err
	}

	entries, err := s.attendanceRepo.ListByInternAndRange(ctx, internID, monthStart, monthEnd)
	if err != nil {
		return allowance.RecomputeResultResponse{}, fmt.Errorf("failed to read attendance: %w", err)
	}

	leaveFrom := monthStart.AddDate(0, 0, -leaveLookbackDays)
	leaves, err := s.leaveRepo.ListApprovedOverlapping(ctx, internID, leaveFrom, monthEnd)
	if err != nil {
		return allowance.RecomputeResultResponse{}, fmt.Errorf("failed to read leave: %w", err)
	}

	pendingCorrections, err := s.correctionRepo.CountPendingByIntern(ctx, internID)
	if err != nil {
		return allowance.RecomputeResultResponse{}, fmt.Errorf("failed to count corrections: %w", err)
	}

	gross, breakdown, skipped := sumAttendance(entries, rules)
	breakdown.UnpaidLeaveDays = countLeaveDays(leaves, monthStart, monthEnd)

	calculated := applyTax(gross, rules)

	write := allowance.ClaimWrite{
		InternID:          internID,
		MonthKey:          monthKey,
		CalculatedAmount:  calculated,
		Breakdown:         breakdown,
		PlannedPayoutDate: payPeriod.PlannedPayoutDate,
	}

	// Effective amount: admin override > supervisor override > calculated.
	// When an override exists the stored amount already reflects it, so
	// the write leaves the column alone.
	if !exists || !existing.HasOverride() {
		write.Amount = &calculated
	}

	write.IsPayoutLocked, write.LockReason = resolvePayoutLock(rules, profile, pendingCorrections)

	claim, err := s.claimRepo.Upsert(ctx, write)
	if err != nil {
		return allowance.RecomputeResultResponse{}, err
	}

	result := allowance.RecomputeResultResponse{
		Success:        true,
		AttendanceDays: breakdown.OfficeDays + breakdown.RemoteDays,
		LeaveDays:      breakdown.UnpaidLeaveDays,
		SkippedEntries: skipped,
		Claim:          allowance.MapClaimResponse(claim),
	}

	// Best-effort wallet refresh; the claim commit above already stands.
	sync, err := s.SyncWallet(ctx, internID)
	switch {
	case err != nil:
		msg := err.Error()
		result.WalletSyncError = &msg
		s.logger.Warn("wallet sync after recompute failed",
			slog.String("intern_id", internID),
			slog.String("month_key", monthKey),
			slog.String("error", msg),
		)
	case sync.AlreadyRunning:
		// Another run holds the lease; it will fold in this claim.
	default:
		result.WalletSynced = true
	}

	return result, nil
}

// monthBounds returns the first and last day of the month named by
// monthKey. An unparsable key falls back to the current real-world month
// rather than aborting.
func monthBounds(monthKey string) (time.Time, time.Time) {
	start, ok := validator.ParseMonthKey(monthKey)
	if !ok {
		now := time.Now().UTC()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	end := start.AddDate(0, 1, -1)
	return start, end
}

// sumAttendance folds completed attendance entries into a gross amount
// and day-type counters. Billable hours per entry are the wall-clock span
// minus the break deduction, capped at the daily maximum; entries without
// a clock-out or with a non-positive billable span are skipped entirely.
func sumAttendance(entries []attendance.Attendance, rules allowance.Rules) (decimal.Decimal, allowance.Breakdown, int) {
	gross := decimal.Zero
	var breakdown allowance.Breakdown
	skipped := 0

	for _, e := range entries {
		if e.ClockIn == nil || e.ClockOut == nil {
			skipped++
			continue
		}

		billable := e.ClockOut.Sub(*e.ClockIn).Hours() - breakDeductionHours
		if billable <= 0 {
			skipped++
			continue
		}
		if billable > maxBillableHoursPerDay {
			billable = maxBillableHoursPerDay
		}

		dayRate := rules.OfficeDayRate
		if e.WorkMode == attendance.WorkModeRemote {
			dayRate = rules.RemoteDayRate
			breakdown.RemoteDays++
		} else {
			breakdown.OfficeDays++
		}

		hourlyRate := dayRate.Div(hoursPerDay)
		gross = gross.Add(hourlyRate.Mul(decimal.NewFromFloat(billable)))
	}

	return gross, breakdown, skipped
}

// countLeaveDays expands approved intervals into the set of calendar days
// inside the month. The set keys out duplicate and overlapping
// submissions: a day counts once no matter how many intervals cover it.
func countLeaveDays(leaves []leave.LeaveRequest, monthStart, monthEnd time.Time) int {
	days := make(map[string]struct{})

	for _, l := range leaves {
		if l.StartDate.IsZero() || l.EndDate.IsZero() || l.EndDate.Before(l.StartDate) {
			continue
		}

		day := l.StartDate
		if day.Before(monthStart) {
			day = monthStart
		}
		last := l.EndDate
		if last.After(monthEnd) {
			last = monthEnd
		}

		for !day.After(last) {
			days[day.Format("2006-01-02")] = struct{}{}
			day = day.AddDate(0, 0, 1)
		}
	}

	return len(days)
}

// applyTax nets the gross amount down by the configured percentage and
// rounds to whole currency units, clamped at zero.
func applyTax(gross decimal.Decimal, rules allowance.Rules) decimal.Decimal {
	net := gross
	if rules.ApplyTax {
		factor := decimal.NewFromInt(1).Sub(rules.TaxPercent.Div(decimal.NewFromInt(100)))
		net = gross.Mul(factor)
	}
	net = net.Round(0)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// resolvePayoutLock applies the freeze policy. A pending correction wins
// the human-readable reason over the end-of-program freeze.
func resolvePayoutLock(rules allowance.Rules, profile intern.Intern, pendingCorrections int) (bool, *string) {
	if pendingCorrections > 0 {
		reason := fmt.Sprintf("payout locked: %d pending time correction request(s)", pendingCorrections)
		return true, &reason
	}
	if rules.PayoutFrequency == allowance.PayoutEndProgram && profile.LifecycleStatus != intern.LifecycleCompleted {
		reason := "payout deferred until program completion"
		return true, &reason
	}
	return false, nil
}
