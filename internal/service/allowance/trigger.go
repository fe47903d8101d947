package allowance

import (
	"context"
	"log/slog"
	"time"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/domain/user"
	"github.com/internflow/internflow-backend-go/internal/pkg/validator"
)

// Trigger reacts to the two events that start the recompute pipeline: a
// newly completed attendance day, and an explicit recompute request. It
// owns no computation of its own, only event filtering, role gating and
// error-to-log translation.
type Trigger struct {
	service allowance.AllowanceService
	logger  *slog.Logger
}

func NewTrigger(service allowance.AllowanceService, logger *slog.Logger) *Trigger {
	return &Trigger{service: service, logger: logger}
}

// OnAttendanceCompleted handles a clock-out that newly completed a day.
// Callers must only fire it on the incomplete-to-complete transition;
// repeats of an already-processed transition are their bug to filter.
// The refresh is best-effort derived data, so failures are logged and
// swallowed — attendance itself is the system of record.
func (t *Trigger) OnAttendanceCompleted(ctx context.Context, internID string, day time.Time) {
	monthKey := validator.MonthKeyOf(day)

	result, err := t.service.RecomputeClaim(ctx, internID, monthKey)
	if err != nil {
		t.logger.Error("claim recompute after attendance completion failed",
			slog.String("intern_id", internID),
			slog.String("month_key", monthKey),
			slog.String("error", err.Error()),
		)
		return
	}

	t.logger.Info("claim recomputed after attendance completion",
		slog.String("intern_id", internID),
		slog.String("month_key", monthKey),
		slog.Bool("wallet_synced", result.WalletSynced),
	)
}

// RequestRecompute serves an explicit caller-initiated recompute. Staff
// may recompute any intern's claim; interns only their own.
func (t *Trigger) RequestRecompute(ctx context.Context, internID, monthKey string) (allowance.RecomputeResultResponse, error) {
	_, callerInternID, role := callerFromContext(ctx)

	if !role.IsStaff() {
		if callerInternID == nil || *callerInternID != internID {
			return allowance.RecomputeResultResponse{}, user.ErrSelfAccessOnly
		}
	}

	return t.service.RecomputeClaim(ctx, internID, monthKey)
}

// RequestWalletSync is the explicit counterpart for the wallet, with the
// same role gating.
func (t *Trigger) RequestWalletSync(ctx context.Context, internID string) (allowance.SyncResultResponse, error) {
	_, callerInternID, role := callerFromContext(ctx)

	if !role.IsStaff() {
		if callerInternID == nil || *callerInternID != internID {
			return allowance.SyncResultResponse{}, user.ErrSelfAccessOnly
		}
	}

	return t.service.SyncWallet(ctx, internID)
}
