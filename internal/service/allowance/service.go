package allowance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/domain/attendance"
	"github.com/internflow/internflow-backend-go/internal/domain/correction"
	"github.com/internflow/internflow-backend-go/internal/domain/intern"
	"github.com/internflow/internflow-backend-go/internal/domain/leave"
	"github.com/internflow/internflow-backend-go/internal/domain/user"
	"github.com/internflow/internflow-backend-go/internal/pkg/validator"
)

// DefaultLockStaleness is how old a running wallet sync lease must be
// before it is considered abandoned and reclaimable.
const DefaultLockStaleness = 10 * time.Minute

type AllowanceServiceImpl struct {
	claimRepo      allowance.ClaimRepository
	walletRepo     allowance.WalletRepository
	rulesRepo      allowance.RulesRepository
	internRepo     intern.InternRepository
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRepository
	correctionRepo correction.CorrectionRepository
	lock           *SyncLockManager
	logger         *slog.Logger
}

func NewAllowanceService(
	claimRepo allowance.ClaimRepository,
	walletRepo allowance.WalletRepository,
	lockRepo allowance.SyncLockRepository,
	rulesRepo allowance.RulesRepository,
	internRepo intern.InternRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRepository,
	correctionRepo correction.CorrectionRepository,
	lockStaleness time.Duration,
	logger *slog.Logger,
) allowance.AllowanceService {
	if lockStaleness <= 0 {
		lockStaleness = DefaultLockStaleness
	}
	return &AllowanceServiceImpl{
		claimRepo:      claimRepo,
		walletRepo:     walletRepo,
		rulesRepo:      rulesRepo,
		internRepo:     internRepo,
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		correctionRepo: correctionRepo,
		lock:           NewSyncLockManager(lockRepo, lockStaleness),
		logger:         logger,
	}
}

// callerFromContext extracts the authenticated caller from the JWT, when
// one is present. Internal invocations (the attendance completion path)
// carry no token and act as "system".
func callerFromContext(ctx context.Context) (userID string, internID *string, role user.Role) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "system", nil, ""
	}

	userID, _ = claims["user_id"].(string)
	if userID == "" {
		userID = "system"
	}
	if id, ok := claims["intern_id"].(string); ok && id != "" {
		internID = &id
	}
	if r, ok := claims["role"].(string); ok {
		role = user.Role(r)
	}
	return userID, internID, role
}

func validateInternID(internID string) error {
	if validator.IsEmpty(internID) {
		return allowance.ErrInvalidInternID
	}
	return nil
}

func validateMonthKey(monthKey string) error {
	if !validator.IsValidMonthKey(monthKey) {
		return allowance.ErrInvalidMonthKey
	}
	return nil
}

// ========== READS ==========

func (s *AllowanceServiceImpl) GetWallet(ctx context.Context, internID string) (allowance.WalletResponse, error) {
	if err := validateInternID(internID); err != nil {
		return allowance.WalletResponse{}, err
	}

	wallet, err := s.walletRepo.GetByIntern(ctx, internID)
	if err != nil {
		return allowance.WalletResponse{}, err
	}

	months, err := s.walletRepo.ListMonths(ctx, internID)
	if err != nil {
		return allowance.WalletResponse{}, err
	}

	return allowance.MapWalletResponse(wallet, months), nil
}

func (s *AllowanceServiceImpl) ListClaims(ctx context.Context, internID string) ([]allowance.ClaimResponse, error) {
	if err := validateInternID(internID); err != nil {
		return nil, err
	}

	claims, err := s.claimRepo.ListByIntern(ctx, internID)
	if err != nil {
		return nil, err
	}

	result := make([]allowance.ClaimResponse, 0, len(claims))
	for _, c := range claims {
		result = append(result, allowance.MapClaimResponse(c))
	}

	return result, nil
}

func (s *AllowanceServiceImpl) GetClaim(ctx context.Context, internID, monthKey string) (allowance.ClaimResponse, error) {
	if err := validateInternID(internID); err != nil {
		return allowance.ClaimResponse{}, err
	}
	if err := validateMonthKey(monthKey); err != nil {
		return allowance.ClaimResponse{}, err
	}

	claim, err := s.claimRepo.GetByInternAndMonth(ctx, internID, monthKey)
	if err != nil {
		return allowance.ClaimResponse{}, err
	}

	return allowance.MapClaimResponse(claim), nil
}

// ========== ADJUSTMENTS ==========

func (s *AllowanceServiceImpl) AdjustClaim(ctx context.Context, req allowance.AdjustClaimRequest) (allowance.ClaimResponse, error) {
	if err := validateInternID(req.InternID); err != nil {
		return allowance.ClaimResponse{}, err
	}
	if err := validateMonthKey(req.MonthKey); err != nil {
		return allowance.ClaimResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return allowance.ClaimResponse{}, err
	}

	// The admin override and marking paid are HR-admin actions; the
	// supervisor override is open to all staff (route middleware).
	if req.AdminAdjustedAmount != nil || req.MarkPaid != nil {
		if _, _, role := callerFromContext(ctx); role != user.RoleHRAdmin {
			return allowance.ClaimResponse{}, user.ErrHRAdminAccessRequired
		}
	}

	existing, err := s.claimRepo.GetByInternAndMonth(ctx, req.InternID, req.MonthKey)
	if err != nil {
		return allowance.ClaimResponse{}, err
	}
	if existing.Status == allowance.ClaimStatusPaid {
		return allowance.ClaimResponse{}, allowance.ErrClaimAlreadyPaid
	}

	adj := allowance.ClaimAdjustment{
		SupervisorAdjustedAmount: req.SupervisorAdjustedAmount,
		AdminAdjustedAmount:      req.AdminAdjustedAmount,
	}

	// Effective amount follows override precedence: admin wins over
	// supervisor, both win over the calculated value.
	merged := existing
	if req.SupervisorAdjustedAmount != nil {
		merged.SupervisorAdjustedAmount = req.SupervisorAdjustedAmount
	}
	if req.AdminAdjustedAmount != nil {
		merged.AdminAdjustedAmount = req.AdminAdjustedAmount
	}
	if override := merged.OverrideAmount(); override != nil {
		adj.Amount = override
	}

	if req.MarkPaid != nil && *req.MarkPaid {
		if existing.IsPayoutLocked {
			return allowance.ClaimResponse{}, fmt.Errorf("claim %s/%s is payout locked: %s",
				req.InternID, req.MonthKey, derefOr(existing.LockReason, "no reason recorded"))
		}
		now := time.Now()
		paidStatus := allowance.ClaimStatusPaid
		adj.Status = &paidStatus
		adj.PaidAt = &now
		paymentDate := now
		if req.PaymentDate != nil {
			if d, ok := validator.IsValidDate(*req.PaymentDate); ok {
				paymentDate = d
			}
		}
		adj.PaymentDate = &paymentDate
	}

	updated, err := s.claimRepo.ApplyAdjustment(ctx, req.InternID, req.MonthKey, adj)
	if err != nil {
		return allowance.ClaimResponse{}, err
	}

	// The wallet is a cache; refresh failures must not undo the adjustment.
	if _, err := s.SyncWallet(ctx, req.InternID); err != nil {
		s.logger.Warn("wallet sync after claim adjustment failed",
			slog.String("intern_id", req.InternID),
			slog.String("month_key", req.MonthKey),
			slog.String("error", err.Error()),
		)
	}

	return allowance.MapClaimResponse(updated), nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
