package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/domain/user"
	"github.com/internflow/internflow-backend-go/internal/handler/http/response"
	allowanceService "github.com/internflow/internflow-backend-go/internal/service/allowance"
)

type AllowanceHandler interface {
	Recompute(w http.ResponseWriter, r *http.Request)
	SyncWallet(w http.ResponseWriter, r *http.Request)
	GetWallet(w http.ResponseWriter, r *http.Request)
	ListClaims(w http.ResponseWriter, r *http.Request)
	GetClaim(w http.ResponseWriter, r *http.Request)
	AdjustClaim(w http.ResponseWriter, r *http.Request)
}

type allowanceHandlerImpl struct {
	allowanceService allowance.AllowanceService
	trigger          *allowanceService.Trigger
}

func NewAllowanceHandler(service allowance.AllowanceService, trigger *allowanceService.Trigger) AllowanceHandler {
	return &allowanceHandlerImpl{
		allowanceService: service,
		trigger:          trigger,
	}
}

// callerIdentity reads the caller's intern binding and role from the
// verified token claims. Absent or malformed claims degrade to an
// unbound intern role, which every gate below rejects.
func callerIdentity(r *http.Request) (*string, user.Role) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return nil, user.RoleIntern
	}

	var internID *string
	if v, ok := claims["intern_id"].(string); ok && v != "" {
		internID = &v
	}

	role := user.RoleIntern
	if v, ok := claims["role"].(string); ok {
		role = user.Role(v)
	}

	return internID, role
}

// requireSelfOrStaff gates read endpoints: staff see any intern, interns
// only themselves.
func requireSelfOrStaff(r *http.Request, internID string) error {
	callerInternID, role := callerIdentity(r)
	if role.IsStaff() {
		return nil
	}
	if callerInternID == nil || *callerInternID != internID {
		return user.ErrSelfAccessOnly
	}
	return nil
}

// Recompute implements AllowanceHandler.
func (h *allowanceHandlerImpl) Recompute(w http.ResponseWriter, r *http.Request) {
	internID := chi.URLParam(r, "internID")
	monthKey := chi.URLParam(r, "monthKey")

	result, err := h.trigger.RequestRecompute(r.Context(), internID, monthKey)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Claim recomputed", result)
}

// SyncWallet implements AllowanceHandler.
func (h *allowanceHandlerImpl) SyncWallet(w http.ResponseWriter, r *http.Request) {
	internID := chi.URLParam(r, "internID")

	result, err := h.trigger.RequestWalletSync(r.Context(), internID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.AlreadyRunning {
		response.SuccessWithMessage(w, "Wallet sync already in progress", result)
		return
	}
	response.SuccessWithMessage(w, "Wallet synchronized", result)
}

// GetWallet implements AllowanceHandler.
func (h *allowanceHandlerImpl) GetWallet(w http.ResponseWriter, r *http.Request) {
	internID := chi.URLParam(r, "internID")

	if err := requireSelfOrStaff(r, internID); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.allowanceService.GetWallet(r.Context(), internID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListClaims implements AllowanceHandler.
func (h *allowanceHandlerImpl) ListClaims(w http.ResponseWriter, r *http.Request) {
	internID := chi.URLParam(r, "internID")

	if err := requireSelfOrStaff(r, internID); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.allowanceService.ListClaims(r.Context(), internID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetClaim implements AllowanceHandler.
func (h *allowanceHandlerImpl) GetClaim(w http.ResponseWriter, r *http.Request) {
	internID := chi.URLParam(r, "internID")
	monthKey := chi.URLParam(r, "monthKey")

	if err := requireSelfOrStaff(r, internID); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.allowanceService.GetClaim(r.Context(), internID, monthKey)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// AdjustClaim implements AllowanceHandler. Staff only; the route carries
// the RequireStaff middleware.
func (h *allowanceHandlerImpl) AdjustClaim(w http.ResponseWriter, r *http.Request) {
	var req allowance.AdjustClaimRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.InternID = chi.URLParam(r, "internID")
	req.MonthKey = chi.URLParam(r, "monthKey")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.allowanceService.AdjustClaim(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Claim adjusted", result)
}
