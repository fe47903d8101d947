package response

import (
	"errors"
	"net/http"

	"github.com/internflow/internflow-backend-go/internal/domain/allowance"
	"github.com/internflow/internflow-backend-go/internal/domain/attendance"
	"github.com/internflow/internflow-backend-go/internal/domain/intern"
	"github.com/internflow/internflow-backend-go/internal/domain/user"
	"github.com/internflow/internflow-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Access errors
	case errors.Is(err, user.ErrStaffAccessRequired),
		errors.Is(err, user.ErrHRAdminAccessRequired),
		errors.Is(err, user.ErrSelfAccessOnly):
		Forbidden(w, err.Error())

	// Allowance domain errors
	case errors.Is(err, allowance.ErrInvalidInternID),
		errors.Is(err, allowance.ErrInvalidMonthKey):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, allowance.ErrClaimNotFound):
		NotFound(w, "Allowance claim not found")
	case errors.Is(err, allowance.ErrWalletNotFound):
		NotFound(w, "Allowance wallet not found")
	case errors.Is(err, allowance.ErrClaimAlreadyPaid):
		Conflict(w, "Allowance claim already paid")
	case errors.Is(err, allowance.ErrRulesNotConfigured):
		Conflict(w, "Allowance rules not configured")

	// Intern domain errors
	case errors.Is(err, intern.ErrInternNotFound):
		NotFound(w, "Intern not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance entry not found")
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		Conflict(w, "Already clocked in for this date")
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		Conflict(w, "Already clocked out for this date")
	case errors.Is(err, attendance.ErrClockInRequiredFirst):
		BadRequest(w, "Cannot clock out before clocking in", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
