package attendance

import (
	"github.com/internflow/internflow-backend-go/internal/pkg/validator"
)

type ClockInRequest struct {
	InternID string  `json:"-"`
	Date     string  `json:"date"` // "YYYY-MM-DD"
	WorkMode string  `json:"work_mode"`
	At       *string `json:"at,omitempty"` // RFC3339; defaults to now
	Notes    *string `json:"notes,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"})
	}
	if r.WorkMode != string(WorkModeOffice) && r.WorkMode != string(WorkModeRemote) {
		errs = append(errs, validator.ValidationError{Field: "work_mode", Message: "must be 'wfo' or 'wfh'"})
	}
	if r.At != nil {
		if _, ok := validator.IsValidDateTime(*r.At); !ok {
			errs = append(errs, validator.ValidationError{Field: "at", Message: "must be an RFC3339 timestamp"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClockOutRequest struct {
	InternID string  `json:"-"`
	Date     string  `json:"date"` // "YYYY-MM-DD"
	At       *string `json:"at,omitempty"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be YYYY-MM-DD"})
	}
	if r.At != nil {
		if _, ok := validator.IsValidDateTime(*r.At); !ok {
			errs = append(errs, validator.ValidationError{Field: "at", Message: "must be an RFC3339 timestamp"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID       string  `json:"id"`
	InternID string  `json:"intern_id"`
	Date     string  `json:"date"`
	WorkMode string  `json:"work_mode"`
	ClockIn  *string `json:"clock_in,omitempty"`
	ClockOut *string `json:"clock_out,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}
