package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/internflow/internflow-backend-go/internal/domain/attendance"
	"github.com/internflow/internflow-backend-go/internal/pkg/validator"
	allowanceService "github.com/internflow/internflow-backend-go/internal/service/allowance"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	trigger        *allowanceService.Trigger
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	trigger *allowanceService.Trigger,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		trigger:        trigger,
	}
}

func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, _ := validator.IsValidDate(req.Date)

	at := time.Now()
	if req.At != nil {
		if parsed, ok := validator.IsValidDateTime(*req.At); ok {
			at = parsed
		}
	}

	if _, err := s.attendanceRepo.GetByInternAndDate(ctx, req.InternID, date); err == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
	} else if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, err
	}

	created, err := s.attendanceRepo.Create(ctx, attendance.Attendance{
		ID:       uuid.NewString(),
		InternID: req.InternID,
		Date:     date,
		WorkMode: attendance.WorkMode(req.WorkMode),
		ClockIn:  &at,
		Notes:    req.Notes,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return mapAttendanceResponse(created), nil
}

func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, _ := validator.IsValidDate(req.Date)

	entry, err := s.attendanceRepo.GetByInternAndDate(ctx, req.InternID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if entry.ClockIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrClockInRequiredFirst
	}
	if entry.ClockOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedOut
	}

	at := time.Now()
	if req.At != nil {
		if parsed, ok := validator.IsValidDateTime(*req.At); ok {
			at = parsed
		}
	}

	// SetClockOut only succeeds on the incomplete-to-complete transition,
	// so a repeated request cannot re-fire the allowance pipeline.
	updated, err := s.attendanceRepo.SetClockOut(ctx, entry.ID, at)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	s.trigger.OnAttendanceCompleted(ctx, req.InternID, date)

	return mapAttendanceResponse(updated), nil
}

func (s *AttendanceServiceImpl) ListMyAttendance(ctx context.Context, internID string, from, to string) ([]attendance.AttendanceResponse, error) {
	fromDate, ok := validator.IsValidDate(from)
	if !ok {
		return nil, validator.ValidationErrors{{Field: "from", Message: "must be YYYY-MM-DD"}}
	}
	toDate, ok := validator.IsValidDate(to)
	if !ok {
		return nil, validator.ValidationErrors{{Field: "to", Message: "must be YYYY-MM-DD"}}
	}

	entries, err := s.attendanceRepo.ListByInternAndRange(ctx, internID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	result := make([]attendance.AttendanceResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, mapAttendanceResponse(e))
	}

	return result, nil
}

func mapAttendanceResponse(a attendance.Attendance) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:       a.ID,
		InternID: a.InternID,
		Date:     a.Date.Format("2006-01-02"),
		WorkMode: string(a.WorkMode),
		Notes:    a.Notes,
	}
	if a.ClockIn != nil {
		str := a.ClockIn.Format(time.RFC3339)
		resp.ClockIn = &str
	}
	if a.ClockOut != nil {
		str := a.ClockOut.Format(time.RFC3339)
		resp.ClockOut = &str
	}
	return resp
}
