package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	Create(ctx context.Context, att Attendance) (Attendance, error)
	GetByInternAndDate(ctx context.Context, internID string, date time.Time) (Attendance, error)
	SetClockOut(ctx context.Context, id string, clockOut time.Time) (Attendance, error)
	// ListByInternAndRange returns entries whose clock-in falls inside the
	// inclusive date range, ordered by date.
	ListByInternAndRange(ctx context.Context, internID string, from, to time.Time) ([]Attendance, error)
}
