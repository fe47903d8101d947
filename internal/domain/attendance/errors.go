package attendance

import "errors"

var (
	ErrAttendanceNotFound   = errors.New("attendance entry not found")
	ErrAlreadyClockedIn     = errors.New("already clocked in for this date")
	ErrAlreadyClockedOut    = errors.New("already clocked out for this date")
	ErrClockInRequiredFirst = errors.New("cannot clock out before clocking in")
)
