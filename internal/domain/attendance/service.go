package attendance

import "context"

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// ClockIn opens today's entry for the authenticated intern
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut completes the entry; a newly completed day triggers the
	// allowance recomputation pipeline for its month
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)

	// ListMyAttendance retrieves entries for the intern in a date range
	ListMyAttendance(ctx context.Context, internID string, from, to string) ([]AttendanceResponse, error)
}
