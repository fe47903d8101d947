package leave

import "time"

// LeaveStatus enum
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// LeaveRequest - date-only inclusive interval. Overlapping approved
// requests are legal; consumers must de-duplicate by calendar day.
type LeaveRequest struct {
	ID        string
	InternID  string
	StartDate time.Time
	EndDate   time.Time
	Reason    *string
	Status    LeaveStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
