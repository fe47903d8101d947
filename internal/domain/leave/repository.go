package leave

import (
	"context"
	"time"
)

type LeaveRepository interface {
	// ListApprovedOverlapping returns approved requests whose interval
	// intersects the inclusive [from, to] range.
	ListApprovedOverlapping(ctx context.Context, internID string, from, to time.Time) ([]LeaveRequest, error)
}
