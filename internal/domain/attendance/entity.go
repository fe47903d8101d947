package attendance

import "time"

// WorkMode enum
type WorkMode string

const (
	WorkModeOffice WorkMode = "wfo"
	WorkModeRemote WorkMode = "wfh"
)

// Attendance - one entry per intern per day. ClockOut stays nil until the
// day is completed; completion is what makes the entry billable.
type Attendance struct {
	ID        string
	InternID  string
	Date      time.Time
	WorkMode  WorkMode
	ClockIn   *time.Time
	ClockOut  *time.Time
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsComplete reports whether both timestamps are present.
func (a Attendance) IsComplete() bool {
	return a.ClockIn != nil && a.ClockOut != nil
}
