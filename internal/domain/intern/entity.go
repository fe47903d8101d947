package intern

import "time"

// LifecycleStatus enum
type LifecycleStatus string

const (
	LifecycleActive     LifecycleStatus = "active"
	LifecycleOnboarding LifecycleStatus = "onboarding"
	LifecycleCompleted  LifecycleStatus = "completed"
	LifecycleTerminated LifecycleStatus = "terminated"
)

// Intern - program participant profile
type Intern struct {
	ID              string
	UserID          *string
	Name            string
	Email           string
	LifecycleStatus LifecycleStatus
	ProgramStart    *time.Time
	ProgramEnd      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
