package correction

import "time"

// CorrectionStatus enum
type CorrectionStatus string

const (
	CorrectionStatusPending  CorrectionStatus = "pending"
	CorrectionStatusApproved CorrectionStatus = "approved"
	CorrectionStatusRejected CorrectionStatus = "rejected"
)

// AttachmentKind discriminates the supported evidence variants.
type AttachmentKind string

const (
	AttachmentFile AttachmentKind = "file"
	AttachmentLink AttachmentKind = "link"
)

// Attachment is a closed sum: either an uploaded file reference or an
// external link, never both.
type Attachment struct {
	Kind AttachmentKind
	// FileName/FilePath set when Kind == AttachmentFile.
	FileName *string
	FilePath *string
	// URL set when Kind == AttachmentLink.
	URL *string
}

// TimeCorrection - a request to fix a recorded attendance timestamp. A
// pending correction blocks payout for the affected intern's claims.
type TimeCorrection struct {
	ID              string
	InternID        string
	AttendanceID    string
	RequestedIn     *time.Time
	RequestedOut    *time.Time
	Reason          string
	Attachment      *Attachment
	Status          CorrectionStatus
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
