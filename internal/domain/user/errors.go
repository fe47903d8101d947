package user

import "errors"

var (
	ErrStaffAccessRequired   = errors.New("supervisor or hr admin access required")
	ErrHRAdminAccessRequired = errors.New("hr admin access required")
	ErrSelfAccessOnly        = errors.New("interns may only access their own records")
)
