package correction

import "errors"

var (
	ErrCorrectionNotFound = errors.New("time correction not found")
)
