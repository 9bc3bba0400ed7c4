package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoApplicablePlan = errors.New("no applicable plan")
	ErrUnknownAction    = errors.New("unknown action")
	ErrPlanFailed       = errors.New("plan failed")
	ErrInvalidConfig    = errors.New("invalid configuration")
)
