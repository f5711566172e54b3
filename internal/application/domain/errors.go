package domain

import "errors"

// Errors returned by the application service. The applied/closed
// messages are user facing and rendered as-is by the API.
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("Already applied to this job")
	ErrJobNotOpen          = errors.New("Job is no longer accepting applications")
	ErrNotAuthorized       = errors.New("Not authorized")
	ErrInvalidStatus       = errors.New("invalid application status")
	ErrInvalidTransition   = errors.New("status transition not allowed")
)
