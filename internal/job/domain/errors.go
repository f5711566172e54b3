package domain

import (
	"errors"
	"fmt"
)

// Errors returned by the job service. Messages for the auth- and
// plan-related errors are user facing and rendered as-is by the API.
var (
	ErrJobNotFound        = errors.New("job not found")
	ErrNoActiveOrg        = errors.New("No active organization")
	ErrNotOrgMember       = errors.New("Must be an org member to post jobs")
	ErrNotAuthorized      = errors.New("Not authorized")
	ErrAdminOnlyClose     = errors.New("Only org admins can close job listings")
	ErrFeaturedNotAllowed = errors.New("featured listings require a Pro plan")
	ErrInvalidJobType     = errors.New("invalid job type")
	ErrInvalidJobStatus   = errors.New("invalid job status")
)

// StarterLimitPrefix tags plan-limit errors so clients can distinguish
// them from other authorization failures.
const StarterLimitPrefix = "STARTER_LIMIT"

// LimitError is returned when activating a listing would exceed the
// plan's active-job quota.
type LimitError struct {
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: You have reached the %d active job limit. Upgrade to Pro for unlimited postings.", StarterLimitPrefix, e.Limit)
}

// IsLimitError reports whether err is a plan-limit rejection.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}
