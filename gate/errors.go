package gate

import "errors"

// Sentinel errors returned by Gate.Authorize.
var (
	// ErrUnauthorized means there is no authenticated subject at all.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the subject is known but its profile lacks the permission.
	ErrForbidden = errors.New("forbidden")
)
