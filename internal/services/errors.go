package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/nats-backoffice/validation"
)

// Error is a client-facing failure with a fixed HTTP status.
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string   { return e.Msg }
func (e *Error) StatusCode() int { return e.Code }

var (
	ErrUnauthorized         = &Error{http.StatusUnauthorized, "Unauthorized"}
	ErrNotFound             = &Error{http.StatusNotFound, "Not found"}
	ErrNoFile               = &Error{http.StatusBadRequest, "No file provided"}
	ErrUnsupportedMediaType = &Error{http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, WebP, and GIF are allowed."}
	ErrPayloadTooLarge      = &Error{http.StatusBadRequest, "File too large. Maximum size is 5MB."}
)

// resourceError specialises a sentinel message ("Lead not found") while
// still matching the sentinel with errors.Is.
type resourceError struct {
	msg  string
	base *Error
}

func (e *resourceError) Error() string   { return e.msg }
func (e *resourceError) StatusCode() int { return e.base.Code }
func (e *resourceError) Unwrap() error   { return e.base }

func notFound(resource string) error {
	return &resourceError{msg: resource + " not found", base: ErrNotFound}
}

// ValidationError reports rejected input. Violations maps field to reason.
type ValidationError struct {
	Message    string
	Violations validation.Violations
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *ValidationError) Details() any    { return e.Violations }

func newValidationError(msg string, v validation.Violations) *ValidationError {
	return &ValidationError{Message: msg, Violations: v}
}

// missingFields builds the "Missing required fields: a, b" error, keeping the
// declaration order of fields.
func missingFields(v validation.Violations, fields ...string) *ValidationError {
	var missing []string
	for _, f := range fields {
		if v[f] == "required" {
			missing = append(missing, f)
		}
	}
	return newValidationError("Missing required fields: "+strings.Join(missing, ", "), v)
}

// StoreError wraps a persistence failure. Its message is never shown to
// clients outside dev mode.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string   { return e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error   { return e.Err }
func (e *StoreError) StatusCode() int { return http.StatusInternalServerError }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
