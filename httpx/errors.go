package httpx

import (
	"errors"
	"net/http"
)

var errEmptyBody = errors.New("empty request body")

// StatusCoder is implemented by errors that know their HTTP status.
type StatusCoder interface {
	error
	StatusCode() int
}

// Detailer is implemented by errors that carry client-facing details
// (validation violations for instance).
type Detailer interface {
	Details() any
}

// Error writes err as a JSON error body. The status comes from the first
// StatusCoder found in the chain, 500 otherwise. For 5xx responses the
// underlying message is only exposed when dev is true.
func Error(w http.ResponseWriter, err error, fallback string, dev bool) {
	status := http.StatusInternalServerError
	var sc StatusCoder
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	if status >= http.StatusInternalServerError {
		var details any
		if dev {
			details = err.Error()
		}
		JSONError(w, status, fallback, details)
		return
	}
	var details any
	var d Detailer
	if errors.As(err, &d) {
		details = d.Details()
	}
	JSONError(w, status, sc.Error(), details)
}
