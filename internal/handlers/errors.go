package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/nats-backoffice/httpx"
	"github.com/diewo77/nats-backoffice/internal/middleware"
	"go.uber.org/zap"
)

// errorWriter maps service errors to JSON responses and logs server-side
// failures. Dev mode exposes their detail to the client.
type errorWriter struct {
	log *zap.Logger
	dev bool
}

func newErrorWriter(log *zap.Logger, dev bool) errorWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return errorWriter{log: log, dev: dev}
}

func (e errorWriter) write(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var sc httpx.StatusCoder
	if !errors.As(err, &sc) || sc.StatusCode() >= http.StatusInternalServerError {
		e.log.Error(fallback,
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestID(r.Context())))
	}
	httpx.Error(w, err, fallback, e.dev)
}

func invalidJSON(w http.ResponseWriter) {
	httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON body", nil)
}
