package policy

import (
	"context"
	"errors"
	"net/http"

	"github.com/diewo77/nats-backoffice/auth"
	"github.com/diewo77/nats-backoffice/gate"
	"github.com/diewo77/nats-backoffice/httpx"
)

// AuthGate is the single authorization checkpoint for protected routes.
type AuthGate struct {
	Gate *gate.Gate[auth.Session]
}

func NewAuthGate(resolver gate.ProfileResolver[auth.Session]) *AuthGate {
	return &AuthGate{Gate: gate.New[auth.Session](resolver)}
}

// Authorize checks the session carried by ctx.
// Returns gate.ErrUnauthorized without a session, gate.ErrForbidden without permission.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string) error {
	s, _ := auth.SessionFromContext(ctx)
	return ag.Gate.Authorize(ctx, s, action, resourceType)
}

// Can is a convenience method that returns bool instead of error.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string) bool {
	return ag.Authorize(ctx, action, resourceType) == nil
}

// RequirePermission returns middleware that rejects the request before the
// handler runs: 401 without a session, 403 without the permission.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ag.Authorize(r.Context(), action, resourceType); err != nil {
				writeGateError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin only lets "*:*" profiles through.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return ag.RequirePermission(gate.WildcardAll, gate.WildcardAll)
}

func writeGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gate.ErrUnauthorized):
		httpx.JSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
	case errors.Is(err, gate.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "Forbidden", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
