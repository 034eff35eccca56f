package services

import (
	"context"

	"github.com/diewo77/nats-backoffice/auth"
)

// requireSession fails with ErrUnauthorized before any store access when ctx
// carries no session.
func requireSession(ctx context.Context) (auth.Session, error) {
	s, ok := auth.SessionFromContext(ctx)
	if !ok {
		return auth.Session{}, ErrUnauthorized
	}
	return s, nil
}
