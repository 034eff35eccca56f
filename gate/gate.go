// Package gate is a small permission gate: a subject resolves to a profile,
// and a profile grants "resource:action" permissions. It knows nothing about
// HTTP or the domain models so it can be reused by any transport.
package gate

import "context"

// Gate is the central authorization checkpoint.
// U is the subject type; its zero value means "nobody is logged in".
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
}

// New creates a Gate backed by resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver}
}

// Authorize returns ErrUnauthorized for the zero subject, ErrForbidden when the
// subject's profile does not grant resourceType:action, and any resolver error
// as is.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, resourceType string) error {
	var zero U
	if subject == zero {
		return ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return err
	}
	if profile == nil || !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, subject U, action Action, resourceType string) bool {
	return g.Authorize(ctx, subject, action, resourceType) == nil
}
