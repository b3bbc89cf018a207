package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const principalKey contextKey = "principal"

// ErrUnauthenticated is returned when no Principal exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrUnauthenticated = errors.New("authentication required")

// ErrForbidden is returned when the authenticated principal may not perform an action.
var ErrForbidden = errors.New("forbidden")

// Principal is the authenticated caller, decoded from a verified access token.
type Principal struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// PrincipalFromCtx extracts the authenticated caller from the request context.
// Returns ErrUnauthenticated if no principal is set or its UserID is uuid.Nil.
func PrincipalFromCtx(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.UserID == uuid.Nil {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// UserIDFromCtx is a shorthand for PrincipalFromCtx(ctx).UserID.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	p, err := PrincipalFromCtx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return p.UserID, nil
}

// WithPrincipal returns a new context with the given Principal attached.
// Used by RequireAuth after validating the bearer token.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// RequireSelf returns ErrForbidden unless the principal is acting on its own user id.
func RequireSelf(ctx context.Context, userID uuid.UUID) error {
	p, err := PrincipalFromCtx(ctx)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return ErrForbidden
	}
	return nil
}
