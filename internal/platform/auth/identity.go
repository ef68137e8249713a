package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller, resolved once per request by the
// auth middleware and handed to services explicitly.
type Identity struct {
	UserID  uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Role    string    `json:"role,omitempty"`
	TokenID string    `json:"-"`
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// FromEcho returns the identity attached to the request of c.
func FromEcho(c echo.Context) (Identity, bool) {
	return IdentityFromContext(c.Request().Context())
}

func setIdentity(c echo.Context, id Identity) {
	c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))
	c.Set("user_id", id.UserID.String())
	c.Set("user_email", id.Email)
}

// RequireIdentity is FromEcho for handlers that cannot run anonymously.
func RequireIdentity(c echo.Context) (Identity, error) {
	id, ok := FromEcho(c)
	if !ok {
		return Identity{}, unauthorized()
	}
	return id, nil
}
