package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/auth"
)

const identityKey = "identity"

// setIdentity stores id on both the request context and the echo context.
func setIdentity(c echo.Context, id auth.Identity) {
	r := c.Request()
	c.SetRequest(r.WithContext(auth.WithIdentity(r.Context(), id)))
	c.Set(identityKey, id)
}

// CurrentIdentity returns the identity attached by JWTAuth or OptionalJWT.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	if id, ok := c.Get(identityKey).(auth.Identity); ok {
		return id, true
	}
	return auth.IdentityFrom(c.Request().Context())
}

// userID returns the caller's id, or "anon" without an identity.
func userID(c echo.Context) string {
	if id, ok := CurrentIdentity(c); ok && id.UserID != "" {
		return id.UserID
	}
	return "anon"
}
