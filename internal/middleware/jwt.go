package middleware // package middleware holds the echo middleware shared by all route groups

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/auth"
)

// CredentialVerifier is satisfied by *auth.Verifier.
type CredentialVerifier interface {
	Verify(ctx context.Context, header string) (auth.Identity, error)
	VerifyOptional(ctx context.Context, header string) (auth.Identity, bool)
}

// JWTAuth rejects the request unless the Authorization header carries a
// valid bearer token for an active user.  The failure is returned to echo's
// HTTPErrorHandler, which renders the 401 envelope; the handler never runs.
func JWTAuth(v CredentialVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := v.Verify(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

// OptionalJWT attaches the identity when the header verifies and otherwise
// lets the request through anonymously.
func OptionalJWT(v CredentialVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, ok := v.VerifyOptional(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization)); ok {
				setIdentity(c, id)
			}
			return next(c)
		}
	}
}
