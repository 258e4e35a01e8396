package router // package router registers the HTTP routes of the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/handler"
	"github.com/iliyamo/projecthub/internal/middleware"
)

// Guards bundles what protected groups need: the credential verifier and an
// optional per-user response cache that must run after authentication.
type Guards struct {
	Verifier middleware.CredentialVerifier
	Cache    echo.MiddlewareFunc
}

// protected returns the middleware chain for routes that require a token.
func (g Guards) protected(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{middleware.JWTAuth(g.Verifier)}
	if g.Cache != nil {
		mws = append(mws, g.Cache)
	}
	return append(mws, extra...)
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, health, metrics echo.HandlerFunc) {
	e.GET("/api/health", health)
	if metrics != nil {
		e.GET("/metrics", metrics)
	}
}

// RegisterAuth registers /api/auth and /api/users.  Register and login are
// public, session accepts an optional token, everything else requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	strict := middleware.JWTAuth(g.Verifier)

	ag := e.Group("/api/auth")
	ag.POST("/register", a.Register)
	ag.POST("/login", a.Login)
	ag.POST("/refresh", a.Refresh, strict)
	ag.GET("/me", a.Me, strict)
	ag.GET("/session", a.Session, middleware.OptionalJWT(g.Verifier))

	ug := e.Group("/api/users", g.protected()...)
	ug.PUT("/profile", a.UpdateProfile)
}
