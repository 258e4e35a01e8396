package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/apperr"
	"github.com/iliyamo/projecthub/internal/auth"
	"github.com/iliyamo/projecthub/internal/model"
	"github.com/iliyamo/projecthub/internal/repository"
)

// RequireRole admits callers whose user type is in roles.  With no roles
// any authenticated caller passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var idp *auth.Identity
			if id, ok := CurrentIdentity(c); ok {
				idp = &id
			}
			if err := auth.Authorize(idp, roles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// MembershipFinder looks up a user's membership in a company.
type MembershipFinder interface {
	Membership(ctx context.Context, companyID, userID string) (model.CompanyMember, error)
}

// RequireCompanyRole applies the same set test to the caller's role in the
// company named by the :id path parameter.  Callers without an active
// membership get 404 so company ids are not disclosed.
func RequireCompanyRole(members MembershipFinder, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentIdentity(c)
			if !ok {
				return auth.ErrUnauthenticated
			}
			m, err := members.Membership(c.Request().Context(), c.Param("id"), id.UserID)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && !m.IsActive) {
				return apperr.NotFound("Company not found")
			}
			if err != nil {
				return err
			}
			if len(roles) > 0 && !auth.InSet(m.Role, roles...) {
				return auth.ErrForbidden
			}
			return next(c)
		}
	}
}
