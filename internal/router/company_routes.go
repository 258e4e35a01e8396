package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/handler"
	"github.com/iliyamo/projecthub/internal/middleware"
	"github.com/iliyamo/projecthub/internal/model"
)

// RegisterCompanies registers /api/companies.  Creating a company needs a
// company account; the :id routes check the caller's membership role.
func RegisterCompanies(e *echo.Echo, h *handler.CompanyHandler, members middleware.MembershipFinder, g Guards) {
	cg := e.Group("/api/companies", g.protected()...)

	cg.POST("", h.Create, middleware.RequireRole(model.UserTypeCompany))
	cg.GET("", h.List)

	anyMember := middleware.RequireCompanyRole(members)
	cg.GET("/:id", h.Get, anyMember)
	cg.GET("/:id/members", h.Members, anyMember)
	cg.POST("/:id/members", h.AddMember, middleware.RequireCompanyRole(members, model.RoleAdmin))
}
