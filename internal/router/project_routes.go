package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/handler"
	"github.com/iliyamo/projecthub/internal/middleware"
	"github.com/iliyamo/projecthub/internal/model"
)

// RegisterProjects registers /api/projects, the nested task collection and
// /api/tasks.
func RegisterProjects(e *echo.Echo, p *handler.ProjectHandler, t *handler.TaskHandler, g Guards) {
	pg := e.Group("/api/projects", g.protected()...)
	pg.GET("", p.List)
	pg.POST("", p.Create, middleware.RequireRole(model.UserTypeIndividual, model.UserTypeCompany))
	pg.GET("/:id", p.Get)
	pg.PUT("/:id", p.Update)
	pg.DELETE("/:id", p.Delete)
	pg.GET("/:id/dashboard", p.Dashboard)
	pg.GET("/:id/tasks", t.ListByProject)
	pg.POST("/:id/tasks", t.Create)

	tg := e.Group("/api/tasks", g.protected()...)
	tg.GET("/:id", t.Get)
	tg.PUT("/:id", t.Update)
	tg.DELETE("/:id", t.Delete)
}
