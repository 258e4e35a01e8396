package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/handler"
)

// RegisterDailyTasks registers /api/daily-tasks.
func RegisterDailyTasks(e *echo.Echo, h *handler.DailyTaskHandler, g Guards) {
	dg := e.Group("/api/daily-tasks", g.protected()...)
	dg.GET("", h.List)
	dg.POST("", h.Create)
	dg.GET("/stats", h.Stats)
	dg.PUT("/:id", h.Update)
	dg.DELETE("/:id", h.Delete)
	dg.POST("/:id/complete", h.Complete)
	dg.POST("/:id/uncomplete", h.Uncomplete)
	dg.GET("/:id/history", h.History)
}
