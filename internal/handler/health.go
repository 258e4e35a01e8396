package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB and wrappers around it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports liveness and, when db is set, database reachability.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		data := echo.Map{"status": "ok", "timestamp": time.Now().UTC()}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				data["status"] = "degraded"
				data["database"] = "unreachable"
				return c.JSON(http.StatusServiceUnavailable, envelope{Success: false, Message: "Database unreachable", Data: data})
			}
			data["database"] = "ok"
		}
		return respond(c, http.StatusOK, "", data)
	}
}
