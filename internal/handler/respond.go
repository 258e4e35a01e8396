package handler

import "github.com/labstack/echo/v4"

// envelope is the success body of every endpoint.  Failures are rendered
// by the error handler in middleware.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, status int, msg string, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Message: msg, Data: data})
}
