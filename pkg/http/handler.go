package http

import "github.com/labstack/echo/v4"

// Handler registers a group of routes on the server's echo instance.
// NewServer calls RegisterRoutes once, after the shared middleware is installed.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
