package handler

import (
	"github.com/labstack/echo/v4"

	"origin-proxy-go/internal/middleware"
)

// RegisterRoutes wires all route handlers onto the Echo instance. The proxy
// owns the catch-all: everything that isn't a health endpoint is site
// content and goes to the origin. Security headers are added only to routes
// the proxy answers itself, so relayed origin responses stay verbatim.
func RegisterRoutes(e *echo.Echo, proxy *ProxyHandler, health *HealthHandler) {
	sec := middleware.SecurityHeaders()

	e.GET("/healthz", health.Healthz, sec)
	e.GET("/proxy/status", health.Status, sec)

	e.Any("/*", proxy.Handle)
}
