package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/handler"
	"github.com/nnomo/apartment-reservations/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers admin authentication.  Login is public; /v1/me
// requires a valid access token of either admin role.  superRegisterPath
// mounts the superadmin bootstrap endpoint when non-empty.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret, superRegisterPath string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)

	if superRegisterPath != "" {
		e.POST(superRegisterPath, a.RegisterSuper)
	}

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(adminRoles...),
	)
	auth.GET("/me", a.Me)
}

// RegisterRealtime mounts the WebSocket channel.  The handler checks the
// token itself since browsers cannot send an Authorization header.
func RegisterRealtime(e *echo.Echo, ws *handler.WSHandler) {
	e.GET("/v1/ws", ws.Serve)
}
