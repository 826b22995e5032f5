package router

import (
	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/handler"
)

// RegisterClient registers the unauthenticated client endpoints under
// /v1/client.  submitLimit, when non-nil, guards reservation submission.
func RegisterClient(e *echo.Echo, a *handler.ApartmentHandler, r *handler.ReservationHandler, submitLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/client")

	// ---- Apartments ----
	g.GET("/apartments/categories", a.ListCategories)
	g.GET("/apartments/categories/:id", a.GetCategory)
	g.GET("/apartments/:id/status", a.Status)

	// ---- Reservations ----
	if submitLimit != nil {
		g.POST("/reservations", r.Submit, submitLimit)
	} else {
		g.POST("/reservations", r.Submit)
	}
	g.GET("/reservations", r.Lookup)
	g.GET("/reservations/:id/receipt", r.Receipt)
	g.GET("/reservation-config", r.Config)
}
