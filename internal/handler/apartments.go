package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/service"
)

// ApartmentHandler serves the client-facing apartment listings.  Every
// response is derived from reservations at request time.
type ApartmentHandler struct {
	Resolver *service.Resolver
	Log      *slog.Logger
}

func NewApartmentHandler(r *service.Resolver, log *slog.Logger) *ApartmentHandler {
	if r == nil {
		panic("nil resolver passed to NewApartmentHandler")
	}
	return &ApartmentHandler{Resolver: r, Log: log}
}

// ListCategories handles GET /v1/client/apartments/categories.
func (h *ApartmentHandler) ListCategories(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cats, err := h.Resolver.ListCategories(ctx)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, cats)
}

// GetCategory handles GET /v1/client/apartments/categories/:id.
func (h *ApartmentHandler) GetCategory(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cat, err := h.Resolver.Category(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, cat)
}

// Status handles GET /v1/client/apartments/:id/status.  Only reservations
// whose window covers the current instant count.
func (h *ApartmentHandler) Status(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	apt, av, err := h.Resolver.ApartmentStatus(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"apartment":   apt,
		"status":      av.Status,
		"reservation": av.Reservation,
	})
}
