package handler

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/service"
)

// ReservationHandler exposes the reservation lifecycle to clients and to
// the admin dashboard.  Authorization is enforced by route middleware.
type ReservationHandler struct {
	Svc *service.ReservationService
	Log *slog.Logger
}

func NewReservationHandler(svc *service.ReservationService, log *slog.Logger) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc, Log: log}
}

// ----- client -----

// Submit handles POST /v1/client/reservations.
func (h *ReservationHandler) Submit(c echo.Context) error {
	var in service.SubmitInput
	if ok, err := bindValid(c, &in); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.Submit(ctx, in)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Lookup handles GET /v1/client/reservations?phone=&email=.
func (h *ReservationHandler) Lookup(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Svc.Lookup(ctx, c.QueryParam("phone"), c.QueryParam("email"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Receipt handles GET /v1/client/reservations/:id/receipt.  The PDF is
// rendered on every call so it reflects the current status.
func (h *ReservationHandler) Receipt(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	path, err := h.Svc.Receipt(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.Attachment(path, filepath.Base(path))
}

// Config handles GET /v1/client/reservation-config.
func (h *ReservationHandler) Config(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cfg, err := h.Svc.Config(ctx)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// ----- admin -----

type statusReq struct {
	Status string `json:"status" validate:"required"`
}

// List handles GET /v1/admin/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Svc.List(ctx)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// SetStatus handles PATCH /v1/admin/reservations/:id/status.
func (h *ReservationHandler) SetStatus(c echo.Context) error {
	var req statusReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.SetStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /v1/admin/reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.Remove(ctx, c.Param("id")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateConfig handles PUT /v1/admin/reservation-config (superadmin only).
func (h *ReservationHandler) UpdateConfig(c echo.Context) error {
	var patch service.ConfigPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if patch.ReservationsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservations_active is required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cfg, err := h.Svc.UpdateConfig(ctx, patch)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, cfg)
}
