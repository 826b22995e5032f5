package handler // handler contains the HTTP handlers of the reservation API

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/repository"
	"github.com/nnomo/apartment-reservations/internal/service"
)

// requestTimeout bounds every store call made on behalf of a request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// Validator adapts validator/v10 to echo.Validator so handlers can call
// c.Validate on bound payloads.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator using struct `validate` tags.
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// bindValid binds the request body into dst and validates it.  On failure
// the 400 response is already written and ok is false.
func bindValid(c echo.Context, dst interface{}) (ok bool, err error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}
	return true, nil
}

// validationMessage flattens validator errors into "field: tag" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += ", "
		}
		msg += fe.Field() + ": " + fe.Tag()
	}
	return msg
}

// writeError maps service and repository errors onto HTTP responses.
// Unexpected errors are logged and hidden behind a generic message.
func writeError(c echo.Context, log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrServiceDisabled):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "le service de réservation est désactivé"})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "resource is still referenced"})
	}
	if log == nil {
		log = slog.Default()
	}
	log.Error("request failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
