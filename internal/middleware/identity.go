package middleware

// identity.go holds helpers shared across middleware files to read the
// identity JWTAuth stored in the Echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/utils"
)

// Claims returns the admin claims of the request, if authenticated.
func Claims(c echo.Context) (utils.AdminClaims, bool) {
	cl, ok := c.Get(CtxClaims).(utils.AdminClaims)
	return cl, ok
}
