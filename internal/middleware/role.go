package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/model"
	"github.com/nnomo/apartment-reservations/internal/utils"
)

// RequireRole returns a middleware function that enforces that the
// authenticated admin has one of the specified roles.  It assumes JWTAuth
// has stored the role in the context under the key "role".
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequirePrivilege gates a route on a privilege within a section.  A
// superadmin passes every gate.  A secondary admin must be active and hold
// both the section and the privilege.  Any other role is refused.
func RequirePrivilege(privilege, section string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := Claims(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}
			if !HasPrivilege(claims, privilege, section) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "insufficient privileges",
					"required": echo.Map{"privilege": privilege, "section": section},
				})
			}
			return next(c)
		}
	}
}

// HasPrivilege reports whether claims grant privilege in section.
func HasPrivilege(claims utils.AdminClaims, privilege, section string) bool {
	switch claims.Role {
	case model.RoleSuperAdmin:
		return true
	case model.RoleSecondaryAdmin:
		if claims.Status != model.AdminActive {
			return false
		}
		return holds(claims.Sections, section) && holds(claims.Privileges, privilege)
	}
	return false
}

func holds(list []string, want string) bool {
	for _, v := range list {
		if v == want || v == model.PrivAll {
			return true
		}
	}
	return false
}
