package router

import (
	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/handler"
	"github.com/nnomo/apartment-reservations/internal/middleware"
	"github.com/nnomo/apartment-reservations/internal/model"
)

var adminRoles = []string{model.RoleSuperAdmin, model.RoleSecondaryAdmin}

// RegisterAdmin registers dashboard endpoints under /v1/admin.  Every route
// requires an admin token; each one is further gated on a privilege in the
// apartments section.  The reservation config is superadmin only.
func RegisterAdmin(e *echo.Echo, r *handler.ReservationHandler, cat *handler.CatalogHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(adminRoles...),
	)
	read := middleware.RequirePrivilege(model.PrivRead, model.SectionApartments)
	write := middleware.RequirePrivilege(model.PrivWrite, model.SectionApartments)
	update := middleware.RequirePrivilege(model.PrivUpdate, model.SectionApartments)
	del := middleware.RequirePrivilege(model.PrivDelete, model.SectionApartments)

	// ---- Reservations ----
	g.GET("/reservations", r.List, read)
	g.PATCH("/reservations/:id/status", r.SetStatus, update)
	g.PUT("/reservations/:id/status", r.SetStatus, update) // alias for clients that use PUT
	g.DELETE("/reservations/:id", r.Delete, del)

	// ---- Config ----
	super := middleware.RequireRole(model.RoleSuperAdmin)
	g.GET("/reservation-config", r.Config, super)
	g.PUT("/reservation-config", r.UpdateConfig, super)

	// ---- Categories ----
	g.GET("/categories", cat.ListCategories, read)
	g.POST("/categories", cat.CreateCategory, write)
	g.PUT("/categories/:id", cat.UpdateCategory, update)
	g.DELETE("/categories/:id", cat.DeleteCategory, del)

	// ---- Apartments ----
	g.GET("/apartments", cat.ListApartments, read)
	g.POST("/apartments", cat.CreateApartment, write)
	g.PUT("/apartments/:id", cat.UpdateApartment, update)
	g.DELETE("/apartments/:id", cat.DeleteApartment, del)
}
