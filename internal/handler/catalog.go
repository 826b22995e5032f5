package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nnomo/apartment-reservations/internal/model"
)

// CatalogStore is satisfied by *repository.ApartmentRepo.
type CatalogStore interface {
	CreateCategory(ctx context.Context, c *model.Category) error
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
	CreateApartment(ctx context.Context, a *model.Apartment) error
	GetApartment(ctx context.Context, id string) (*model.Apartment, error)
	ListApartments(ctx context.Context, categoryID string) ([]model.Apartment, error)
	UpdateApartment(ctx context.Context, a *model.Apartment) error
	DeleteApartment(ctx context.Context, id string) error
}

// CatalogHandler manages categories and apartments for admins.
type CatalogHandler struct {
	Store CatalogStore
	Log   *slog.Logger
}

func NewCatalogHandler(store CatalogStore, log *slog.Logger) *CatalogHandler {
	if store == nil {
		panic("nil store passed to NewCatalogHandler")
	}
	return &CatalogHandler{Store: store, Log: log}
}

type categoryReq struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	Tier        string  `json:"tier" validate:"required,oneof='haut standing premium' 'standing ultra luxueux VIP'"`
	PhotoURL    *string `json:"photo_url" validate:"omitempty,max=512"`
}

type apartmentReq struct {
	CategoryID  string   `json:"category_id" validate:"required,uuid"`
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description"`
	Position    int      `json:"position" validate:"gte=0"`
	NightPrice  *float64 `json:"night_price" validate:"omitempty,gte=0"`
	DayPrice    *float64 `json:"day_price" validate:"omitempty,gte=0"`
	PhotoURL    *string  `json:"photo_url" validate:"omitempty,max=512"`
}

// ----- categories -----

// ListCategories handles GET /v1/admin/categories.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Store.ListCategories(ctx)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// CreateCategory handles POST /v1/admin/categories.
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	cat := &model.Category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Tier:        req.Tier,
		PhotoURL:    req.PhotoURL,
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.CreateCategory(ctx, cat); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

// UpdateCategory handles PUT /v1/admin/categories/:id.
func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	var req categoryReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	cat := &model.Category{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Tier:        req.Tier,
		PhotoURL:    req.PhotoURL,
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.UpdateCategory(ctx, cat); err != nil {
		return writeError(c, h.Log, err)
	}
	updated, err := h.Store.GetCategory(ctx, cat.ID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteCategory handles DELETE /v1/admin/categories/:id.  Categories that
// still hold apartments yield 409.
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.DeleteCategory(ctx, c.Param("id")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- apartments -----

// ListApartments handles GET /v1/admin/apartments?category_id=.
func (h *CatalogHandler) ListApartments(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Store.ListApartments(ctx, c.QueryParam("category_id"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (req apartmentReq) apartment(id string) *model.Apartment {
	return &model.Apartment{
		ID:          id,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Position:    req.Position,
		NightPrice:  req.NightPrice,
		DayPrice:    req.DayPrice,
		PhotoURL:    req.PhotoURL,
	}
}

// CreateApartment handles POST /v1/admin/apartments.  The category must
// exist.
func (h *CatalogHandler) CreateApartment(c echo.Context) error {
	var req apartmentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	apt := req.apartment(uuid.NewString())
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.CreateApartment(ctx, apt); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, apt)
}

// UpdateApartment handles PUT /v1/admin/apartments/:id.
func (h *CatalogHandler) UpdateApartment(c echo.Context) error {
	var req apartmentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	apt := req.apartment(c.Param("id"))
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.UpdateApartment(ctx, apt); err != nil {
		return writeError(c, h.Log, err)
	}
	updated, err := h.Store.GetApartment(ctx, apt.ID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteApartment handles DELETE /v1/admin/apartments/:id.
func (h *CatalogHandler) DeleteApartment(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.DeleteApartment(ctx, c.Param("id")); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
