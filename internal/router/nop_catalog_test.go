package router

import (
	"context"

	"github.com/nnomo/apartment-reservations/internal/model"
)

type nopCatalog struct{}

func (nopCatalog) CreateCategory(context.Context, *model.Category) error { return nil }
func (nopCatalog) GetCategory(context.Context, string) (*model.Category, error) {
	return &model.Category{}, nil
}
func (nopCatalog) ListCategories(context.Context) ([]model.Category, error) { return nil, nil }
func (nopCatalog) UpdateCategory(context.Context, *model.Category) error    { return nil }
func (nopCatalog) DeleteCategory(context.Context, string) error              { return nil }
func (nopCatalog) CreateApartment(context.Context, *model.Apartment) error   { return nil }
func (nopCatalog) GetApartment(context.Context, string) (*model.Apartment, error) {
	return &model.Apartment{}, nil
}
func (nopCatalog) ListApartments(context.Context, string) ([]model.Apartment, error) { return nil, nil }
func (nopCatalog) UpdateApartment(context.Context, *model.Apartment) error            { return nil }
func (nopCatalog) DeleteApartment(context.Context, string) error                      { return nil }
