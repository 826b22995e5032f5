package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nnomo/apartment-reservations/internal/model"
)

// ApartmentRepo encapsulates queries over apartment_categories and
// apartments.  Apartments reference their category with a foreign key,
// so deleting a non-empty category yields ErrConflict.
type ApartmentRepo struct {
	db *sql.DB
}

// NewApartmentRepo constructs an ApartmentRepo given a DB handle.
func NewApartmentRepo(db *sql.DB) *ApartmentRepo { return &ApartmentRepo{db: db} }

const categoryColumns = `id, name, description, tier, photo_url, created_at, updated_at`

func scanCategory(s rowScanner) (model.Category, error) {
	var c model.Category
	var photo sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &c.Description, &c.Tier, &photo, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}
	if photo.Valid {
		p := photo.String
		c.PhotoURL = &p
	}
	return c, nil
}

// CreateCategory inserts a category with a caller supplied ID.
func (r *ApartmentRepo) CreateCategory(ctx context.Context, c *model.Category) error {
	const q = `INSERT INTO apartment_categories (id, name, description, tier, photo_url) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Description, c.Tier, c.PhotoURL); err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM apartment_categories WHERE id = ?`, c.ID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

// GetCategory returns a category or ErrNotFound.
func (r *ApartmentRepo) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM apartment_categories WHERE id = ?`
	c, err := scanCategory(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCategories returns every category, newest first.
func (r *ApartmentRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM apartment_categories ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCategory overwrites the mutable fields of a category.  It returns
// ErrNotFound when the category does not exist.
func (r *ApartmentRepo) UpdateCategory(ctx context.Context, c *model.Category) error {
	if _, err := r.GetCategory(ctx, c.ID); err != nil {
		return err
	}
	const q = `UPDATE apartment_categories SET name = ?, description = ?, tier = ?, photo_url = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, c.Name, c.Description, c.Tier, c.PhotoURL, c.ID)
	return err
}

// DeleteCategory removes an empty category.
func (r *ApartmentRepo) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM apartment_categories WHERE id = ?`, id)
	if err != nil {
		if mysqlErrNumber(err) == mysqlRowIsReferenced {
			return ErrConflict
		}
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

const apartmentColumns = `id, category_id, name, description, position, night_price, day_price, photo_url, created_at, updated_at`

func scanApartment(s rowScanner) (model.Apartment, error) {
	var a model.Apartment
	var night, day sql.NullFloat64
	var photo sql.NullString
	if err := s.Scan(&a.ID, &a.CategoryID, &a.Name, &a.Description, &a.Position, &night, &day, &photo, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return a, err
	}
	if night.Valid {
		v := night.Float64
		a.NightPrice = &v
	}
	if day.Valid {
		v := day.Float64
		a.DayPrice = &v
	}
	if photo.Valid {
		p := photo.String
		a.PhotoURL = &p
	}
	return a, nil
}

// CreateApartment inserts an apartment.  An unknown category yields
// ErrNotFound.
func (r *ApartmentRepo) CreateApartment(ctx context.Context, a *model.Apartment) error {
	const q = `INSERT INTO apartments (id, category_id, name, description, position, night_price, day_price, photo_url)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, a.ID, a.CategoryID, a.Name, a.Description, a.Position, a.NightPrice, a.DayPrice, a.PhotoURL); err != nil {
		if mysqlErrNumber(err) == mysqlNoReferencedRow {
			return ErrNotFound
		}
		return err
	}
	return r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM apartments WHERE id = ?`, a.ID).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

// GetApartment returns an apartment or ErrNotFound.
func (r *ApartmentRepo) GetApartment(ctx context.Context, id string) (*model.Apartment, error) {
	q := `SELECT ` + apartmentColumns + ` FROM apartments WHERE id = ?`
	a, err := scanApartment(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListApartments returns apartments ordered for display (position, then
// newest).  An empty categoryID lists every apartment.
func (r *ApartmentRepo) ListApartments(ctx context.Context, categoryID string) ([]model.Apartment, error) {
	q := `SELECT ` + apartmentColumns + ` FROM apartments`
	var args []any
	if categoryID != "" {
		q += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	q += ` ORDER BY position ASC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Apartment, 0)
	for rows.Next() {
		a, err := scanApartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateApartment overwrites the mutable fields of an apartment.
func (r *ApartmentRepo) UpdateApartment(ctx context.Context, a *model.Apartment) error {
	if _, err := r.GetApartment(ctx, a.ID); err != nil {
		return err
	}
	const q = `UPDATE apartments SET category_id = ?, name = ?, description = ?, position = ?,
			   night_price = ?, day_price = ?, photo_url = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, a.CategoryID, a.Name, a.Description, a.Position, a.NightPrice, a.DayPrice, a.PhotoURL, a.ID); err != nil {
		if mysqlErrNumber(err) == mysqlNoReferencedRow {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteApartment removes an apartment.  Apartments with reservations
// cannot be removed (ErrConflict).
func (r *ApartmentRepo) DeleteApartment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM apartments WHERE id = ?`, id)
	if err != nil {
		if mysqlErrNumber(err) == mysqlRowIsReferenced {
			return ErrConflict
		}
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
