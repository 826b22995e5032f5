package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nnomo/apartment-reservations/internal/model"
)

// ReservationRepo provides CRUD operations for apartment reservations.
// All timestamp fields are stored and compared in UTC.  Ordering is always
// newest first: the availability resolver relies on created_at DESC to pick
// the authoritative row when several reservations overlap.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationFilter narrows List and ListDetailed.  Zero values are ignored.
type ReservationFilter struct {
	ApartmentID   string
	Statuses      []string
	CoversAt      *time.Time // start_at <= t AND end_at >= t
	EndsAtOrAfter *time.Time // end_at >= t
	Phone         string
	Email         string
	Limit         int
}

const reservationColumns = `r.id, r.last_name, r.first_name, r.phone, r.email, r.gender, r.motive,
	   r.stay_type, COALESCE(r.category_id, ''), r.apartment_id, r.characteristics, r.duration, r.period,
	   r.start_at, r.end_at, r.total_price, r.status, r.receipt_path, r.extra_stays,
	   r.reminder_sent, r.created_at, r.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner, extra ...any) (model.Reservation, error) {
	var res model.Reservation
	var receipt sql.NullString
	dest := []any{
		&res.ID, &res.LastName, &res.FirstName, &res.Phone, &res.Email, &res.Gender, &res.Motive,
		&res.StayType, &res.CategoryID, &res.ApartmentID, &res.Characteristics, &res.Duration, &res.Period,
		&res.StartAt, &res.EndAt, &res.TotalPrice, &res.Status, &receipt, &res.ExtraStays,
		&res.ReminderSent, &res.CreatedAt, &res.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return res, err
	}
	if receipt.Valid {
		p := receipt.String
		res.ReceiptPath = &p
	}
	return res, nil
}

// Create inserts a reservation.  The caller supplies the ID; timestamps
// are read back from the database so the record is fully populated.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (id, last_name, first_name, phone, email, gender, motive,
		stay_type, category_id, apartment_id, characteristics, duration, period,
		start_at, end_at, total_price, status, extra_stays)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		res.ID, res.LastName, res.FirstName, res.Phone, res.Email, res.Gender, res.Motive,
		res.StayType, nullIfEmpty(res.CategoryID), res.ApartmentID, res.Characteristics, res.Duration, res.Period,
		res.StartAt.UTC(), res.EndAt.UTC(), res.TotalPrice, res.Status, res.ExtraStays,
	)
	if err != nil {
		if mysqlErrNumber(err) == mysqlNoReferencedRow {
			return fmt.Errorf("reservation references unknown apartment or category: %w", ErrNotFound)
		}
		return err
	}
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// GetByID returns a reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetDetail returns a reservation joined with its apartment and category
// names, or ErrNotFound.
func (r *ReservationRepo) GetDetail(ctx context.Context, id string) (*model.ReservationDetail, error) {
	q := `SELECT ` + reservationColumns + `, COALESCE(a.name, ''), COALESCE(c.name, '')
		  FROM reservations r
		  LEFT JOIN apartments a ON a.id = r.apartment_id
		  LEFT JOIN apartment_categories c ON c.id = r.category_id
		  WHERE r.id = ?`
	var det model.ReservationDetail
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id), &det.ApartmentName, &det.CategoryName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	det.Reservation = res
	return &det, nil
}

// buildWhere translates a filter into a WHERE clause and its arguments.
func (f ReservationFilter) buildWhere() (string, []any) {
	var conds []string
	var args []any
	if f.ApartmentID != "" {
		conds = append(conds, "r.apartment_id = ?")
		args = append(args, f.ApartmentID)
	}
	if len(f.Statuses) > 0 {
		conds = append(conds, "r.status IN (?"+strings.Repeat(", ?", len(f.Statuses)-1)+")")
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	if f.CoversAt != nil {
		conds = append(conds, "r.start_at <= ? AND r.end_at >= ?")
		args = append(args, f.CoversAt.UTC(), f.CoversAt.UTC())
	}
	if f.EndsAtOrAfter != nil {
		conds = append(conds, "r.end_at >= ?")
		args = append(args, f.EndsAtOrAfter.UTC())
	}
	if f.Phone != "" {
		conds = append(conds, "r.phone = ?")
		args = append(args, f.Phone)
	}
	if f.Email != "" {
		conds = append(conds, "r.email = ?")
		args = append(args, f.Email)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	return where, args
}

func (f ReservationFilter) tail() string {
	s := " ORDER BY r.created_at DESC, r.id DESC"
	if f.Limit > 0 {
		s += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	return s
}

// List returns reservations matching the filter, newest first.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	where, args := f.buildWhere()
	q := `SELECT ` + reservationColumns + ` FROM reservations r` + where + f.tail()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListDetailed is List joined with apartment and category names.
func (r *ReservationRepo) ListDetailed(ctx context.Context, f ReservationFilter) ([]model.ReservationDetail, error) {
	where, args := f.buildWhere()
	q := `SELECT ` + reservationColumns + `, COALESCE(a.name, ''), COALESCE(c.name, '')
		  FROM reservations r
		  LEFT JOIN apartments a ON a.id = r.apartment_id
		  LEFT JOIN apartment_categories c ON c.id = r.category_id` + where + f.tail()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ReservationDetail, 0)
	for rows.Next() {
		var det model.ReservationDetail
		res, err := scanReservation(rows, &det.ApartmentName, &det.CategoryName)
		if err != nil {
			return nil, err
		}
		det.Reservation = res
		out = append(out, det)
	}
	return out, rows.Err()
}

// UpdateStatus overwrites the status of a reservation.  Existence is the
// caller's concern: MySQL reports zero affected rows when the value does
// not change, so RowsAffected cannot distinguish "missing" from "same".
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	const q = `UPDATE reservations SET status = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, status, id)
	return err
}

// MarkReminderSent sets the reminder flag.  The flag is never cleared.
func (r *ReservationRepo) MarkReminderSent(ctx context.Context, id string) error {
	const q = `UPDATE reservations SET reminder_sent = TRUE WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// SetReceiptPath records the last rendered receipt file.
func (r *ReservationRepo) SetReceiptPath(ctx context.Context, id, path string) error {
	const q = `UPDATE reservations SET receipt_path = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, path, id)
	return err
}

// Delete hard-deletes a reservation.  It returns ErrNotFound when no row
// was removed.
func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM reservations WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
