package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nnomo/apartment-reservations/internal/model"
)

// ConfigRepo stores the single reservation_configs row.  The row has a fixed
// primary key so concurrent first reads cannot create two rows.
type ConfigRepo struct {
	db *sql.DB
}

// NewConfigRepo returns a ConfigRepo bound to db.
func NewConfigRepo(db *sql.DB) *ConfigRepo { return &ConfigRepo{db: db} }

// Find returns the configuration row or ErrNotFound when it was never
// created.
func (r *ConfigRepo) Find(ctx context.Context) (*model.ReservationConfig, error) {
	const q = `SELECT id, reservations_active, reminder_lead_hours, created_at, updated_at
			   FROM reservation_configs WHERE id = ?`
	var c model.ReservationConfig
	err := r.db.QueryRowContext(ctx, q, model.ReservationConfigID).Scan(
		&c.ID, &c.ReservationsActive, &c.ReminderLeadHours, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Ensure creates the row with the given defaults when it does not exist and
// returns the stored row.  An existing row is never overwritten.
func (r *ConfigRepo) Ensure(ctx context.Context, defaults model.ReservationConfig) (*model.ReservationConfig, error) {
	const q = `INSERT IGNORE INTO reservation_configs (id, reservations_active, reminder_lead_hours) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, model.ReservationConfigID, defaults.ReservationsActive, defaults.ReminderLeadHours); err != nil {
		return nil, err
	}
	return r.Find(ctx)
}

// Update persists both configurable fields.
func (r *ConfigRepo) Update(ctx context.Context, c *model.ReservationConfig) error {
	const q = `UPDATE reservation_configs SET reservations_active = ?, reminder_lead_hours = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, c.ReservationsActive, c.ReminderLeadHours, model.ReservationConfigID)
	return err
}
