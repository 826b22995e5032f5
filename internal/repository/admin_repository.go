package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nnomo/apartment-reservations/internal/model"
)

// AdminRepo mirrors the 'admins' table.
type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// Create inserts an admin.  Email is normalized; a duplicate email yields
// ErrEmailExists.
func (r *AdminRepo) Create(ctx context.Context, a *model.Admin) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	privs, err := json.Marshal(nonNil(a.Privileges))
	if err != nil {
		return err
	}
	sections, err := json.Marshal(nonNil(a.Sections))
	if err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = model.AdminActive
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO admins (id, last_name, first_name, email, password_hash, gender, role, privileges, sections, status) VALUES (?,?,?,?,?,?,?,?,?,?)",
		a.ID, a.LastName, a.FirstName, a.Email, a.PasswordHash, a.Gender, a.Role, privs, sections, a.Status)
	if err != nil {
		if mysqlErrNumber(err) == mysqlDuplicateEntry {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches an admin by normalized email.
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var a model.Admin
	var privs, sections []byte
	var last sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,last_name,first_name,email,password_hash,gender,role,privileges,sections,status,last_login_at,created_at,updated_at FROM admins WHERE email=? LIMIT 1",
		email).Scan(&a.ID, &a.LastName, &a.FirstName, &a.Email, &a.PasswordHash, &a.Gender, &a.Role,
		&privs, &sections, &a.Status, &last, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(privs) > 0 {
		if err := json.Unmarshal(privs, &a.Privileges); err != nil {
			return nil, err
		}
	}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &a.Sections); err != nil {
			return nil, err
		}
	}
	if last.Valid {
		t := last.Time
		a.LastLoginAt = &t
	}
	return &a, nil
}

// TouchLastLogin records a successful login.
func (r *AdminRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE admins SET last_login_at=? WHERE id=?", at.UTC(), id)
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
