package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnomo/apartment-reservations/internal/model"
)

var ts = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var reservationCols = []string{
	"id", "last_name", "first_name", "phone", "email", "gender", "motive",
	"stay_type", "category_id", "apartment_id", "characteristics", "duration", "period",
	"start_at", "end_at", "total_price", "status", "receipt_path", "extra_stays",
	"reminder_sent", "created_at", "updated_at",
}

func reservationRow(id, apt, status string, created time.Time) []driver.Value {
	return []driver.Value{
		id, "Essomba", "Paul", "+237699000000", "paul@example.com", "Homme", "",
		"nuit", "c1", apt, "", 2, "nuits",
		ts, ts.Add(48 * time.Hour), 90000.0, status, nil, 0,
		false, created, created,
	}
}

func TestReservationCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	res := &model.Reservation{ID: "r1", ApartmentID: "A", Status: model.StatusPending, StartAt: ts, EndAt: ts.Add(time.Hour)}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs("r1", "", "", "", "", "", "", "", nil, "A", "", 0, "", ts, ts.Add(time.Hour), 0.0, model.StatusPending, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at FROM reservations WHERE id = ?")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts, ts))

	require.NoError(t, repo.Create(context.Background(), res))
	assert.Equal(t, ts, res.CreatedAt)
}

func TestReservationCreateUnknownApartment(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"})

	err := repo.Create(context.Background(), &model.Reservation{ID: "r1", ApartmentID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations r WHERE r.id = ?")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(reservationRow("r1", "A", model.StatusValidated, ts)...))
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations r WHERE r.id = ?")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	res, err := repo.GetByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusValidated, res.Status)
	assert.Equal(t, "c1", res.CategoryID)
	assert.Nil(t, res.ReceiptPath)

	_, err = repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationListFilter(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	at := ts.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM reservations r WHERE r.apartment_id = ? AND r.status IN (?, ?) AND r.start_at <= ? AND r.end_at >= ? ORDER BY r.created_at DESC, r.id DESC LIMIT 1")).
		WithArgs("A", model.StatusValidated, model.StatusOccupied, at, at).
		WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(reservationRow("r2", "A", model.StatusOccupied, ts.Add(time.Minute))...))

	rows, err := repo.List(context.Background(), ReservationFilter{
		ApartmentID: "A",
		Statuses:    model.ActiveStatuses,
		CoversAt:    &at,
		Limit:       1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r2", rows[0].ID)
}

func TestReservationListSweepCandidates(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.status IN (?, ?) AND r.end_at >= ? ORDER BY r.created_at DESC")).
		WithArgs(model.StatusValidated, model.StatusOccupied, ts).
		WillReturnRows(sqlmock.NewRows(reservationCols))

	rows, err := repo.List(context.Background(), ReservationFilter{Statuses: model.ActiveStatuses, EndsAtOrAfter: &ts})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestReservationListDetailed(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	cols := append(append([]string{}, reservationCols...), "apartment_name", "category_name")
	row := append(reservationRow("r1", "A", model.StatusPending, ts), "A-12", "VIP")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN apartment_categories c ON c.id = r.category_id WHERE r.phone = ? AND r.email = ?")).
		WithArgs("111", "a@x.cm").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(row...))

	got, err := repo.ListDetailed(context.Background(), ReservationFilter{Phone: "111", Email: "a@x.cm"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A-12", got[0].ApartmentName)
	assert.Equal(t, "VIP", got[0].CategoryName)
}

func TestReservationUpdates(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = ? WHERE id = ?")).
		WithArgs(model.StatusCancelled, "r1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET reminder_sent = TRUE WHERE id = ?")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET receipt_path = ? WHERE id = ?")).
		WithArgs("receipts/recu-r1.pdf", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "r1", model.StatusCancelled))
	require.NoError(t, repo.MarkReminderSent(context.Background(), "r1"))
	require.NoError(t, repo.SetReceiptPath(context.Background(), "r1", "receipts/recu-r1.pdf"))
}

func TestReservationDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE id = ?")).
		WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations WHERE id = ?")).
		WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "r1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "r1"), ErrNotFound)
}

func TestConfigFindEnsureUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewConfigRepo(db)
	cols := []string{"id", "reservations_active", "reminder_lead_hours", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservation_configs WHERE id = ?")).
		WithArgs(model.ReservationConfigID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO reservation_configs")).
		WithArgs(model.ReservationConfigID, true, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservation_configs WHERE id = ?")).
		WithArgs(model.ReservationConfigID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(model.ReservationConfigID, true, 5, ts, ts))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservation_configs SET reservations_active = ?, reminder_lead_hours = ? WHERE id = ?")).
		WithArgs(false, 5, model.ReservationConfigID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := repo.Find(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	cfg, err := repo.Ensure(context.Background(), model.ReservationConfig{ReservationsActive: true, ReminderLeadHours: 5})
	require.NoError(t, err)
	assert.True(t, cfg.ReservationsActive)

	cfg.ReservationsActive = false
	require.NoError(t, repo.Update(context.Background(), cfg))
}

func TestCategoryDeleteConflicts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApartmentRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM apartment_categories WHERE id = ?")).
		WithArgs("c1").
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "row is referenced"})
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM apartment_categories WHERE id = ?")).
		WithArgs("c2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteCategory(context.Background(), "c1"), ErrConflict)
	assert.ErrorIs(t, repo.DeleteCategory(context.Background(), "c2"), ErrNotFound)
}

func TestListApartmentsOrdering(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApartmentRepo(db)
	cols := []string{"id", "category_id", "name", "description", "position", "night_price", "day_price", "photo_url", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM apartments WHERE category_id = ? ORDER BY position ASC, created_at DESC")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a1", "c1", "A-1", "", 1, 45000.0, nil, nil, ts, ts).
			AddRow("a2", "c1", "A-2", "", 2, nil, 20000.0, "/img/a2.jpg", ts, ts))

	got, err := repo.ListApartments(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].NightPrice)
	assert.Equal(t, 45000.0, *got[0].NightPrice)
	assert.Nil(t, got[0].DayPrice)
	require.NotNil(t, got[1].PhotoURL)
	assert.Equal(t, "/img/a2.jpg", *got[1].PhotoURL)
}

func TestCreateApartmentUnknownCategory(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApartmentRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO apartments")).
		WillReturnError(&mysql.MySQLError{Number: 1452})

	err := repo.CreateApartment(context.Background(), &model.Apartment{ID: "a1", CategoryID: "ghost", Name: "A-1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAdminRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admins")).
		WithArgs("adm-1", "Ndiaye", "Awa", "awa@nnomo.cm", "hash", "", model.RoleSuperAdmin, []byte("[]"), []byte("[]"), model.AdminActive).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), &model.Admin{
		ID: "adm-1", LastName: "Ndiaye", FirstName: "Awa", Email: " Awa@NNOMO.cm ",
		PasswordHash: "hash", Role: model.RoleSuperAdmin,
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAdminGetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAdminRepo(db)
	cols := []string{"id", "last_name", "first_name", "email", "password_hash", "gender", "role", "privileges", "sections", "status", "last_login_at", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE email=?")).
		WithArgs("awa@nnomo.cm").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"adm-2", "Ndiaye", "Awa", "awa@nnomo.cm", "hash", "Femme", model.RoleSecondaryAdmin,
			[]byte(`["READ","UPDATE"]`), []byte(`["apartments"]`), model.AdminActive, nil, ts, ts))
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE email=?")).
		WithArgs("ghost@nnomo.cm").
		WillReturnError(sql.ErrNoRows)

	a, err := repo.GetByEmail(context.Background(), "AWA@nnomo.cm")
	require.NoError(t, err)
	assert.Equal(t, []string{"READ", "UPDATE"}, a.Privileges)
	assert.Equal(t, []string{"apartments"}, a.Sections)
	assert.Nil(t, a.LastLoginAt)

	_, err = repo.GetByEmail(context.Background(), "ghost@nnomo.cm")
	assert.ErrorIs(t, err, ErrNotFound)
}
