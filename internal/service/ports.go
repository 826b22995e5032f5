package service

import (
	"context"
	"time"

	"github.com/nnomo/apartment-reservations/internal/model"
	"github.com/nnomo/apartment-reservations/internal/repository"
)

// Clock returns the current time.  Tests inject a fixed clock.
type Clock func() time.Time

// ReservationStore is the persistence contract for reservations.  It is
// satisfied by *repository.ReservationRepo.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetDetail(ctx context.Context, id string) (*model.ReservationDetail, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error)
	ListDetailed(ctx context.Context, f repository.ReservationFilter) ([]model.ReservationDetail, error)
	UpdateStatus(ctx context.Context, id, status string) error
	MarkReminderSent(ctx context.Context, id string) error
	SetReceiptPath(ctx context.Context, id, path string) error
	Delete(ctx context.Context, id string) error
}

// ConfigStore persists the reservation configuration singleton.  Find
// returns repository.ErrNotFound when the row was never created.
type ConfigStore interface {
	Find(ctx context.Context) (*model.ReservationConfig, error)
	Ensure(ctx context.Context, defaults model.ReservationConfig) (*model.ReservationConfig, error)
	Update(ctx context.Context, c *model.ReservationConfig) error
}

// ApartmentStore is the read side of apartments and categories.
type ApartmentStore interface {
	GetApartment(ctx context.Context, id string) (*model.Apartment, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListApartments(ctx context.Context, categoryID string) ([]model.Apartment, error)
}

// Mailer dispatches one email.  Failures are independent per call.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ReceiptRenderer renders a reservation receipt and returns the file path.
type ReceiptRenderer interface {
	Render(det *model.ReservationDetail) (string, error)
}
