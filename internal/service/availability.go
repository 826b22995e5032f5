package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nnomo/apartment-reservations/internal/model"
	"github.com/nnomo/apartment-reservations/internal/repository"
)

// Externally reported apartment statuses.  A validated reservation is
// reported as awaiting validation by the front desk; clients depend on
// this naming.
const (
	AvailabilityFree     = "libre"
	AvailabilityAwaiting = "en_attente_validation"
	AvailabilityOccupied = "occupee"
)

// Category listing statuses.
const (
	CategoryOpen  = "Ouverte"
	CategoryFull  = "Complet"
	CategoryEmpty = "Aucun appartement"
)

// Availability is the derived occupancy of one apartment.
type Availability struct {
	Status      string             `json:"status"`
	Reservation *model.Reservation `json:"reservation"`
}

// Free reports whether no active reservation blocks the apartment.
func (a Availability) Free() bool { return a.Status == AvailabilityFree }

// Resolver derives apartment occupancy from reservation rows.  It keeps no
// state between calls: every resolution re-reads the store.
type Resolver struct {
	reservations ReservationStore
	apartments   ApartmentStore
	now          Clock
}

// NewResolver builds a Resolver.  A nil clock defaults to time.Now.
func NewResolver(reservations ReservationStore, apartments ApartmentStore, now Clock) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{reservations: reservations, apartments: apartments, now: now}
}

// Resolve returns the occupancy of an apartment.  With at == nil every
// validated or occupied reservation counts regardless of its window; with
// a time only reservations whose window covers it count.  When several
// reservations qualify, the most recently created one wins.
func (r *Resolver) Resolve(ctx context.Context, apartmentID string, at *time.Time) (Availability, error) {
	rows, err := r.reservations.List(ctx, repository.ReservationFilter{
		ApartmentID: apartmentID,
		Statuses:    model.ActiveStatuses,
		CoversAt:    at,
		Limit:       1,
	})
	if err != nil {
		return Availability{}, fmt.Errorf("resolve apartment %s: %w", apartmentID, err)
	}
	if len(rows) == 0 {
		return Availability{Status: AvailabilityFree}, nil
	}
	res := rows[0]
	return Availability{Status: reportedStatus(res.Status), Reservation: &res}, nil
}

func reportedStatus(status string) string {
	switch status {
	case model.StatusValidated:
		return AvailabilityAwaiting
	case model.StatusOccupied:
		return AvailabilityOccupied
	}
	return AvailabilityFree
}

// ApartmentStatus resolves an apartment at the current instant.
func (r *Resolver) ApartmentStatus(ctx context.Context, apartmentID string) (*model.Apartment, Availability, error) {
	apt, err := r.apartments.GetApartment(ctx, apartmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Availability{}, ErrNotFound
		}
		return nil, Availability{}, err
	}
	now := r.now()
	av, err := r.Resolve(ctx, apartmentID, &now)
	if err != nil {
		return nil, Availability{}, err
	}
	return apt, av, nil
}

// ApartmentView is an apartment decorated with its derived availability.
type ApartmentView struct {
	model.Apartment
	Available         bool       `json:"available"`
	ReservationStatus *string    `json:"reservation_status"`
	OccupiedUntil     *time.Time `json:"occupied_until"`
}

// CategoryView is a category with its apartments and availability counts.
type CategoryView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Tier           string          `json:"tier"`
	PhotoURL       *string         `json:"photo_url,omitempty"`
	ApartmentCount int             `json:"apartment_count"`
	AvailableCount int             `json:"available_count"`
	Status         string          `json:"status"`
	Apartments     []ApartmentView `json:"apartments"`
}

// ListCategories returns every category with per-apartment availability.
func (r *Resolver) ListCategories(ctx context.Context) ([]CategoryView, error) {
	cats, err := r.apartments.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryView, 0, len(cats))
	for _, c := range cats {
		view, err := r.categoryView(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, *view)
	}
	return out, nil
}

// Category returns one category with per-apartment availability.
func (r *Resolver) Category(ctx context.Context, id string) (*CategoryView, error) {
	c, err := r.apartments.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.categoryView(ctx, *c)
}

func (r *Resolver) categoryView(ctx context.Context, c model.Category) (*CategoryView, error) {
	apts, err := r.apartments.ListApartments(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	view := &CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Tier:        c.Tier,
		PhotoURL:    c.PhotoURL,
		Apartments:  make([]ApartmentView, 0, len(apts)),
	}
	for _, a := range apts {
		av, err := r.Resolve(ctx, a.ID, nil)
		if err != nil {
			return nil, err
		}
		v := ApartmentView{Apartment: a, Available: av.Free()}
		if !av.Free() {
			s := av.Status
			end := av.Reservation.EndAt
			v.ReservationStatus = &s
			v.OccupiedUntil = &end
		} else {
			view.AvailableCount++
		}
		view.Apartments = append(view.Apartments, v)
	}
	view.ApartmentCount = len(view.Apartments)
	switch {
	case view.ApartmentCount == 0:
		view.Status = CategoryEmpty
	case view.AvailableCount > 0:
		view.Status = CategoryOpen
	default:
		view.Status = CategoryFull
	}
	return view, nil
}
