package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nnomo/apartment-reservations/internal/model"
	"github.com/nnomo/apartment-reservations/internal/repository"
)

// Options holds deployment policy for the reservation service.
type Options struct {
	// AutoValidate makes submissions without an explicit status start as
	// validated instead of pending.
	AutoValidate bool
	// DefaultReminderHours seeds reminder_lead_hours when the config row is
	// created lazily.
	DefaultReminderHours int
}

// SubmitInput is the client booking payload.
type SubmitInput struct {
	LastName        string    `json:"last_name"`
	FirstName       string    `json:"first_name"`
	Phone           string    `json:"phone" validate:"omitempty,max=40"`
	Email           string    `json:"email" validate:"omitempty,email"`
	Gender          string    `json:"gender" validate:"omitempty,oneof=Homme Femme"`
	Motive          string    `json:"motive"`
	StayType        string    `json:"stay_type" validate:"omitempty,oneof=nuit journalier"`
	CategoryID      string    `json:"category_id" validate:"omitempty,uuid"`
	ApartmentID     string    `json:"apartment_id" validate:"required,uuid"`
	Characteristics string    `json:"characteristics"`
	Duration        int       `json:"duration" validate:"gte=0"`
	Period          string    `json:"period"`
	StartAt         time.Time `json:"start_at" validate:"required"`
	EndAt           time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
	TotalPrice      float64   `json:"total_price" validate:"gte=0"`
	Status          string    `json:"status"`
	ExtraStays      int       `json:"extra_stays" validate:"gte=0"`
}

// ConfigPatch carries the fields an admin may change.  Nil fields are left
// untouched.
type ConfigPatch struct {
	ReservationsActive *bool `json:"reservations_active"`
}

// ReservationService enforces the reservation lifecycle and emits a live
// event on every transition.
type ReservationService struct {
	reservations ReservationStore
	configs      ConfigStore
	events       EventSink
	receipts     ReceiptRenderer
	opts         Options
	log          *slog.Logger
}

// NewReservationService wires the service.  events and receipts may be nil.
func NewReservationService(reservations ReservationStore, configs ConfigStore, events EventSink, receipts ReceiptRenderer, opts Options, log *slog.Logger) *ReservationService {
	if reservations == nil || configs == nil {
		panic("nil store passed to NewReservationService")
	}
	if events == nil {
		events = NopSink{}
	}
	if log == nil {
		log = slog.Default()
	}
	if opts.DefaultReminderHours <= 0 {
		opts.DefaultReminderHours = model.DefaultReminderLeadHours
	}
	return &ReservationService{
		reservations: reservations,
		configs:      configs,
		events:       events,
		receipts:     receipts,
		opts:         opts,
		log:          log.With("component", "reservations"),
	}
}

// Config returns the configuration row, creating it with defaults on first
// access.
func (s *ReservationService) Config(ctx context.Context) (*model.ReservationConfig, error) {
	cfg, err := s.configs.Find(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load reservation config: %w", err)
	}
	cfg, err = s.configs.Ensure(ctx, model.ReservationConfig{
		ReservationsActive: true,
		ReminderLeadHours:  s.opts.DefaultReminderHours,
	})
	if err != nil {
		return nil, fmt.Errorf("create reservation config: %w", err)
	}
	return cfg, nil
}

// UpdateConfig merges patch into the configuration, persists it and
// notifies observers.
func (s *ReservationService) UpdateConfig(ctx context.Context, patch ConfigPatch) (*model.ReservationConfig, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	if patch.ReservationsActive != nil {
		cfg.ReservationsActive = *patch.ReservationsActive
	}
	if err := s.configs.Update(ctx, cfg); err != nil {
		return nil, fmt.Errorf("save reservation config: %w", err)
	}
	s.publish(ctx, EventConfigChanged, ConfigEvent{ReservationsActive: cfg.ReservationsActive})
	return cfg, nil
}

// Submit books an apartment on behalf of a client.  It is rejected with
// ErrServiceDisabled while the gate is off, in which case nothing is
// persisted.
func (s *ReservationService) Submit(ctx context.Context, in SubmitInput) (*model.Reservation, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.ReservationsActive {
		return nil, ErrServiceDisabled
	}
	if strings.TrimSpace(in.ApartmentID) == "" {
		return nil, fmt.Errorf("%w: apartment_id is required", ErrValidation)
	}
	if !in.EndAt.After(in.StartAt) {
		return nil, fmt.Errorf("%w: end_at must be after start_at", ErrValidation)
	}
	status := in.Status
	switch status {
	case "":
		status = model.StatusPending
		if s.opts.AutoValidate {
			status = model.StatusValidated
		}
	case model.StatusPending, model.StatusValidated:
	default:
		return nil, ErrInvalidStatus
	}

	res := &model.Reservation{
		ID:              uuid.NewString(),
		LastName:        in.LastName,
		FirstName:       in.FirstName,
		Phone:           strings.TrimSpace(in.Phone),
		Email:           strings.TrimSpace(in.Email),
		Gender:          in.Gender,
		Motive:          in.Motive,
		StayType:        in.StayType,
		CategoryID:      in.CategoryID,
		ApartmentID:     in.ApartmentID,
		Characteristics: in.Characteristics,
		Duration:        in.Duration,
		Period:          in.Period,
		StartAt:         in.StartAt.UTC(),
		EndAt:           in.EndAt.UTC(),
		TotalPrice:      in.TotalPrice,
		Status:          status,
		ExtraStays:      in.ExtraStays,
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown apartment or category", ErrValidation)
		}
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	s.publish(ctx, EventReservationValidated, ReservationEvent{
		ApartmentID:   res.ApartmentID,
		ReservationID: res.ID,
		Status:        res.Status,
	})
	return res, nil
}

// SetStatus overwrites the status of a reservation.  Any lifecycle status
// may follow any other; setting the current status again is a no-op write
// that still emits an event.
func (s *ReservationService) SetStatus(ctx context.Context, id, status string) (*model.Reservation, error) {
	if !model.IsStatus(status) {
		return nil, ErrInvalidStatus
	}
	res, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reservations.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update reservation status: %w", err)
	}
	res.Status = status

	name := EventReservationStatusChanged
	if status == model.StatusValidated {
		name = EventReservationValidated
	}
	s.publish(ctx, name, ReservationEvent{
		ApartmentID:   res.ApartmentID,
		ReservationID: res.ID,
		Status:        res.Status,
	})
	return res, nil
}

// Remove hard-deletes a reservation.
func (s *ReservationService) Remove(ctx context.Context, id string) error {
	res, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reservations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete reservation: %w", err)
	}
	s.publish(ctx, EventReservationRemoved, ReservationEvent{
		ApartmentID:   res.ApartmentID,
		ReservationID: res.ID,
	})
	return nil
}

// List returns every reservation, newest first, for the admin dashboard.
func (s *ReservationService) List(ctx context.Context) ([]model.ReservationDetail, error) {
	return s.reservations.ListDetailed(ctx, repository.ReservationFilter{})
}

// Lookup returns the reservations matching a client's phone and/or email.
// At least one of them is required.
func (s *ReservationService) Lookup(ctx context.Context, phone, email string) ([]model.ReservationDetail, error) {
	phone, email = strings.TrimSpace(phone), strings.TrimSpace(email)
	if phone == "" && email == "" {
		return nil, fmt.Errorf("%w: phone or email is required", ErrValidation)
	}
	return s.reservations.ListDetailed(ctx, repository.ReservationFilter{Phone: phone, Email: email})
}

// Receipt renders the receipt of a reservation, records its path and
// returns it.
func (s *ReservationService) Receipt(ctx context.Context, id string) (string, error) {
	if s.receipts == nil {
		return "", errors.New("receipt renderer not configured")
	}
	det, err := s.reservations.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	path, err := s.receipts.Render(det)
	if err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	if err := s.reservations.SetReceiptPath(ctx, id, path); err != nil {
		return "", fmt.Errorf("save receipt path: %w", err)
	}
	return path, nil
}

func (s *ReservationService) get(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load reservation: %w", err)
	}
	return res, nil
}

// publish forwards an event; sink failures are logged and never surface
// to the caller.
func (s *ReservationService) publish(ctx context.Context, name string, payload any) {
	if err := s.events.Publish(ctx, name, payload); err != nil {
		s.log.Warn("event publish failed", "event", name, "error", err)
	}
}
