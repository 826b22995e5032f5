package service

import (
	"context"
	"errors"
)

// Live event names pushed to dashboard observers.
const (
	EventReservationValidated     = "reservation_appart_validee"
	EventReservationStatusChanged = "reservation_appart_statut_change"
	EventReservationRemoved       = "reservation_appart_supprimee"
	EventConfigChanged            = "config_reservation_appart_change"
)

// ReservationEvent is the payload of every reservation event.
type ReservationEvent struct {
	ApartmentID   string `json:"apartment_id"`
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status,omitempty"`
}

// ConfigEvent is the payload of EventConfigChanged.
type ConfigEvent struct {
	ReservationsActive bool `json:"reservations_active"`
}

// EventSink publishes an event to every current subscriber.  Delivery is
// fire-and-forget: no acknowledgement and no replay for late subscribers.
type EventSink interface {
	Publish(ctx context.Context, name string, payload any) error
}

// MultiSink fans an event out to several sinks.  Every sink is tried; the
// returned error joins the individual failures.
type MultiSink []EventSink

func (m MultiSink) Publish(ctx context.Context, name string, payload any) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, name, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Publish(context.Context, string, any) error { return nil }
