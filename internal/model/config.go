package model

import "time"

// ReservationConfigID is the fixed primary key of the single
// reservation_configs row.
const ReservationConfigID = "default"

// DefaultReminderLeadHours applies when the config row is absent or holds a
// non-positive lead time.
const DefaultReminderLeadHours = 5

// ReservationConfig is the process-wide booking configuration.
//
// Fields:
//  ID                 – always ReservationConfigID.
//  ReservationsActive – gate on new submissions.
//  ReminderLeadHours  – how long before the end of a stay the reminder is sent.
type ReservationConfig struct {
	ID                 string    `json:"id"`
	ReservationsActive bool      `json:"reservations_active"`
	ReminderLeadHours  int       `json:"reminder_lead_hours"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// LeadTime returns the reminder threshold as a duration, falling back to
// DefaultReminderLeadHours.
func (c *ReservationConfig) LeadTime() time.Duration {
	h := DefaultReminderLeadHours
	if c != nil && c.ReminderLeadHours > 0 {
		h = c.ReminderLeadHours
	}
	return time.Duration(h) * time.Hour
}
