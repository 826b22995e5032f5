package model

import "time"

// Reservation lifecycle statuses as persisted in reservations.status.
const (
	StatusPending   = "en cours" // submitted, waiting for the front desk
	StatusValidated = "validee"  // confirmed by an admin
	StatusCancelled = "annulee"  // cancelled, never blocks availability
	StatusOccupied  = "occupee"  // client is in the apartment
)

// Stay kinds accepted in reservations.stay_type.
const (
	StayNight = "nuit"
	StayDay   = "journalier"
)

// Statuses lists every lifecycle status in declaration order.
var Statuses = []string{StatusPending, StatusValidated, StatusCancelled, StatusOccupied}

// ActiveStatuses are the statuses that block an apartment.
var ActiveStatuses = []string{StatusValidated, StatusOccupied}

// IsStatus reports whether s is one of the lifecycle statuses.
func IsStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Reservation records one client's request to occupy an apartment for a
// bounded period.  Apartment occupancy is never stored on the apartment
// itself; it is derived from these rows.
//
// Fields:
//  ID              – opaque UUID primary key.
//  LastName        – client family name.
//  FirstName       – client given name.
//  Phone           – client phone number, used for self-service lookup.
//  Email           – client email, target of the end-of-stay reminder.
//  Gender          – "Homme" or "Femme".
//  Motive          – free text reason for the stay.
//  StayType        – nuit or journalier.
//  CategoryID      – category of the apartment, denormalized for reporting.
//  ApartmentID     – reserved apartment.
//  Characteristics – free text requests.
//  Duration        – numeric length of the stay.
//  Period          – unit label for Duration.
//  StartAt         – beginning of the stay.
//  EndAt           – end of the stay; always after StartAt.
//  TotalPrice      – quoted price.
//  Status          – lifecycle status.
//  ReceiptPath     – last rendered receipt file (nullable).
//  ExtraStays      – number of stays beyond five nights (reporting only).
//  ReminderSent    – set once the end-of-stay reminder went out; never reset.
//  CreatedAt       – creation timestamp, used for last-write-wins ordering.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              string    `json:"id"`
	LastName        string    `json:"last_name"`
	FirstName       string    `json:"first_name"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Gender          string    `json:"gender"`
	Motive          string    `json:"motive"`
	StayType        string    `json:"stay_type"`
	CategoryID      string    `json:"category_id"`
	ApartmentID     string    `json:"apartment_id"`
	Characteristics string    `json:"characteristics"`
	Duration        int       `json:"duration"`
	Period          string    `json:"period"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	TotalPrice      float64   `json:"total_price"`
	Status          string    `json:"status"`
	ReceiptPath     *string   `json:"receipt_path,omitempty"`
	ExtraStays      int       `json:"extra_stays"`
	ReminderSent    bool      `json:"reminder_sent"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsActive reports whether the reservation currently blocks its apartment.
func (r Reservation) IsActive() bool {
	return r.Status == StatusValidated || r.Status == StatusOccupied
}

// Covers reports whether t falls inside [StartAt, EndAt].
func (r Reservation) Covers(t time.Time) bool {
	return !t.Before(r.StartAt) && !t.After(r.EndAt)
}

// ReservationDetail is a reservation joined with the names of its apartment
// and category.  Used for admin listings, client lookups and receipts.
type ReservationDetail struct {
	Reservation
	ApartmentName string `json:"apartment_name"`
	CategoryName  string `json:"category_name"`
}
