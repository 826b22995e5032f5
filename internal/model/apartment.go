package model

import "time"

// Category tiers accepted in apartment_categories.tier.
const (
	TierPremium = "haut standing premium"
	TierVIP     = "standing ultra luxueux VIP"
)

// Category groups apartments of the same standing.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tier        string    `json:"tier"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Apartment is a rentable unit belonging to exactly one category.  It
// carries no occupancy state; see Reservation.
type Apartment struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	NightPrice  *float64  `json:"night_price,omitempty"`
	DayPrice    *float64  `json:"day_price,omitempty"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
