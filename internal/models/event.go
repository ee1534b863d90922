package models

import (
	"time"

	"github.com/google/uuid"
)

// Event price type.
const (
	PriceTypeFree = "FREE"
	PriceTypePaid = "PAID"
)

// Event publication status.
const (
	EventStatusDraft     = "DRAFT"
	EventStatusPublished = "PUBLISHED"
)

// Event is a listed event owned by an organizer.
type Event struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Details     string       `json:"details,omitempty"`
	Location    string       `json:"location"`
	EventDate   time.Time    `json:"event_date"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date,omitempty"`
	Image       string       `json:"image"`
	Price       *float64     `json:"price,omitempty"`
	PriceType   string       `json:"price_type"`
	Status      string       `json:"status"`
	Featured    bool         `json:"featured"`
	Views       int          `json:"views"`
	UserID      uuid.UUID    `json:"user_id"`
	CityID      uuid.UUID    `json:"city_id"`
	CategoryID  uuid.UUID    `json:"category_id"`
	City        *City        `json:"city,omitempty"`
	Category    *Category    `json:"category,omitempty"`
	Owner       *UserPublic  `json:"user,omitempty"`
	Images      []EventImage `json:"images,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// EventImage is one uploaded image of an event.
type EventImage struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	URL     string    `json:"url"`
}

// City is a reference city events are listed under.
type City struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Category is a reference event category.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Favorite links a user to an event they saved.
type Favorite struct {
	UserID    uuid.UUID `json:"user_id"`
	EventID   uuid.UUID `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}
