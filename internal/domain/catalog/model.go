package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Service is a bookable offering: a haircut, a consultation, a massage.
// Price is in minor currency units. DurationMinutes drives the end time of
// every appointment booked for it.
type Service struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           int64     `json:"price"`
	Category        string    `json:"category,omitempty"`
	Active          bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
