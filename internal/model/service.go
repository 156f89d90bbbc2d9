package model

// Service is an offering of a Business: a bookable unit of work with a
// duration in minutes and a price.
type Service struct {
	Base
	BusinessID      string  `json:"business_id" db:"business_id"`
	Name            string  `json:"name" db:"name"`
	Description     *string `json:"description,omitempty" db:"description"`
	ImageURL        *string `json:"image_url,omitempty" db:"image_url"`
	DurationMinutes int     `json:"duration" db:"duration_minutes"`
	Price           float64 `json:"price" db:"price"`

	Business *Business `json:"business,omitempty" db:"-"`
}
