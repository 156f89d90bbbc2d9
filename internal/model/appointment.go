package model

import "time"

// Appointment status constants. Creation always uses
// AppointmentStatusPendent; the business stats aggregation compares
// against different labels (see service/business).
const (
	AppointmentStatusPendent   = "pendent"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment links a client User to a Business and one of its
// Services at a point in time.
type Appointment struct {
	Base
	BusinessID string    `json:"business_id" db:"business_id"`
	ServiceID  string    `json:"service_id" db:"service_id"`
	ClientID   string    `json:"client_id" db:"client_id"`
	Date       time.Time `json:"date" db:"date"`
	Status     string    `json:"status" db:"status"`

	Business *Business `json:"business,omitempty" db:"-"`
	Service  *Service  `json:"service,omitempty" db:"-"`
	Client   *User     `json:"client,omitempty" db:"-"`
}

// CreateAppointmentRequest is the payload for booking an appointment.
type CreateAppointmentRequest struct {
	BusinessID string    `json:"business_id" binding:"required"`
	ServiceID  string    `json:"service_id" binding:"required"`
	Date       time.Time `json:"date" binding:"required"`
}

// AppointmentPatch lists the fields an update may overwrite. Any status
// value is reachable from any other; no transition check is applied.
type AppointmentPatch struct {
	Status *string    `json:"status"`
	Date   *time.Time `json:"date"`
}

// AppointmentWithPrice carries the joined service price for stats
// aggregation.
type AppointmentWithPrice struct {
	Appointment
	ServicePrice float64 `db:"service_price"`
}
