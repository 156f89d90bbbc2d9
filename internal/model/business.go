package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TimeOut is an optional mid-day break inside the weekday schedule.
type TimeOut struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeekSchedule is the Monday-Friday open/close pair.
type WeekSchedule struct {
	Start   string  `json:"start"`
	TimeOut TimeOut `json:"time-out"`
	End     string  `json:"end"`
}

// WeekendSchedule is the Saturday-Sunday open/close pair.
type WeekendSchedule struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkingHours is the fixed two-bucket schedule embedded in a Business.
// Unset buckets hold empty strings rather than being omitted.
type WorkingHours struct {
	Week    WeekSchedule    `json:"week"`
	Weekend WeekendSchedule `json:"weekend"`
}

// Value implements driver.Valuer so WorkingHours persists as JSONB.
func (w WorkingHours) Value() (driver.Value, error) {
	return json.Marshal(w)
}

// Scan implements sql.Scanner.
func (w *WorkingHours) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	case nil:
		*w = WorkingHours{}
		return nil
	default:
		return fmt.Errorf("unsupported type %T for WorkingHours", src)
	}
}

// Business is a bookable establishment owned by exactly one owner User
// and classified under exactly one Category.
type Business struct {
	Base
	Name         string       `json:"name" db:"name"`
	Description  *string      `json:"description,omitempty" db:"description"`
	Address      *string      `json:"address,omitempty" db:"address"`
	Phone        *string      `json:"phone,omitempty" db:"phone"`
	ImageURL     *string      `json:"image_url,omitempty" db:"image_url"`
	WorkingHours WorkingHours `json:"working_hours" db:"working_hours"`
	OwnerID      string       `json:"owner_id" db:"owner_id"`
	CategoryID   string       `json:"category_id" db:"category_id"`

	Owner    *User      `json:"owner,omitempty" db:"-"`
	Category *Category  `json:"category,omitempty" db:"-"`
	Services []*Service `json:"services,omitempty" db:"-"`
}

// BusinessStats aggregates the appointment history of a business.
type BusinessStats struct {
	TotalAppointments     int     `json:"total_appointments"`
	PendingAppointments   int     `json:"pending_appointments"`
	CompletedAppointments int     `json:"completed_appointments"`
	ConfirmedRevenue      float64 `json:"confirmed_revenue"`
	DistinctClients       int     `json:"distinct_clients"`
}
