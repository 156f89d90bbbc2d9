package model

// User role constants
const (
	RoleClient = "client"
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
)

// User represents a registered account. ExternalAuthID links the record
// to the identity provider and uniquely determines at most one User.
type User struct {
	Base
	ExternalAuthID string  `json:"external_auth_id" db:"external_auth_id"`
	Email          string  `json:"email" db:"email"`
	Name           string  `json:"name" db:"name"`
	ImageURL       *string `json:"image_url,omitempty" db:"image_url"`
	Role           string  `json:"role" db:"role"`
}
