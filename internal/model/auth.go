package model

// RegisterRequest creates an identity at the provider and a User record.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=client owner"`
}

// LoginRequest authenticates against the identity provider.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest signs in with a provider-issued ID token,
// registering the User on first login.
type GoogleLoginRequest struct {
	IDToken     string  `json:"id_token" binding:"required"`
	ExternalUID string  `json:"firebase_uid"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	ImageURL    *string `json:"image_url"`
	Role        string  `json:"role" binding:"omitempty,oneof=client owner"`
}

// Session is the result of a successful login.
type Session struct {
	IDToken        string `json:"id_token"`
	ExternalAuthID string `json:"external_auth_id"`
	User           *User  `json:"user"`
}
