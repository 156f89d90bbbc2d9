// Package identity talks to the external identity provider. Token
// issuance and verification live entirely at the provider; this package
// only calls its REST surface and never touches local storage.
package identity

import (
	"context"
	"errors"
)

// ErrEmailExists reports a sign-up attempt with an email the provider
// already holds an identity for.
var ErrEmailExists = errors.New("email already exists")

// Claims is the decoded identity attached to authenticated requests.
type Claims struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
}

// Session is the provider's answer to a successful credential sign-in.
type Session struct {
	IDToken    string
	ExternalID string
}

// Gateway is the identity provider client surface.
type Gateway interface {
	// VerifyToken checks an ID token with the provider and returns its
	// decoded claims.
	VerifyToken(ctx context.Context, idToken string) (*Claims, error)
	// SignIn exchanges email/password credentials for a session.
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// CreateIdentity registers a new identity and returns its external id.
	CreateIdentity(ctx context.Context, email, password, displayName string) (string, error)
	// GetIdentity looks up an identity by its external id.
	GetIdentity(ctx context.Context, externalID string) (*Claims, error)
}
