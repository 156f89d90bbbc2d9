package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Base contains common fields for all persisted entities
type Base struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewID generates a store-assigned identifier: 24 lowercase hex
// characters. External auth identifiers are longer or contain non-hex
// characters, which is what the id-or-owner resolution relies on.
func NewID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// Touch stamps creation metadata on a new entity.
func (b *Base) Touch() {
	now := time.Now().UTC()
	if b.ID == "" {
		b.ID = NewID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
