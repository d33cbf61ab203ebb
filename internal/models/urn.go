package models

import (
	"time"

	"github.com/google/uuid"
)

// Urn is an anonymous pseudo-identity. It authorizes nothing on the retrieval
// path; it only scopes share creation budgets and owner listings.
type Urn struct {
	ID          uuid.UUID `json:"id"`
	Urn         string    `json:"urn"`
	Email       *string   `json:"email"`
	IsAnonymous bool      `json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}
