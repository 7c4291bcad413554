package model

import (
	"time"

	"github.com/google/uuid"

	"advocate-payments/internal/domain"
)

// DefaultAccessTTL is how long a paid consultation stays accessible.
const DefaultAccessTTL = 24 * time.Hour

// AccessGrant lets a client open a consultation request they paid for until ExpiresAt.
type AccessGrant struct {
	ID        string // UUID
	RequestID string
	UserID    string
	ExpiresAt time.Time
	IsActive  bool
	CreatedAt time.Time
}

// NewAccessGrant creates an active grant that expires ttl after now.
func NewAccessGrant(requestID, userID string, now time.Time, ttl time.Duration) (*AccessGrant, error) {
	if requestID == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &AccessGrant{
		ID:        uuid.NewString(),
		RequestID: requestID,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		IsActive:  true,
		CreatedAt: now,
	}, nil
}

// ValidAt reports whether the grant is active and not yet expired at t.
func (g *AccessGrant) ValidAt(t time.Time) bool {
	return g.IsActive && t.Before(g.ExpiresAt)
}
