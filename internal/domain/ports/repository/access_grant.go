package repository

import (
	"context"
	"time"

	"advocate-payments/internal/domain/model"
)

type AccessGrantRepository interface {
	Create(ctx context.Context, tx Tx, g *model.AccessGrant) error
	// FindActive returns the latest active grant for (requestID, userID) that has not expired at now.
	FindActive(ctx context.Context, tx Tx, requestID, userID string, now time.Time) (*model.AccessGrant, error)
	// DeactivateExpired flips is_active off for grants expired before now and returns how many changed.
	DeactivateExpired(ctx context.Context, tx Tx, now time.Time) (int, error)
}
