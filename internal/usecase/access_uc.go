package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/domain/ports/repository"
)

var _ AccessUseCase = (*accessUC)(nil)

// AccessUseCase answers whether a client may open a paid consultation.
type AccessUseCase interface {
	// HasAccess returns the active grant for (requestID, userID), or nil when there is none.
	HasAccess(ctx context.Context, requestID, userID string) (*model.AccessGrant, error)
	// ExpireGrants deactivates every grant past its expiry.
	ExpireGrants(ctx context.Context) (int, error)
}

type accessUC struct {
	grants repository.AccessGrantRepository
	now    func() time.Time
}

func NewAccessUseCase(grants repository.AccessGrantRepository) *accessUC {
	return &accessUC{grants: grants, now: time.Now}
}

func (u *accessUC) HasAccess(ctx context.Context, requestID, userID string) (*model.AccessGrant, error) {
	if requestID == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	g, err := u.grants.FindActive(ctx, repository.NoTX, requestID, userID, u.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find access grant: %w", err)
	}
	return g, nil
}

func (u *accessUC) ExpireGrants(ctx context.Context) (int, error) {
	return u.grants.DeactivateExpired(ctx, repository.NoTX, u.now())
}
