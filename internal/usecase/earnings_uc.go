package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/domain/ports/repository"
)

var _ EarningsUseCase = (*earningsUC)(nil)

// EarningsUseCase exposes advocate earnings to the admin API.
type EarningsUseCase interface {
	Profile(ctx context.Context, advocateID string) (*model.AdvocateProfile, error)
	// Monthly returns the aggregate for one month; a month without payments
	// yields a zero row rather than ErrNotFound.
	Monthly(ctx context.Context, advocateID string, year, month int) (*model.MonthlyEarnings, error)
}

type earningsUC struct {
	monthly  repository.MonthlyEarningsRepository
	profiles repository.AdvocateProfileRepository
}

func NewEarningsUseCase(monthly repository.MonthlyEarningsRepository, profiles repository.AdvocateProfileRepository) *earningsUC {
	return &earningsUC{monthly: monthly, profiles: profiles}
}

func (u *earningsUC) Profile(ctx context.Context, advocateID string) (*model.AdvocateProfile, error) {
	if advocateID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.profiles.FindByUserID(ctx, repository.NoTX, advocateID)
}

func (u *earningsUC) Monthly(ctx context.Context, advocateID string, year, month int) (*model.MonthlyEarnings, error) {
	if advocateID == "" || year < 1 || month < 1 || month > 12 {
		return nil, domain.ErrInvalidArgument
	}
	m, err := u.monthly.Find(ctx, repository.NoTX, advocateID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &model.MonthlyEarnings{
				AdvocateID:  advocateID,
				Year:        year,
				Month:       month,
				TotalAmount: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("find monthly earnings: %w", err)
	}
	return m, nil
}
