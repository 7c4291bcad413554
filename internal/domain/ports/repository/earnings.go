package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain/model"
)

type MonthlyEarningsRepository interface {
	// Add increments the (advocate, year, month) row by amount and one
	// consultation, creating the row when it does not exist.
	Add(ctx context.Context, tx Tx, advocateID string, year, month int, amount decimal.Decimal) error
	Find(ctx context.Context, tx Tx, advocateID string, year, month int) (*model.MonthlyEarnings, error)
}

type AdvocateProfileRepository interface {
	Save(ctx context.Context, tx Tx, p *model.AdvocateProfile) error
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.AdvocateProfile, error)
	// AddEarnings increments lifetime totals. Returns domain.ErrNotFound when the profile is missing.
	AddEarnings(ctx context.Context, tx Tx, userID string, amount decimal.Decimal) error
}
