package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/domain/ports/repository"
)

var _ repository.MonthlyEarningsRepository = (*monthlyEarningsRepo)(nil)

type monthlyEarningsRepo struct{ pool *pgxpool.Pool }

func NewMonthlyEarningsRepo(pool *pgxpool.Pool) *monthlyEarningsRepo {
	return &monthlyEarningsRepo{pool: pool}
}

// Add upserts the month row; the conflict branch increments in place so
// concurrent adds never lose an update.
func (r *monthlyEarningsRepo) Add(ctx context.Context, tx repository.Tx, advocateID string, year, month int, amount decimal.Decimal) error {
	const q = `
INSERT INTO monthly_earnings (advocate_id, year, month, total_amount, consultation_count, updated_at)
VALUES ($1, $2, $3, $4, 1, NOW())
ON CONFLICT (advocate_id, year, month) DO UPDATE SET
  total_amount = monthly_earnings.total_amount + EXCLUDED.total_amount,
  consultation_count = monthly_earnings.consultation_count + 1,
  updated_at = NOW();`
	_, err := execSQL(ctx, r.pool, tx, q, advocateID, year, month, amount)
	if err != nil {
		return execErr(err)
	}
	return nil
}

func (r *monthlyEarningsRepo) Find(ctx context.Context, tx repository.Tx, advocateID string, year, month int) (*model.MonthlyEarnings, error) {
	const q = `SELECT advocate_id, year, month, total_amount::text, consultation_count FROM monthly_earnings WHERE advocate_id=$1 AND year=$2 AND month=$3;`
	row, err := pickRow(ctx, r.pool, tx, q, advocateID, year, month)
	if err != nil {
		return nil, err
	}
	m := &model.MonthlyEarnings{}
	if err := row.Scan(&m.AdvocateID, &m.Year, &m.Month, &m.TotalAmount, &m.ConsultationCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}
