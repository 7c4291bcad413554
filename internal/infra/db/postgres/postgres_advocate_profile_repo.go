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

var _ repository.AdvocateProfileRepository = (*advocateProfileRepo)(nil)

type advocateProfileRepo struct{ pool *pgxpool.Pool }

func NewAdvocateProfileRepo(pool *pgxpool.Pool) *advocateProfileRepo {
	return &advocateProfileRepo{pool: pool}
}

func (r *advocateProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.AdvocateProfile) error {
	const q = `
INSERT INTO advocate_profiles (user_id, total_earnings, total_consultations, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (user_id) DO UPDATE SET
  total_earnings=$2, total_consultations=$3, updated_at=NOW();`
	_, err := execSQL(ctx, r.pool, tx, q, p.UserID, p.TotalEarnings, p.TotalConsultations)
	if err != nil {
		return execErr(err)
	}
	return nil
}

func (r *advocateProfileRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.AdvocateProfile, error) {
	const q = `SELECT user_id, total_earnings::text, total_consultations, updated_at FROM advocate_profiles WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	p := &model.AdvocateProfile{}
	if err := row.Scan(&p.UserID, &p.TotalEarnings, &p.TotalConsultations, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *advocateProfileRepo) AddEarnings(ctx context.Context, tx repository.Tx, userID string, amount decimal.Decimal) error {
	const q = `
UPDATE advocate_profiles
   SET total_earnings = total_earnings + $2,
       total_consultations = total_consultations + 1,
       updated_at = NOW()
 WHERE user_id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, userID, amount)
	if err != nil {
		return execErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
