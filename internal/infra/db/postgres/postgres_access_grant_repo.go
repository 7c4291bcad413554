package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"advocate-payments/internal/domain"
	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/domain/ports/repository"
)

var _ repository.AccessGrantRepository = (*accessGrantRepo)(nil)

type accessGrantRepo struct{ pool *pgxpool.Pool }

func NewAccessGrantRepo(pool *pgxpool.Pool) *accessGrantRepo {
	return &accessGrantRepo{pool: pool}
}

func (r *accessGrantRepo) Create(ctx context.Context, tx repository.Tx, g *model.AccessGrant) error {
	const q = `INSERT INTO access_grants (id, request_id, user_id, expires_at, is_active, created_at) VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, tx, q, g.ID, g.RequestID, g.UserID, g.ExpiresAt, g.IsActive, g.CreatedAt)
	if err != nil {
		return execErr(err)
	}
	return nil
}

func (r *accessGrantRepo) FindActive(ctx context.Context, tx repository.Tx, requestID, userID string, now time.Time) (*model.AccessGrant, error) {
	const q = `
SELECT id, request_id, user_id, expires_at, is_active, created_at
  FROM access_grants
 WHERE request_id=$1 AND user_id=$2 AND is_active AND expires_at > $3
 ORDER BY expires_at DESC
 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, requestID, userID, now)
	if err != nil {
		return nil, err
	}
	g := &model.AccessGrant{}
	if err := row.Scan(&g.ID, &g.RequestID, &g.UserID, &g.ExpiresAt, &g.IsActive, &g.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return g, nil
}

func (r *accessGrantRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `UPDATE access_grants SET is_active=FALSE WHERE is_active AND expires_at <= $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, execErr(err)
	}
	return int(cmd.RowsAffected()), nil
}
