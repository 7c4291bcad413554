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

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, session_id, status, amount::text, request_id, client_id, advocate_id, processed_at, COALESCE(payment_method, ''), COALESCE(transaction_id, ''), created_at, updated_at`

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (
  id, session_id, status, amount, request_id, client_id, advocate_id, processed_at, payment_method, transaction_id, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),NULLIF($10,''),$11,$12
) ON CONFLICT (id) DO UPDATE SET
  status=$3, amount=$4, processed_at=$8, payment_method=NULLIF($9,''), transaction_id=NULLIF($10,''), updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.SessionID, string(p.Status), p.Amount, p.RequestID, p.ClientID, p.AdvocateID, p.ProcessedAt, p.PaymentMethod, p.TransactionID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return execErr(err)
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := forUpdate(`SELECT `+paymentColumns+` FROM payments WHERE id=$1`, tx)
	return r.findOne(ctx, tx, q, id)
}

func (r *paymentRepo) FindBySessionID(ctx context.Context, tx repository.Tx, sessionID string) (*model.Payment, error) {
	q := forUpdate(`SELECT `+paymentColumns+` FROM payments WHERE session_id=$1 LIMIT 1`, tx)
	return r.findOne(ctx, tx, q, sessionID)
}

func (r *paymentRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg string) (*model.Payment, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	p := &model.Payment{}
	var status string
	if err := row.Scan(&p.ID, &p.SessionID, &status, &p.Amount, &p.RequestID, &p.ClientID, &p.AdvocateID, &p.ProcessedAt, &p.PaymentMethod, &p.TransactionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	p.Status = model.PaymentStatus(status)
	return p, nil
}

// MarkCompleted atomically completes the payment only while it is still PENDING.
func (r *paymentRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id, transactionID, method string, processedAt time.Time) (bool, error) {
	const q = `
    UPDATE payments
       SET status = 'COMPLETED',
           transaction_id = $2,
           payment_method = $3,
           processed_at = $4,
           updated_at = NOW()
     WHERE id = $1
       AND status = 'PENDING'`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, transactionID, method, processedAt)
	if err != nil {
		return false, execErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

// MarkFailed atomically fails the payment only while it is still PENDING.
func (r *paymentRepo) MarkFailed(ctx context.Context, tx repository.Tx, id string, processedAt time.Time) (bool, error) {
	const q = `
    UPDATE payments
       SET status = 'FAILED',
           processed_at = $2,
           updated_at = NOW()
     WHERE id = $1
       AND status = 'PENDING'`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, processedAt)
	if err != nil {
		return false, execErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}
