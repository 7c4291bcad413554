package repository

import (
	"context"
	"time"

	"advocate-payments/internal/domain/model"
)

// -----------------------------
// Payments
// -----------------------------

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindBySessionID(ctx context.Context, tx Tx, sessionID string) (*model.Payment, error)
	// MarkCompleted moves a PENDING payment to COMPLETED. It reports false when
	// the payment was no longer PENDING, leaving the row untouched.
	MarkCompleted(ctx context.Context, tx Tx, id, transactionID, method string, processedAt time.Time) (bool, error)
	// MarkFailed moves a PENDING payment to FAILED, with the same guard as MarkCompleted.
	MarkFailed(ctx context.Context, tx Tx, id string, processedAt time.Time) (bool, error)
}
