package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside a database transaction and hands the
// underlying transaction handle to fn as tx.
//
// Repositories called with that tx join the transaction; called with NoTX they
// run against the pool directly. The concrete type of tx is infra-defined
// (pgx.Tx for Postgres). fn returning an error rolls the transaction back,
// otherwise it is committed.
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx Tx) error {
//		ok, err := payments.MarkCompleted(ctx, tx, ...)
//		...
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
