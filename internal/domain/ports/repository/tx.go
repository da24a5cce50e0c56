package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle passed through use cases into
// repositories. The concrete type is infra-defined (pgx.Tx for Postgres);
// repositories must accept nil for the non-transactional path.
type Tx interface{}

// TransactionManager executes a function inside a database transaction,
// passing the transaction handle via tx. Keeps use-case interfaces clean of
// storage types while letting repositories run FOR UPDATE reads and
// tx-bound writes.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
