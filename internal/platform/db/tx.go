package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxKey carries an open transaction through the request context so that
// repository calls made inside a transactional block share it.
const TxKey contextKey = "db_tx"

// WithTx returns a context carrying the transaction.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, TxKey, tx)
}

// TxFromContext returns the context's transaction, or nil.
func TxFromContext(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(TxKey).(pgx.Tx); ok {
		return tx
	}
	return nil
}
