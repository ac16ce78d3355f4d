package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager is implemented by the SQL repositories that write more
// than one statement per operation.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	// Rollback is a no-op on a committed transaction.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
