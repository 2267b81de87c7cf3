package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/retail-ledger/internal/application/inventory"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los errores de begin/commit se traducen (serialización y deadlock quedan como reintentables).
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrap("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, reposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// reposFor ata los repositorios a tx. Savepoint abre una tx anidada (SAVEPOINT) sobre la misma conexión.
func reposFor(tx pgx.Tx) inventory.TxRepos {
	return inventory.TxRepos{
		Movements: NewStockMovementRepository(tx),
		Stock:     NewStockRepository(tx),
		Products:  NewProductRepository(tx),
		Outbox:    NewOutboxRepository(tx),
		Savepoint: func(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
			sp, err := tx.Begin(ctx)
			if err != nil {
				return wrap("savepoint", err)
			}
			defer func() { _ = sp.Rollback(ctx) }()
			if err := fn(ctx, reposFor(sp)); err != nil {
				return err
			}
			return wrap("release savepoint", sp.Commit(ctx))
		},
	}
}
