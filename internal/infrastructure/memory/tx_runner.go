package memory

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones y, si fn falla, deshace solo lo que escribió fn.
type TxRunner struct{ s *Store }

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

// Run ejecuta fn; cualquier error revierte sus escrituras.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	log := &undoLog{}
	if err := fn(ctx, r.repos(log)); err != nil {
		r.s.rollback(log, 0)
		return err
	}
	return nil
}

func (r *TxRunner) repos(log *undoLog) inventory.TxRepos {
	repos := inventory.TxRepos{
		Movements: &StockMovementRepository{s: r.s, undo: log},
		Stock:     &StockRepository{s: r.s, undo: log},
		Products:  &ProductRepository{s: r.s, undo: log},
		Outbox:    &OutboxRepository{s: r.s, undo: log},
	}
	repos.Savepoint = func(ctx context.Context, fn func(ctx context.Context, sp inventory.TxRepos) error) error {
		r.s.mu.RLock()
		mark := len(log.ops)
		r.s.mu.RUnlock()
		if err := fn(ctx, repos); err != nil {
			r.s.rollback(log, mark)
			return err
		}
		return nil
	}
	return repos
}
