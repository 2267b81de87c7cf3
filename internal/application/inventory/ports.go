package inventory

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Movements repository.StockMovementRepository
	Stock     repository.StockRepository
	Products  repository.ProductRepository
	Outbox    repository.OutboxRepository
	// Savepoint ejecuta fn en una subtransacción: si falla se deshace solo lo hecho por fn
	// y la transacción externa sigue utilizable.
	Savepoint func(ctx context.Context, fn func(ctx context.Context, r TxRepos) error) error
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r TxRepos) error) error
}

// Metrics contadores del ledger. Implementado por infrastructure/metrics.
type Metrics interface {
	MovementRecorded(reason string)
	MovementFailed(reason, kind string)
	LowStockStaged(products int)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) MovementRecorded(string)       {}
func (NopMetrics) MovementFailed(string, string) {}
func (NopMetrics) LowStockStaged(int)            {}
