package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// TransactionLog puerto de solo lectura sobre las ventas del punto de venta.
type TransactionLog interface {
	// FindCompleted devuelve las transacciones "completed" de la ubicación en [Since, Until].
	// Se une por LocationID; los registros sin LocationID se unen por nombre.
	FindCompleted(ctx context.Context, q entity.TransactionQuery) ([]*entity.Transaction, error)
}
