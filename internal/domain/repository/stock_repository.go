package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// StockRepository puerto del stock por ubicación+producto.
// Usado dentro de transacciones para mantener consistencia con el total agregado.
type StockRepository interface {
	// IncrementMany aplica los deltas por ubicación (upsert con incremento atómico).
	IncrementMany(ctx context.Context, deltas []entity.StockDelta) error
	ListByLocation(ctx context.Context, locationID string) ([]*entity.Stock, error)
}
