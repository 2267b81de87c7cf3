package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// IncrementMany inserta la fila (producto, ubicación) o le suma el delta, todo en un batch.
func (r *StockRepo) IncrementMany(ctx context.Context, deltas []entity.StockDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	query := `
		INSERT INTO stock (product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = now()`
	batch := &pgx.Batch{}
	for _, d := range deltas {
		batch.Queue(query, d.ProductID, d.LocationID, d.Delta)
	}
	return wrap("increment stock", execBatch(r.q.SendBatch(ctx, batch), len(deltas), nil))
}

// ListByLocation lista el stock de una ubicación ordenado por producto.
func (r *StockRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.Stock, error) {
	query := `
		SELECT product_id, location_id, quantity, updated_at
		FROM stock WHERE location_id = $1
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, locationID)
	if err != nil {
		return nil, wrap("list stock", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, wrap("scan stock", err)
		}
		list = append(list, &s)
	}
	return list, wrap("list stock", rows.Err())
}
