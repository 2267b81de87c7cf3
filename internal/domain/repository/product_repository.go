package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// ProductRepository puerto del catálogo de productos (colaborador externo del ledger).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// FindMany devuelve los productos existentes indexados por ID; los ausentes se omiten.
	FindMany(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	// IncrementQuantities aplica todos los deltas como incrementos atómicos (quantity = quantity + n),
	// nunca como lectura y escritura del documento completo.
	IncrementQuantities(ctx context.Context, deltas []entity.StockDelta) error
	// ListBelowThreshold devuelve, de ids, los productos con quantity < min_stock (negativos incluidos).
	ListBelowThreshold(ctx context.Context, ids []string) ([]*entity.Product, error)
	// ListLowStock todos los productos bajo umbral, mayor faltante primero. limit <= 0 sin límite.
	ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error)
}
