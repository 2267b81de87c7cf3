package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, sku, quantity, min_stock, cost_price, expiry_date, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto (seed e integración; el ledger no crea productos).
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.SKU, p.Quantity, p.MinStock, p.CostPrice, p.ExpiryDate)
	return wrap("insert product", err)
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get product", err)
	}
	return p, nil
}

// FindMany obtiene los productos existentes de ids en una sola consulta.
func (r *ProductRepo) FindMany(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, wrap("find products", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrap("scan product", err)
		}
		out[p.ID] = p
	}
	return out, wrap("find products", rows.Err())
}

// IncrementQuantities envía un UPDATE quantity = quantity + $n por producto en un único batch.
// Un producto inexistente aborta con NotFoundError (la tx externa hace rollback).
func (r *ProductRepo) IncrementQuantities(ctx context.Context, deltas []entity.StockDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, d := range deltas {
		batch.Queue(`UPDATE products SET quantity = quantity + $2, updated_at = now() WHERE id = $1`, d.ProductID, d.Delta)
	}
	err := execBatch(r.q.SendBatch(ctx, batch), len(deltas), func(i int) error {
		return domain.NotFound("producto", deltas[i].ProductID)
	})
	return wrap("increment product quantities", err)
}

// ListBelowThreshold devuelve, en el orden de ids, los productos con quantity < min_stock
// (o bajo el umbral por defecto si min_stock no está definido).
func (r *ProductRepo) ListBelowThreshold(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		  AND quantity < CASE WHEN min_stock > 0 THEN min_stock ELSE $2 END
		ORDER BY array_position($1::text[], id)`
	rows, err := r.q.Query(ctx, query, ids, entity.DefaultMinStock)
	if err != nil {
		return nil, wrap("list below threshold", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrap("scan product", err)
		}
		list = append(list, p)
	}
	return list, wrap("list below threshold", rows.Err())
}

// ListLowStock productos bajo umbral ordenados por faltante (umbral - quantity) descendente.
func (r *ProductRepo) ListLowStock(ctx context.Context, limit int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE quantity < CASE WHEN min_stock > 0 THEN min_stock ELSE $1 END
		ORDER BY (CASE WHEN min_stock > 0 THEN min_stock ELSE $1 END) - quantity DESC, name, id`
	args := []any{entity.DefaultMinStock}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list low stock", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrap("scan product", err)
		}
		list = append(list, p)
	}
	return list, wrap("list low stock", rows.Err())
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Quantity, &p.MinStock, &p.CostPrice, &p.ExpiryDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
