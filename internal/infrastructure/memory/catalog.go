package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepository)(nil)
	_ repository.StockRepository   = (*StockRepository)(nil)
)

// ProductRepository catálogo en memoria.
type ProductRepository struct {
	s    *Store
	undo *undoLog
}

// Products devuelve el repositorio de productos.
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepository) FindMany(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (r *ProductRepository) IncrementQuantities(_ context.Context, deltas []entity.StockDelta) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range deltas {
		if _, ok := r.s.products[d.ProductID]; !ok {
			return domain.NotFound("producto", d.ProductID)
		}
	}
	now := time.Now().UTC()
	for _, d := range deltas {
		p := r.s.products[d.ProductID]
		p.Quantity += d.Delta
		p.UpdatedAt = now
		r.s.products[d.ProductID] = p

		d := d
		r.undo.add(func() {
			if p, ok := r.s.products[d.ProductID]; ok {
				p.Quantity -= d.Delta
				r.s.products[d.ProductID] = p
			}
		})
	}
	return nil
}

func (r *ProductRepository) ListBelowThreshold(_ context.Context, ids []string) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Product
	for _, id := range ids {
		p, ok := r.s.products[id]
		if !ok || !p.IsBelowMinStock() {
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}

func (r *ProductRepository) ListLowStock(_ context.Context, limit int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.IsBelowMinStock() {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].Shortfall(), out[j].Shortfall()
		if si != sj {
			return si > sj
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// StockRepository stock por ubicación en memoria.
type StockRepository struct {
	s    *Store
	undo *undoLog
}

// Stock devuelve el repositorio de stock por ubicación.
func (s *Store) Stock() *StockRepository { return &StockRepository{s: s} }

func (r *StockRepository) IncrementMany(_ context.Context, deltas []entity.StockDelta) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	for _, d := range deltas {
		k := stockKey{product: d.ProductID, location: d.LocationID}
		row, existed := r.s.stock[k]
		row.ProductID = d.ProductID
		row.LocationID = d.LocationID
		row.Quantity += d.Delta
		row.UpdatedAt = now
		r.s.stock[k] = row

		delta := d.Delta
		r.undo.add(func() {
			row, ok := r.s.stock[k]
			if !ok {
				return
			}
			row.Quantity -= delta
			if !existed && row.Quantity == 0 {
				delete(r.s.stock, k)
				return
			}
			r.s.stock[k] = row
		})
	}
	return nil
}

func (r *StockRepository) ListByLocation(_ context.Context, locationID string) ([]*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Stock
	for k, row := range r.s.stock {
		if k.location != locationID {
			continue
		}
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}
