package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepository)(nil)

// StockMovementRepository ledger en memoria; transRef único.
type StockMovementRepository struct {
	s    *Store
	undo *undoLog
}

// Movements devuelve el repositorio del ledger.
func (s *Store) Movements() *StockMovementRepository { return &StockMovementRepository{s: s} }

func (r *StockMovementRepository) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.transRefs[m.TransRef]; exists {
		return domain.Conflict("transRef duplicado: " + m.TransRef)
	}
	r.s.movements[m.ID] = cloneMovement(*m)
	r.s.transRefs[m.TransRef] = m.ID

	id, ref := m.ID, m.TransRef
	r.undo.add(func() {
		delete(r.s.movements, id)
		delete(r.s.transRefs, ref)
	})
	return nil
}

func (r *StockMovementRepository) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	m = cloneMovement(m)
	return &m, nil
}

func (r *StockMovementRepository) List(_ context.Context, f entity.MovementFilter) ([]*entity.StockMovement, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var matched []*entity.StockMovement
	for _, m := range r.s.movements {
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.Reason != "" && m.Reason != f.Reason {
			continue
		}
		if f.LocationID != "" && !sameLocation(m.FromLocationID, f.LocationID) && !sameLocation(m.ToLocationID, f.LocationID) {
			continue
		}
		if f.From != nil && m.DateSent.Before(*f.From) {
			continue
		}
		if f.To != nil && m.DateSent.After(*f.To) {
			continue
		}
		c := cloneMovement(m)
		matched = append(matched, &c)
	}
	// más recientes primero
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].DateSent.Equal(matched[j].DateSent) {
			return matched[i].TransRef > matched[j].TransRef
		}
		return matched[i].DateSent.After(matched[j].DateSent)
	})
	total := len(matched)
	if f.Offset >= total {
		return []*entity.StockMovement{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < total {
		end = f.Offset + f.Limit
	}
	return matched[f.Offset:end], total, nil
}

func (r *StockMovementRepository) ListForExpiry(_ context.Context, locationID string) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.StockMovement, 0)
	for _, id := range sortedKeys(r.s.movements) {
		m := r.s.movements[id]
		if locationID != "" && !sameLocation(m.FromLocationID, locationID) && !sameLocation(m.ToLocationID, locationID) {
			continue
		}
		c := cloneMovement(m)
		out = append(out, &c)
	}
	return out, nil
}

func (r *StockMovementRepository) MarkReceived(_ context.Context, id string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movements[id]
	if !ok || m.Status == entity.MovementStatusReceived {
		return false, nil
	}
	prev := m
	m.Status = entity.MovementStatusReceived
	m.DateReceived = &at
	r.s.movements[id] = m
	r.undo.add(func() { r.s.movements[id] = prev })
	return true, nil
}
