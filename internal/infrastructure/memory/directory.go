package memory

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepository)(nil)

// LocationRepository directorio de ubicaciones en memoria.
type LocationRepository struct{ s *Store }

// Locations devuelve el directorio de ubicaciones.
func (s *Store) Locations() *LocationRepository { return &LocationRepository{s: s} }

func (r *LocationRepository) ListAll(_ context.Context) ([]entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.Location
	for _, id := range sortedKeys(r.s.stores) {
		out = append(out, r.s.stores[id].Locations...)
	}
	return out, nil
}

func (r *LocationRepository) GetInStore(_ context.Context, storeID, locationID string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stores[storeID]
	if !ok {
		return nil, nil
	}
	for _, l := range st.Locations {
		if sameLocation(l.ID, locationID) {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}
