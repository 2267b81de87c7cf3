package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo directorio de ubicaciones sobre las tablas stores/locations.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// CreateStore persiste la tienda y sus ubicaciones en un batch (seed e integración).
func (r *LocationRepo) CreateStore(ctx context.Context, s *entity.Store) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO stores (id, name, created_at, updated_at) VALUES ($1, $2, now(), now())`, s.ID, s.Name)
	for _, l := range s.Locations {
		batch.Queue(`INSERT INTO locations (id, store_id, name, is_active) VALUES ($1, $2, $3, $4)`,
			l.ID, s.ID, l.Name, l.IsActive)
	}
	return wrap("insert store", execBatch(r.q.SendBatch(ctx, batch), batch.Len(), nil))
}

// ListAll todas las ubicaciones de todas las tiendas.
func (r *LocationRepo) ListAll(ctx context.Context) ([]entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT id, store_id, name, is_active FROM locations ORDER BY store_id, name`)
	if err != nil {
		return nil, wrap("list locations", err)
	}
	defer rows.Close()
	var list []entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.StoreID, &l.Name, &l.IsActive); err != nil {
			return nil, wrap("scan location", err)
		}
		list = append(list, l)
	}
	return list, wrap("list locations", rows.Err())
}

// GetInStore busca la ubicación dentro de una tienda concreta; nil si no existe.
func (r *LocationRepo) GetInStore(ctx context.Context, storeID, locationID string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `
		SELECT id, store_id, name, is_active FROM locations
		WHERE store_id = $1 AND id = $2`, storeID, locationID,
	).Scan(&l.ID, &l.StoreID, &l.Name, &l.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get location", err)
	}
	return &l, nil
}
