package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	dominv "github.com/jhoicas/retail-ledger/internal/domain/inventory"
)

// ExpiryProjection vista de solo lectura de lotes con vencimiento.
// Cada línea con fecha de vencimiento (propia o heredada del producto) y cantidad > 0 es un lote;
// las que no tienen fecha se excluyen en silencio.
func (uc *LedgerUseCase) ExpiryProjection(ctx context.Context, in dto.ExpiryListRequest) (*dto.ExpiryListResponse, error) {
	if in.ExpiringWithinDays < 0 {
		return nil, domain.Invalid("expiring_within_days", "no puede ser negativo")
	}
	movements, err := uc.movements.ListForExpiry(ctx, in.LocationID)
	if err != nil {
		return nil, domain.Storage("listar movimientos", err)
	}
	var ids []string
	seen := make(map[string]struct{})
	for _, m := range movements {
		for _, id := range m.ProductIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	cache, products, err := uc.lookups(ctx, ids)
	if err != nil {
		return nil, err
	}

	var horizon time.Time
	if in.ExpiringWithinDays > 0 {
		horizon = uc.now().AddDate(0, 0, in.ExpiringWithinDays)
	}

	items := make([]dto.ExpiryItemResponse, 0)
	for _, m := range movements {
		locationID := batchLocation(m)
		locationName := uc.directory.ResolveDestination(ctx, cache, locationID, "")
		for _, l := range m.Lines {
			if l.Quantity <= 0 {
				continue
			}
			p := products[l.ProductID]
			expiry := l.ExpiryDate
			if expiry == nil && p != nil {
				expiry = p.ExpiryDate
			}
			if expiry == nil {
				continue
			}
			if !horizon.IsZero() && expiry.After(horizon) {
				continue
			}
			name := missingProductName
			if p != nil {
				name = p.Name
			}
			items = append(items, dto.ExpiryItemResponse{
				BatchID:      m.TransRef,
				ProductID:    l.ProductID,
				ProductName:  name,
				LocationID:   locationID,
				LocationName: locationName,
				ExpiryDate:   *expiry,
				Quantity:     l.Quantity,
				CostPrice:    l.CostPrice,
				DateReceived: m.DateReceived,
				Status:       m.Status,
				Reason:       m.Reason,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].ExpiryDate.Equal(items[j].ExpiryDate) {
			return items[i].ExpiryDate.Before(items[j].ExpiryDate)
		}
		return items[i].BatchID < items[j].BatchID
	})
	return &dto.ExpiryListResponse{Items: items}, nil
}

// batchLocation ubicación donde queda el lote: destino si está rastreado, si no el origen.
func batchLocation(m *entity.StockMovement) string {
	if dominv.IsTracked(m.ToLocationID) {
		return m.ToLocationID
	}
	return m.FromLocationID
}
