package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/location"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// MaxPageSize límite superior de página en listados.
const MaxPageSize = 100

// missingProductName nombre mostrado cuando el producto fue eliminado después del movimiento.
const missingProductName = "N/A"

// GetMovement obtiene un movimiento con nombre y costo actuales de cada producto.
// Un producto eliminado no hace fallar la lectura: se muestra "N/A" con costo 0.
func (uc *LedgerUseCase) GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	mov, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("obtener movimiento", err)
	}
	if mov == nil {
		return nil, domain.NotFound("movimiento", id)
	}
	cache, products, err := uc.lookups(ctx, mov.ProductIDs())
	if err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, mov, cache, products), nil
}

// ListMovements página de movimientos con nombres de ubicación resueltos y cantidad total.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, in dto.MovementListRequest) (*dto.MovementListResponse, error) {
	in.DefaultPage()
	if in.Limit > MaxPageSize {
		in.Limit = MaxPageSize
	}
	filter := entity.MovementFilter{
		Status:     in.Status,
		Reason:     in.Reason,
		LocationID: in.LocationID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if in.DateFrom != "" {
		t, err := time.Parse("2006-01-02", in.DateFrom)
		if err != nil {
			return nil, domain.Invalid("date_from", "formato esperado YYYY-MM-DD")
		}
		filter.From = &t
	}
	if in.DateTo != "" {
		t, err := time.Parse("2006-01-02", in.DateTo)
		if err != nil {
			return nil, domain.Invalid("date_to", "formato esperado YYYY-MM-DD")
		}
		// fin del día inclusivo
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.Invalid("date_from", "debe ser anterior a date_to")
	}

	list, total, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, domain.Storage("listar movimientos", err)
	}
	var ids []string
	seen := make(map[string]struct{})
	for _, m := range list {
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
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *uc.toResponse(ctx, m, cache, products))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// ReceiveMovement marca como recibido un movimiento Pending o Sent. No aplica deltas:
// las cantidades se aplicaron al crearlo.
func (uc *LedgerUseCase) ReceiveMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	mov, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("obtener movimiento", err)
	}
	if mov == nil {
		return nil, domain.NotFound("movimiento", id)
	}
	if mov.Status == entity.MovementStatusReceived {
		return nil, domain.Conflict("el movimiento ya fue recibido")
	}
	now := uc.now()
	changed, err := uc.movements.MarkReceived(ctx, id, now)
	if err != nil {
		return nil, domain.Storage("recibir movimiento", err)
	}
	if !changed {
		return nil, domain.Conflict("el movimiento ya fue recibido")
	}
	uc.log.Info().Str("trans_ref", mov.TransRef).Msg("movimiento recibido")
	return uc.GetMovement(ctx, id)
}

// ListStock saldos por producto de una ubicación rastreada.
func (uc *LedgerUseCase) ListStock(ctx context.Context, locationID string) (*dto.StockListResponse, error) {
	if locationID == "" {
		return nil, domain.Invalid("location_id", "requerido")
	}
	rows, err := uc.stock.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, domain.Storage("listar stock", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ProductID)
	}
	cache, products, err := uc.lookups(ctx, ids)
	if err != nil {
		return nil, err
	}
	name := uc.directory.ResolveDestination(ctx, cache, locationID, "")
	items := make([]dto.StockResponse, 0, len(rows))
	for _, r := range rows {
		productName := missingProductName
		if p := products[r.ProductID]; p != nil {
			productName = p.Name
		}
		items = append(items, dto.StockResponse{
			ProductID:    r.ProductID,
			ProductName:  productName,
			LocationID:   r.LocationID,
			LocationName: name,
			Quantity:     r.Quantity,
			Backordered:  r.Quantity < 0,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return &dto.StockListResponse{Items: items}, nil
}

// Directory volcado del directorio de ubicaciones.
func (uc *LedgerUseCase) Directory(ctx context.Context) (*dto.LocationDirectoryResponse, error) {
	cache, err := uc.directory.Build(ctx)
	if err != nil {
		return nil, domain.Storage("construir directorio", err)
	}
	entries := cache.Entries()
	items := make([]dto.LocationEntry, 0, len(entries))
	for id, name := range entries {
		items = append(items, dto.LocationEntry{ID: id, Name: name})
	}
	sortEntries(items)
	return &dto.LocationDirectoryResponse{Items: items}, nil
}

// lookups construye el directorio y carga los productos en paralelo.
func (uc *LedgerUseCase) lookups(ctx context.Context, productIDs []string) (*location.Cache, map[string]*entity.Product, error) {
	var (
		cache    *location.Cache
		products map[string]*entity.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cache, err = uc.directory.Build(gctx)
		return domain.Storage("construir directorio", err)
	})
	g.Go(func() error {
		if len(productIDs) == 0 {
			products = map[string]*entity.Product{}
			return nil
		}
		var err error
		products, err = uc.products.FindMany(gctx, productIDs)
		return domain.Storage("buscar productos", err)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return cache, products, nil
}

func (uc *LedgerUseCase) toResponse(ctx context.Context, m *entity.StockMovement, cache *location.Cache, products map[string]*entity.Product) *dto.MovementResponse {
	lines := make([]dto.MovementLineResponse, 0, len(m.Lines))
	for _, l := range m.Lines {
		name, cost := missingProductName, decimal.Zero
		if p := products[l.ProductID]; p != nil {
			name, cost = p.Name, p.CostPrice
		}
		lines = append(lines, dto.MovementLineResponse{
			ProductID:   l.ProductID,
			ProductName: name,
			Quantity:    l.Quantity,
			Delta:       l.Delta,
			CostPrice:   cost,
			ExpiryDate:  l.ExpiryDate,
		})
	}
	return &dto.MovementResponse{
		ID:             m.ID,
		TransRef:       m.TransRef,
		FromLocationID: m.FromLocationID,
		FromLocation:   uc.directory.Resolve(ctx, cache, m.FromLocationID, ""),
		ToLocationID:   m.ToLocationID,
		ToLocation:     uc.directory.ResolveDestination(ctx, cache, m.ToLocationID, ""),
		StaffID:        m.StaffID,
		Reason:         m.Reason,
		Status:         m.Status,
		TotalCostPrice: m.TotalCostPrice,
		TotalQuantity:  m.TotalQuantity(),
		LineItems:      lines,
		DateSent:       m.DateSent,
		DateReceived:   m.DateReceived,
		CreatedAt:      m.CreatedAt,
	}
}

func sortEntries(items []dto.LocationEntry) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
