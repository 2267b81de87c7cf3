package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/domain"
)

// DefaultReplenishmentLimit máximo de productos por defecto en la lista de reposición.
const DefaultReplenishmentLimit = 50

// SuggestedOrder cantidad a pedir para llevar el producto a 1.5 veces su umbral (redondeo hacia arriba).
// Un producto con stock negativo pide además lo adeudado.
func SuggestedOrder(quantity, threshold int64) int64 {
	ideal := (threshold*3 + 1) / 2
	if q := ideal - quantity; q > 0 {
		return q
	}
	return 0
}

// Replenishment devuelve los productos bajo umbral, mayor faltante primero, con cantidad sugerida
// y costo estimado del pedido.
func (uc *LedgerUseCase) Replenishment(ctx context.Context, in dto.ReplenishmentRequest) (*dto.ReplenishmentResponse, error) {
	if in.Limit < 0 {
		return nil, domain.Invalid("limit", "no puede ser negativo")
	}
	limit := in.Limit
	if limit == 0 {
		limit = DefaultReplenishmentLimit
	}
	products, err := uc.products.ListLowStock(ctx, limit)
	if err != nil {
		return nil, domain.Storage("listar stock bajo", err)
	}

	out := &dto.ReplenishmentResponse{
		Items:              make([]dto.ReplenishmentItem, 0, len(products)),
		TotalEstimatedCost: decimal.Zero,
	}
	for _, p := range products {
		threshold := p.EffectiveMinStock()
		qty := SuggestedOrder(p.Quantity, threshold)
		cost := p.CostPrice.Mul(decimal.NewFromInt(qty))
		out.Items = append(out.Items, dto.ReplenishmentItem{
			ProductID:         p.ID,
			ProductName:       p.Name,
			SKU:               p.SKU,
			Quantity:          p.Quantity,
			MinStock:          threshold,
			Backordered:       p.IsBackordered(),
			SuggestedQuantity: qty,
			UnitCost:          p.CostPrice,
			EstimatedCost:     cost,
		})
		out.TotalEstimatedCost = out.TotalEstimatedCost.Add(cost)
	}
	return out, nil
}
