package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// IsTracked indica si id es una ubicación rastreada (ni vacío ni el centinela vendor).
func IsTracked(id string) bool {
	return id != "" && !entity.IsVendor(id)
}

// AggregateDelta delta sobre el total del catálogo para una línea según el motivo.
//
//	Restock    +cantidad
//	Return     -cantidad
//	Transfer    0 (solo cambia la ubicación)
//	Adjustment  delta con signo indicado por el cliente
func AggregateDelta(reason string, line entity.MovementLine) int64 {
	switch reason {
	case entity.ReasonRestock:
		return line.Quantity
	case entity.ReasonReturn:
		return -line.Quantity
	case entity.ReasonAdjustment:
		return line.Delta
	}
	return 0
}

// AggregateDeltas agrupa por producto los deltas sobre el total; omite los que suman cero.
func AggregateDeltas(m *entity.StockMovement) []entity.StockDelta {
	sums := make(map[string]int64, len(m.Lines))
	for _, l := range m.Lines {
		sums[l.ProductID] += AggregateDelta(m.Reason, l)
	}
	out := make([]entity.StockDelta, 0, len(sums))
	for _, id := range m.ProductIDs() {
		if d := sums[id]; d != 0 {
			out = append(out, entity.StockDelta{ProductID: id, Delta: d})
		}
	}
	return out
}

// LocationDeltas deltas por ubicación. Cada motivo aplica deltas simétricos en los extremos rastreados:
// un Transfer resta en origen y suma en destino, de modo que el total no cambia.
func LocationDeltas(m *entity.StockMovement) []entity.StockDelta {
	type key struct{ product, location string }
	sums := make(map[key]int64)
	var order []key
	add := func(productID, locationID string, d int64) {
		if d == 0 || !IsTracked(locationID) {
			return
		}
		k := key{productID, locationID}
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		sums[k] += d
	}
	for _, l := range m.Lines {
		switch m.Reason {
		case entity.ReasonRestock:
			add(l.ProductID, m.ToLocationID, l.Quantity)
		case entity.ReasonReturn:
			add(l.ProductID, m.FromLocationID, -l.Quantity)
		case entity.ReasonTransfer:
			add(l.ProductID, m.FromLocationID, -l.Quantity)
			add(l.ProductID, m.ToLocationID, l.Quantity)
		case entity.ReasonAdjustment:
			add(l.ProductID, AdjustmentLocation(m.FromLocationID, m.ToLocationID), l.Delta)
		}
	}
	out := make([]entity.StockDelta, 0, len(order))
	for _, k := range order {
		if d := sums[k]; d != 0 {
			out = append(out, entity.StockDelta{ProductID: k.product, LocationID: k.location, Delta: d})
		}
	}
	return out
}

// AdjustmentLocation ubicación sobre la que recae un ajuste: destino si está rastreado, si no origen.
func AdjustmentLocation(from, to string) string {
	if IsTracked(to) {
		return to
	}
	if IsTracked(from) {
		return from
	}
	return ""
}

// TotalCost Σ(costo × cantidad) con el costo capturado en cada línea.
func TotalCost(lines []entity.MovementLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.CostPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total
}
