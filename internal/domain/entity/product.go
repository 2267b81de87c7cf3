package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinStock umbral de alerta cuando el catálogo no define uno.
const DefaultMinStock int64 = 10

// Product representa un producto del catálogo. El ledger solo aplica deltas a Quantity.
// Quantity es el total agregado (todas las ubicaciones) y puede ser negativo.
type Product struct {
	ID         string
	Name       string
	SKU        string
	Quantity   int64
	MinStock   int64
	CostPrice  decimal.Decimal
	ExpiryDate *time.Time // vencimiento por defecto del producto (opcional)
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsBackordered indica stock negativo (vendido o despachado por encima de lo registrado).
func (p *Product) IsBackordered() bool {
	return p.Quantity < 0
}

// IsBelowMinStock indica si el producto cae bajo su umbral de alerta (incluye negativos).
func (p *Product) IsBelowMinStock() bool {
	return p.Quantity < p.EffectiveMinStock()
}

// Shortfall unidades que faltan para llegar al umbral; 0 si no está bajo umbral.
func (p *Product) Shortfall() int64 {
	if !p.IsBelowMinStock() {
		return 0
	}
	return p.EffectiveMinStock() - p.Quantity
}

// EffectiveMinStock devuelve MinStock o el valor por defecto si no está definido.
func (p *Product) EffectiveMinStock() int64 {
	if p.MinStock <= 0 {
		return DefaultMinStock
	}
	return p.MinStock
}
