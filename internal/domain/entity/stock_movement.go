package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de movimiento de inventario.
const (
	ReasonRestock    = "Restock"    // entrada desde proveedor
	ReasonTransfer   = "Transfer"   // traslado entre ubicaciones
	ReasonReturn     = "Return"     // devolución al proveedor
	ReasonAdjustment = "Adjustment" // corrección manual (delta con signo)
)

// Estados de un movimiento. Hoy todo se crea como Received.
const (
	MovementStatusPending  = "Pending"
	MovementStatusSent     = "Sent"
	MovementStatusReceived = "Received"
)

// VendorLocation pseudo-ubicación: fuera de cualquier ubicación rastreada.
const VendorLocation = "vendor"

// IsVendor indica si id es el centinela de proveedor (sin distinguir mayúsculas).
func IsVendor(id string) bool {
	return strings.EqualFold(strings.TrimSpace(id), VendorLocation)
}

// ValidReason indica si r es uno de los cuatro motivos soportados.
func ValidReason(r string) bool {
	switch r {
	case ReasonRestock, ReasonTransfer, ReasonReturn, ReasonAdjustment:
		return true
	}
	return false
}

// ValidMovementStatus indica si s es un estado conocido.
func ValidMovementStatus(s string) bool {
	switch s {
	case MovementStatusPending, MovementStatusSent, MovementStatusReceived:
		return true
	}
	return false
}

// StockMovement entrada del ledger (append-mostly). Inmutable salvo Status/DateReceived.
// FromLocationID / ToLocationID vacíos o "vendor" significan fuera de las ubicaciones rastreadas.
type StockMovement struct {
	ID             string
	TransRef       string
	FromLocationID string
	ToLocationID   string
	StaffID        string
	Reason         string
	Status         string
	TotalCostPrice decimal.Decimal // Σ costo × cantidad al momento de escribir
	Lines          []MovementLine
	DateSent       time.Time
	DateReceived   *time.Time
	CreatedAt      time.Time
}

// MovementLine línea de producto. Quantity siempre ≥ 1; Delta solo difiere de +Quantity en ajustes.
type MovementLine struct {
	ProductID  string
	Quantity   int64
	Delta      int64
	ExpiryDate *time.Time
	CostPrice  decimal.Decimal
}

// TotalQuantity suma las cantidades de todas las líneas.
func (m *StockMovement) TotalQuantity() int64 {
	var total int64
	for _, l := range m.Lines {
		total += l.Quantity
	}
	return total
}

// ProductIDs devuelve los productos referenciados, sin repetir y en orden de aparición.
func (m *StockMovement) ProductIDs() []string {
	seen := make(map[string]struct{}, len(m.Lines))
	ids := make([]string, 0, len(m.Lines))
	for _, l := range m.Lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}

// MovementFilter filtros del listado paginado.
type MovementFilter struct {
	Status     string
	Reason     string
	LocationID string // coincide con origen o destino
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
