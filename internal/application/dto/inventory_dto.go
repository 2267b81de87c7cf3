package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementLineRequest línea de un movimiento. En ajustes Delta (con signo) reemplaza a Quantity.
type MovementLineRequest struct {
	ProductID  string     `json:"product_id"`
	Quantity   int64      `json:"quantity"`
	Delta      *int64     `json:"delta,omitempty"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
}

// CreateMovementRequest body para POST /api/inventory/movements.
// "vendor" en from/to significa fuera de las ubicaciones rastreadas.
type CreateMovementRequest struct {
	FromLocationID string                `json:"from_location_id"`
	ToLocationID   string                `json:"to_location_id"`
	Reason         string                `json:"reason"`
	StaffID        string                `json:"staff_id,omitempty"`
	LineItems      []MovementLineRequest `json:"line_items"`
}

// MovementListRequest filtros de GET /api/inventory/movements.
type MovementListRequest struct {
	Status     string `query:"status" validate:"omitempty,oneof=Pending Sent Received"`
	Reason     string `query:"reason" validate:"omitempty,oneof=Restock Transfer Return Adjustment"`
	LocationID string `query:"location_id"`
	DateFrom   string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo     string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	PageRequest
}

// MovementLineResponse línea con nombre y costo actuales del catálogo.
type MovementLineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Delta       int64           `json:"delta"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
}

// MovementResponse salida de un movimiento del ledger.
type MovementResponse struct {
	ID             string                 `json:"id"`
	TransRef       string                 `json:"trans_ref"`
	FromLocationID string                 `json:"from_location_id"`
	FromLocation   string                 `json:"from_location"`
	ToLocationID   string                 `json:"to_location_id"`
	ToLocation     string                 `json:"to_location"`
	StaffID        string                 `json:"staff_id,omitempty"`
	Reason         string                 `json:"reason"`
	Status         string                 `json:"status"`
	TotalCostPrice decimal.Decimal        `json:"total_cost_price"`
	TotalQuantity  int64                  `json:"total_quantity"`
	LineItems      []MovementLineResponse `json:"line_items"`
	DateSent       time.Time              `json:"date_sent"`
	DateReceived   *time.Time             `json:"date_received,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ExpiryListRequest filtros de GET /api/inventory/expiry.
type ExpiryListRequest struct {
	LocationID         string `query:"location_id"`
	ExpiringWithinDays int    `query:"expiring_within_days" validate:"min=0,max=3650"`
}

// ExpiryItemResponse lote con vencimiento (un lote = una línea de un movimiento).
type ExpiryItemResponse struct {
	BatchID      string          `json:"batch_id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	Quantity     int64           `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	DateReceived *time.Time      `json:"date_received,omitempty"`
	Status       string          `json:"status"`
	Reason       string          `json:"reason"`
}

// ExpiryListResponse proyección de vencimientos ordenada por fecha ascendente.
type ExpiryListResponse struct {
	Items []ExpiryItemResponse `json:"items"`
}

// StockRequest filtros de GET /api/inventory/stock.
type StockRequest struct {
	LocationID string `query:"location_id" validate:"required"`
}

// StockResponse saldo de un producto en una ubicación.
type StockResponse struct {
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	LocationID   string    `json:"location_id"`
	LocationName string    `json:"location_name"`
	Quantity     int64     `json:"quantity"`
	Backordered  bool      `json:"backordered"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StockListResponse saldos de una ubicación.
type StockListResponse struct {
	Items []StockResponse `json:"items"`
}

// LocationEntry entrada del directorio de ubicaciones.
type LocationEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LocationDirectoryResponse volcado del directorio (centinelas incluidos).
type LocationDirectoryResponse struct {
	Items []LocationEntry `json:"items"`
}

// ReplenishmentRequest query de la lista de reposición.
type ReplenishmentRequest struct {
	Limit int `query:"limit" validate:"min=0,max=500"`
}

// ReplenishmentItem producto bajo umbral con la cantidad sugerida de pedido.
type ReplenishmentItem struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	SKU               string          `json:"sku,omitempty"`
	Quantity          int64           `json:"quantity"`
	MinStock          int64           `json:"min_stock"`
	Backordered       bool            `json:"backordered"`
	SuggestedQuantity int64           `json:"suggested_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
}

// ReplenishmentResponse lista de reposición. Items nunca es nil.
type ReplenishmentResponse struct {
	Items              []ReplenishmentItem `json:"items"`
	TotalEstimatedCost decimal.Decimal     `json:"total_estimated_cost"`
}
