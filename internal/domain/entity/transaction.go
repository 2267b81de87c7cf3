package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatusCompleted único estado que cuenta para la conciliación.
const TransactionStatusCompleted = "completed"

// Transaction venta del punto de venta (solo lectura para este núcleo).
// Los registros históricos guardan solo el nombre de la ubicación; los nuevos también LocationID.
type Transaction struct {
	ID         string
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	TenderType string        // forma legada: un medio de pago por transacción
	Tenders    []TenderSplit // pago dividido; si existe tiene prioridad sobre TenderType
	LocationID string
	Location   string
	Status     string
	CreatedAt  time.Time
}

// TenderSplit parte de un pago dividido.
type TenderSplit struct {
	TenderName string          `json:"tenderName" bson:"tenderName"`
	Amount     decimal.Decimal `json:"amount" bson:"amount"`
}

// TransactionQuery parámetros de búsqueda en el log de transacciones.
type TransactionQuery struct {
	LocationID   string
	LocationName string
	Since        time.Time
	Until        time.Time
}
