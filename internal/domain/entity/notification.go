package entity

import (
	"encoding/json"
	"time"
)

// EventTypeLowStock tipo del evento de stock bajo.
const EventTypeLowStock = "low-stock"

// LowStockProduct producto bajo su umbral en el momento del movimiento.
type LowStockProduct struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Quantity    int64  `json:"quantity"`
	MinStock    int64  `json:"minStock"`
	Backordered bool   `json:"backordered"`
}

// LowStockEvent un evento por movimiento (no por producto).
type LowStockEvent struct {
	Type        string            `json:"type"`
	MovementRef string            `json:"movementRef"`
	Products    []LowStockProduct `json:"products"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// Estados de una entrada del outbox.
const (
	OutboxStatusPending   = "pending"
	OutboxStatusDelivered = "delivered"
	OutboxStatusDead      = "dead"
)

// OutboxEntry intención de notificación escrita en la misma transacción del movimiento.
type OutboxEntry struct {
	ID            string
	EventType     string
	AggregateRef  string
	Payload       json.RawMessage
	Status        string
	Attempts      int
	LastError     string
	NextAttemptAt time.Time
	CreatedAt     time.Time
	DeliveredAt   *time.Time
}
