package entity

import "time"

// Stock representa la cantidad de un producto en una ubicación (tabla materializada por movimientos).
type Stock struct {
	ProductID  string
	LocationID string
	Quantity   int64
	UpdatedAt  time.Time
}

// StockDelta incremento atómico a aplicar sobre el catálogo o sobre una ubicación.
// LocationID vacío significa el total agregado del producto.
type StockDelta struct {
	ProductID  string
	LocationID string
	Delta      int64
}
