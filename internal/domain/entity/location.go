package entity

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Store agregado dueño de las ubicaciones (sucursales, bodegas, cajas).
type Store struct {
	ID        string
	Name      string
	Locations []Location
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location subdocumento de una tienda. El ledger y la caja solo lo leen.
type Location struct {
	ID       string
	StoreID  string
	Name     string
	IsActive bool
}

// IsIdentifier indica si s tiene forma de identificador: UUID o 24 caracteres hexadecimales (ObjectID heredado).
func IsIdentifier(s string) bool {
	if len(s) == 24 {
		_, err := hex.DecodeString(s)
		return err == nil
	}
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
