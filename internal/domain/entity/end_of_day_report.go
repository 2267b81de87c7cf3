package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del reporte de cierre de caja. OPEN es el único no terminal.
const (
	TillStatusOpen          = "OPEN"
	TillStatusReconciled    = "RECONCILED"
	TillStatusVarianceNoted = "VARIANCE_NOTED"
)

// EndOfDayReport sesión de caja por ubicación y día. Se crea al abrir y se cierra una sola vez.
type EndOfDayReport struct {
	ID                     string
	StoreID                string
	LocationID             string
	LocationName           string
	StaffID                string
	StaffName              string
	BusinessDate           time.Time // inicio del día calendario de apertura
	OpeningBalance         decimal.Decimal
	OpenedAt               time.Time
	ClosedAt               *time.Time
	PhysicalCount          decimal.Decimal
	TotalSales             decimal.Decimal
	TransactionCount       int
	TenderBreakdown        map[string]decimal.Decimal
	ExpectedClosingBalance decimal.Decimal
	Variance               decimal.Decimal
	VariancePercentage     decimal.Decimal
	Status                 string
	ClosingNotes           string
	ClosedBy               string
}

// IsOpen indica si la sesión sigue abierta.
func (r *EndOfDayReport) IsOpen() bool {
	return r.ClosedAt == nil && r.Status == TillStatusOpen
}

// ReportFilter filtros para el resumen de cierres.
type ReportFilter struct {
	StoreID    string
	LocationID string
	From       time.Time
	To         time.Time
}
