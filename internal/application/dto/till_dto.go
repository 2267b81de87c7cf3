package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenTillRequest body para POST /api/tills/open. El saldo de apertura puede ser negativo.
type OpenTillRequest struct {
	StoreID        string           `json:"store_id" validate:"required"`
	LocationID     string           `json:"location_id" validate:"required"`
	StaffID        string           `json:"staff_id" validate:"required"`
	StaffName      string           `json:"staff_name" validate:"required,max=200"`
	OpeningBalance *decimal.Decimal `json:"opening_balance" validate:"required"`
}

// CloseTillRequest body para POST /api/tills/close.
type CloseTillRequest struct {
	LocationID    string           `json:"location_id" validate:"required"`
	PhysicalCount *decimal.Decimal `json:"physical_count" validate:"required"`
	ClosedBy      string           `json:"closed_by" validate:"required"`
	ClosingNotes  string           `json:"closing_notes" validate:"max=2000"`
}

// TillSummaryRequest filtros de GET /api/tills/summary.
type TillSummaryRequest struct {
	Period     string `query:"period" validate:"omitempty,oneof=today yesterday thisWeek thisMonth thisYear day week month year"`
	LocationID string `query:"location_id"`
	StoreID    string `query:"store_id"`
}

// TillResponse salida de un reporte de caja.
type TillResponse struct {
	ID                     string                     `json:"id"`
	StoreID                string                     `json:"store_id"`
	LocationID             string                     `json:"location_id"`
	LocationName           string                     `json:"location_name"`
	StaffID                string                     `json:"staff_id"`
	StaffName              string                     `json:"staff_name"`
	BusinessDate           string                     `json:"business_date"`
	OpeningBalance         decimal.Decimal            `json:"opening_balance"`
	OpenedAt               time.Time                  `json:"opened_at"`
	ClosedAt               *time.Time                 `json:"closed_at"`
	PhysicalCount          decimal.Decimal            `json:"physical_count"`
	TotalSales             decimal.Decimal            `json:"total_sales"`
	TransactionCount       int                        `json:"transaction_count"`
	TenderBreakdown        map[string]decimal.Decimal `json:"tender_breakdown"`
	ExpectedClosingBalance decimal.Decimal            `json:"expected_closing_balance"`
	Variance               decimal.Decimal            `json:"variance"`
	VariancePercentage     decimal.Decimal            `json:"variance_percentage"`
	Status                 string                     `json:"status"`
	ClosingNotes           string                     `json:"closing_notes,omitempty"`
	ClosedBy               string                     `json:"closed_by,omitempty"`
}

// TillTotals acumulados comunes a los agrupamientos del resumen.
type TillTotals struct {
	ReportCount      int             `json:"report_count"`
	TransactionCount int             `json:"transaction_count"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	TotalExpected    decimal.Decimal `json:"total_expected"`
	TotalPhysical    decimal.Decimal `json:"total_physical"`
	TotalVariance    decimal.Decimal `json:"total_variance"`
}

// LocationTillSummary agrupado por ubicación.
type LocationTillSummary struct {
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
	TillTotals
}

// StaffTillSummary agrupado por cajero.
type StaffTillSummary struct {
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name"`
	TillTotals
}

// DailyTillSummary agrupado por día calendario (YYYY-MM-DD).
type DailyTillSummary struct {
	Date string `json:"date"`
	TillTotals
}

// TillSummaryResponse resumen de cierres. Nunca nulo: sin reportes todo queda en cero y listas vacías.
type TillSummaryResponse struct {
	Period          string                     `json:"period"`
	From            time.Time                  `json:"from"`
	To              time.Time                  `json:"to"`
	ReconciledCount int                        `json:"reconciled_count"`
	VarianceCount   int                        `json:"variance_count"`
	TenderBreakdown map[string]decimal.Decimal `json:"tender_breakdown"`
	ByLocation      []LocationTillSummary      `json:"by_location"`
	ByStaff         []StaffTillSummary         `json:"by_staff"`
	Daily           []DailyTillSummary         `json:"daily"`
	TillTotals
}
