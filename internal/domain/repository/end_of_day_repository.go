package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// EndOfDayReportRepository puerto de persistencia de las sesiones de caja.
// A lo sumo un reporte abierto por (ubicación, día): Create devuelve ConflictError si ya existe.
type EndOfDayReportRepository interface {
	Create(ctx context.Context, report *entity.EndOfDayReport) error
	GetByID(ctx context.Context, id string) (*entity.EndOfDayReport, error)
	// FindOpen devuelve el reporte abierto más reciente de la ubicación con business_date >= since.
	FindOpen(ctx context.Context, locationID string, since time.Time) (*entity.EndOfDayReport, error)
	// Close escribe el estado terminal; devuelve ConflictError si el reporte ya estaba cerrado.
	Close(ctx context.Context, report *entity.EndOfDayReport) error
	ListClosed(ctx context.Context, filter entity.ReportFilter) ([]*entity.EndOfDayReport, error)
}
