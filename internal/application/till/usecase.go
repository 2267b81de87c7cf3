package till

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/location"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	domtill "github.com/jhoicas/retail-ledger/internal/domain/till"
)

// Metrics contadores de caja. Implementado por infrastructure/metrics.
type Metrics interface {
	TillOpened()
	TillClosed(status string, variance float64)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) TillOpened()                {}
func (NopMetrics) TillClosed(string, float64) {}

// UseCase máquina de estados de la caja: OPEN → RECONCILED | VARIANCE_NOTED. Nunca se reabre.
type UseCase struct {
	reports      repository.EndOfDayReportRepository
	transactions repository.TransactionLog
	directory    *location.Directory
	metrics      Metrics
	log          zerolog.Logger
	now          func() time.Time
}

// Option configura el caso de uso.
type Option func(*UseCase)

// WithMetrics registra contadores de caja.
func WithMetrics(m Metrics) Option { return func(uc *UseCase) { uc.metrics = m } }

// WithLogger asigna el logger.
func WithLogger(l zerolog.Logger) Option {
	return func(uc *UseCase) { uc.log = l.With().Str("component", "till").Logger() }
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option { return func(uc *UseCase) { uc.now = now } }

// NewUseCase construye el caso de uso.
func NewUseCase(
	reports repository.EndOfDayReportRepository,
	transactions repository.TransactionLog,
	directory *location.Directory,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		reports:      reports,
		transactions: transactions,
		directory:    directory,
		metrics:      NopMetrics{},
		log:          zerolog.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Open crea la sesión del día para la ubicación. A lo sumo una abierta por (ubicación, día).
func (uc *UseCase) Open(ctx context.Context, in dto.OpenTillRequest) (*dto.TillResponse, error) {
	switch {
	case strings.TrimSpace(in.StoreID) == "":
		return nil, domain.Invalid("store_id", "requerido")
	case strings.TrimSpace(in.LocationID) == "":
		return nil, domain.Invalid("location_id", "requerido")
	case strings.TrimSpace(in.StaffID) == "":
		return nil, domain.Invalid("staff_id", "requerido")
	case strings.TrimSpace(in.StaffName) == "":
		return nil, domain.Invalid("staff_name", "requerido")
	case in.OpeningBalance == nil:
		return nil, domain.Invalid("opening_balance", "requerido")
	}

	now := uc.now()
	today := domtill.StartOfDay(now)
	existing, err := uc.reports.FindOpen(ctx, in.LocationID, today)
	if err != nil {
		return nil, domain.Storage("buscar caja abierta", err)
	}
	if existing != nil {
		return nil, domain.Conflict("ya existe una caja abierta para la ubicación en el día")
	}

	report := &entity.EndOfDayReport{
		ID:              uuid.New().String(),
		StoreID:         in.StoreID,
		LocationID:      in.LocationID,
		LocationName:    uc.locationName(ctx, in.LocationID, in.StoreID),
		StaffID:         in.StaffID,
		StaffName:       in.StaffName,
		BusinessDate:    today,
		OpeningBalance:  *in.OpeningBalance,
		OpenedAt:        now,
		TenderBreakdown: map[string]decimal.Decimal{},
		Status:          entity.TillStatusOpen,
	}
	if err := uc.reports.Create(ctx, report); err != nil {
		return nil, domain.Storage("abrir caja", err)
	}
	uc.metrics.TillOpened()
	uc.log.Info().Str("till_id", report.ID).Str("location_id", report.LocationID).Msg("caja abierta")
	return toTillResponse(report), nil
}

// Close concilia la sesión abierta más reciente de la ubicación (del día en curso) contra las
// transacciones completadas desde la apertura y escribe el estado terminal.
func (uc *UseCase) Close(ctx context.Context, in dto.CloseTillRequest) (*dto.TillResponse, error) {
	switch {
	case strings.TrimSpace(in.LocationID) == "":
		return nil, domain.Invalid("location_id", "requerido")
	case in.PhysicalCount == nil:
		return nil, domain.Invalid("physical_count", "requerido")
	case strings.TrimSpace(in.ClosedBy) == "":
		return nil, domain.Invalid("closed_by", "requerido")
	}

	now := uc.now()
	report, err := uc.reports.FindOpen(ctx, in.LocationID, domtill.StartOfDay(now))
	if err != nil {
		return nil, domain.Storage("buscar caja abierta", err)
	}
	if report == nil {
		return nil, domain.NotFound("caja abierta", in.LocationID)
	}

	name := uc.locationName(ctx, report.LocationID, report.StoreID)
	txs, err := uc.transactions.FindCompleted(ctx, entity.TransactionQuery{
		LocationID:   report.LocationID,
		LocationName: name,
		Since:        report.OpenedAt,
		Until:        now,
	})
	if err != nil {
		return nil, domain.Storage("consultar transacciones", err)
	}

	result := domtill.Reconcile(report.OpeningBalance, *in.PhysicalCount, domtill.Aggregate(txs, report.OpenedAt, now))
	report.LocationName = name
	report.ClosedAt = &now
	report.PhysicalCount = *in.PhysicalCount
	report.TotalSales = result.TotalSales
	report.TransactionCount = result.TransactionCount
	report.TenderBreakdown = result.TenderBreakdown
	report.ExpectedClosingBalance = result.ExpectedClosingBalance
	report.Variance = result.Variance
	report.VariancePercentage = result.VariancePercentage
	report.Status = result.Status
	report.ClosingNotes = in.ClosingNotes
	report.ClosedBy = in.ClosedBy

	if err := uc.reports.Close(ctx, report); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, domain.Storage("cerrar caja", err)
	}
	variance, _ := result.Variance.Float64()
	uc.metrics.TillClosed(report.Status, variance)
	uc.log.Info().
		Str("till_id", report.ID).
		Str("status", report.Status).
		Str("variance", report.Variance.String()).
		Int("transactions", report.TransactionCount).
		Msg("caja cerrada")
	return toTillResponse(report), nil
}

// Get obtiene un reporte por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.TillResponse, error) {
	report, err := uc.reports.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("obtener caja", err)
	}
	if report == nil {
		return nil, domain.NotFound("reporte de caja", id)
	}
	return toTillResponse(report), nil
}

// GetOpen obtiene la caja abierta del día para la ubicación.
func (uc *UseCase) GetOpen(ctx context.Context, locationID string) (*dto.TillResponse, error) {
	report, err := uc.reports.FindOpen(ctx, locationID, domtill.StartOfDay(uc.now()))
	if err != nil {
		return nil, domain.Storage("buscar caja abierta", err)
	}
	if report == nil {
		return nil, domain.NotFound("caja abierta", locationID)
	}
	return toTillResponse(report), nil
}

func (uc *UseCase) locationName(ctx context.Context, locationID, storeID string) string {
	cache, err := uc.directory.Build(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("directorio de ubicaciones no disponible")
		cache = location.NewCache(nil)
	}
	return uc.directory.ResolveDestination(ctx, cache, locationID, storeID)
}

func toTillResponse(r *entity.EndOfDayReport) *dto.TillResponse {
	breakdown := make(map[string]decimal.Decimal, len(r.TenderBreakdown))
	for k, v := range r.TenderBreakdown {
		breakdown[k] = v
	}
	return &dto.TillResponse{
		ID:                     r.ID,
		StoreID:                r.StoreID,
		LocationID:             r.LocationID,
		LocationName:           r.LocationName,
		StaffID:                r.StaffID,
		StaffName:              r.StaffName,
		BusinessDate:           r.BusinessDate.Format("2006-01-02"),
		OpeningBalance:         r.OpeningBalance,
		OpenedAt:               r.OpenedAt,
		ClosedAt:               r.ClosedAt,
		PhysicalCount:          r.PhysicalCount,
		TotalSales:             r.TotalSales,
		TransactionCount:       r.TransactionCount,
		TenderBreakdown:        breakdown,
		ExpectedClosingBalance: r.ExpectedClosingBalance,
		Variance:               r.Variance,
		VariancePercentage:     r.VariancePercentage,
		Status:                 r.Status,
		ClosingNotes:           r.ClosingNotes,
		ClosedBy:               r.ClosedBy,
	}
}
