package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.EndOfDayReportRepository = (*EndOfDayReportRepo)(nil)

const reportColumns = `id, store_id, location_id, location_name, staff_id, staff_name, business_date,
	opening_balance, opened_at, closed_at, physical_count, total_sales, transaction_count, tender_breakdown,
	expected_closing_balance, variance, variance_percentage, status, closing_notes, closed_by`

// EndOfDayReportRepo sesiones de caja sobre PostgreSQL.
// El índice único parcial uq_end_of_day_reports_open garantiza una sola caja abierta por (ubicación, día).
type EndOfDayReportRepo struct {
	q Querier
}

// NewEndOfDayReportRepository construye el adaptador.
func NewEndOfDayReportRepository(q Querier) *EndOfDayReportRepo {
	return &EndOfDayReportRepo{q: q}
}

// Create inserta la sesión abierta.
func (r *EndOfDayReportRepo) Create(ctx context.Context, rep *entity.EndOfDayReport) error {
	query := `
		INSERT INTO end_of_day_reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		rep.ID, rep.StoreID, rep.LocationID, rep.LocationName, rep.StaffID, rep.StaffName, rep.BusinessDate,
		rep.OpeningBalance, rep.OpenedAt, rep.ClosedAt, rep.PhysicalCount, rep.TotalSales, rep.TransactionCount,
		breakdownOrEmpty(rep.TenderBreakdown), rep.ExpectedClosingBalance, rep.Variance, rep.VariancePercentage,
		rep.Status, rep.ClosingNotes, rep.ClosedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("ya existe una caja abierta para la ubicación en el día")
		}
		return wrap("insert end of day report", err)
	}
	return nil
}

// GetByID obtiene el reporte; nil si no existe.
func (r *EndOfDayReportRepo) GetByID(ctx context.Context, id string) (*entity.EndOfDayReport, error) {
	rep, err := scanReport(r.q.QueryRow(ctx, `SELECT `+reportColumns+` FROM end_of_day_reports WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get end of day report", err)
	}
	return rep, nil
}

// FindOpen la sesión abierta más reciente de la ubicación con business_date >= since.
func (r *EndOfDayReportRepo) FindOpen(ctx context.Context, locationID string, since time.Time) (*entity.EndOfDayReport, error) {
	query := `
		SELECT ` + reportColumns + ` FROM end_of_day_reports
		WHERE location_id = $1 AND closed_at IS NULL AND business_date >= $2
		ORDER BY opened_at DESC
		LIMIT 1`
	rep, err := scanReport(r.q.QueryRow(ctx, query, locationID, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("find open till", err)
	}
	return rep, nil
}

// Close escribe el estado terminal solo si la sesión sigue abierta.
func (r *EndOfDayReportRepo) Close(ctx context.Context, rep *entity.EndOfDayReport) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE end_of_day_reports SET
			location_name = $2, closed_at = $3, physical_count = $4, total_sales = $5, transaction_count = $6,
			tender_breakdown = $7, expected_closing_balance = $8, variance = $9, variance_percentage = $10,
			status = $11, closing_notes = $12, closed_by = $13
		WHERE id = $1 AND closed_at IS NULL`,
		rep.ID, rep.LocationName, rep.ClosedAt, rep.PhysicalCount, rep.TotalSales, rep.TransactionCount,
		breakdownOrEmpty(rep.TenderBreakdown), rep.ExpectedClosingBalance, rep.Variance, rep.VariancePercentage,
		rep.Status, rep.ClosingNotes, rep.ClosedBy,
	)
	if err != nil {
		return wrap("close end of day report", err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.GetByID(ctx, rep.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.NotFound("reporte de caja", rep.ID)
		}
		return domain.Conflict("la caja ya fue cerrada")
	}
	return nil
}

// ListClosed reportes cerrados con closed_at en [From, To], en orden de cierre.
func (r *EndOfDayReportRepo) ListClosed(ctx context.Context, f entity.ReportFilter) ([]*entity.EndOfDayReport, error) {
	query := `SELECT ` + reportColumns + ` FROM end_of_day_reports WHERE closed_at IS NOT NULL`
	var args []any
	pos := 1
	if f.StoreID != "" {
		query += fmt.Sprintf(" AND store_id = $%d", pos)
		args = append(args, f.StoreID)
		pos++
	}
	if f.LocationID != "" {
		query += fmt.Sprintf(" AND location_id = $%d", pos)
		args = append(args, f.LocationID)
		pos++
	}
	if !f.From.IsZero() {
		query += fmt.Sprintf(" AND closed_at >= $%d", pos)
		args = append(args, f.From)
		pos++
	}
	if !f.To.IsZero() {
		query += fmt.Sprintf(" AND closed_at <= $%d", pos)
		args = append(args, f.To)
	}
	query += " ORDER BY closed_at"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list closed reports", err)
	}
	defer rows.Close()
	list := make([]*entity.EndOfDayReport, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, wrap("scan end of day report", err)
		}
		list = append(list, rep)
	}
	return list, wrap("list closed reports", rows.Err())
}

func breakdownOrEmpty(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return map[string]decimal.Decimal{}
	}
	return m
}

func scanReport(row pgx.Row) (*entity.EndOfDayReport, error) {
	var rep entity.EndOfDayReport
	err := row.Scan(
		&rep.ID, &rep.StoreID, &rep.LocationID, &rep.LocationName, &rep.StaffID, &rep.StaffName, &rep.BusinessDate,
		&rep.OpeningBalance, &rep.OpenedAt, &rep.ClosedAt, &rep.PhysicalCount, &rep.TotalSales, &rep.TransactionCount,
		&rep.TenderBreakdown, &rep.ExpectedClosingBalance, &rep.Variance, &rep.VariancePercentage,
		&rep.Status, &rep.ClosingNotes, &rep.ClosedBy,
	)
	if err != nil {
		return nil, err
	}
	if rep.TenderBreakdown == nil {
		rep.TenderBreakdown = map[string]decimal.Decimal{}
	}
	return &rep, nil
}
