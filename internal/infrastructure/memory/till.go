package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var (
	_ repository.EndOfDayReportRepository = (*EndOfDayReportRepository)(nil)
	_ repository.TransactionLog           = (*TransactionLog)(nil)
)

// EndOfDayReportRepository sesiones de caja en memoria.
type EndOfDayReportRepository struct{ s *Store }

// Reports devuelve el repositorio de cierres de caja.
func (s *Store) Reports() *EndOfDayReportRepository { return &EndOfDayReportRepository{s: s} }

func (r *EndOfDayReportRepository) Create(_ context.Context, rep *entity.EndOfDayReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reports {
		if existing.ClosedAt == nil && existing.LocationID == rep.LocationID && existing.BusinessDate.Equal(rep.BusinessDate) {
			return domain.Conflict("ya existe una caja abierta para la ubicación en el día")
		}
	}
	r.s.reports[rep.ID] = cloneReport(*rep)
	return nil
}

func (r *EndOfDayReportRepository) GetByID(_ context.Context, id string) (*entity.EndOfDayReport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rep, ok := r.s.reports[id]
	if !ok {
		return nil, nil
	}
	rep = cloneReport(rep)
	return &rep, nil
}

func (r *EndOfDayReportRepository) FindOpen(_ context.Context, locationID string, since time.Time) (*entity.EndOfDayReport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *entity.EndOfDayReport
	for _, rep := range r.s.reports {
		if rep.ClosedAt != nil || rep.LocationID != locationID || rep.BusinessDate.Before(since) {
			continue
		}
		if latest == nil || rep.OpenedAt.After(latest.OpenedAt) {
			c := cloneReport(rep)
			latest = &c
		}
	}
	return latest, nil
}

func (r *EndOfDayReportRepository) Close(_ context.Context, rep *entity.EndOfDayReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.reports[rep.ID]
	if !ok {
		return domain.NotFound("reporte de caja", rep.ID)
	}
	if existing.ClosedAt != nil {
		return domain.Conflict("la caja ya fue cerrada")
	}
	r.s.reports[rep.ID] = cloneReport(*rep)
	return nil
}

func (r *EndOfDayReportRepository) ListClosed(_ context.Context, f entity.ReportFilter) ([]*entity.EndOfDayReport, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.EndOfDayReport, 0)
	for _, rep := range r.s.reports {
		if rep.ClosedAt == nil {
			continue
		}
		if f.StoreID != "" && rep.StoreID != f.StoreID {
			continue
		}
		if f.LocationID != "" && rep.LocationID != f.LocationID {
			continue
		}
		if !f.From.IsZero() && rep.ClosedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && rep.ClosedAt.After(f.To) {
			continue
		}
		c := cloneReport(rep)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClosedAt.Before(*out[j].ClosedAt) })
	return out, nil
}

func cloneReport(rep entity.EndOfDayReport) entity.EndOfDayReport {
	breakdown := make(map[string]decimal.Decimal, len(rep.TenderBreakdown))
	for k, v := range rep.TenderBreakdown {
		breakdown[k] = v
	}
	rep.TenderBreakdown = breakdown
	if rep.ClosedAt != nil {
		t := *rep.ClosedAt
		rep.ClosedAt = &t
	}
	return rep
}

// TransactionLog log de ventas en memoria.
type TransactionLog struct{ s *Store }

// Transactions devuelve el log de transacciones.
func (s *Store) Transactions() *TransactionLog { return &TransactionLog{s: s} }

func (l *TransactionLog) FindCompleted(_ context.Context, q entity.TransactionQuery) ([]*entity.Transaction, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	out := make([]*entity.Transaction, 0)
	for _, tx := range l.s.transactions {
		if !strings.EqualFold(tx.Status, entity.TransactionStatusCompleted) {
			continue
		}
		if tx.CreatedAt.Before(q.Since) || (!q.Until.IsZero() && tx.CreatedAt.After(q.Until)) {
			continue
		}
		if !matchesLocation(tx, q) {
			continue
		}
		tx := tx
		tx.Tenders = append([]entity.TenderSplit(nil), tx.Tenders...)
		out = append(out, &tx)
	}
	return out, nil
}

// matchesLocation une por ID estable; los registros históricos sin ID se unen por nombre
// (o por el ID guardado en el campo de nombre).
func matchesLocation(tx entity.Transaction, q entity.TransactionQuery) bool {
	if tx.LocationID != "" {
		return q.LocationID != "" && tx.LocationID == q.LocationID
	}
	if q.LocationName != "" && sameLocation(tx.Location, q.LocationName) {
		return true
	}
	return q.LocationID != "" && sameLocation(tx.Location, q.LocationID)
}
