package till

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	domtill "github.com/jhoicas/retail-ledger/internal/domain/till"
)

// Summarize agrega los cierres del periodo por ubicación, por cajero y por día.
// Sin reportes devuelve un resumen completo en cero, nunca nil.
func (uc *UseCase) Summarize(ctx context.Context, in dto.TillSummaryRequest) (*dto.TillSummaryResponse, error) {
	period := in.Period
	if period == "" {
		period = domtill.PeriodToday
	}
	from, to, err := domtill.Window(period, uc.now())
	if err != nil {
		return nil, domain.Invalid("period", err.Error())
	}
	reports, err := uc.reports.ListClosed(ctx, entity.ReportFilter{
		StoreID:    in.StoreID,
		LocationID: in.LocationID,
		From:       from,
		To:         to,
	})
	if err != nil {
		return nil, domain.Storage("listar cierres", err)
	}

	out := &dto.TillSummaryResponse{
		Period:          period,
		From:            from,
		To:              to,
		TenderBreakdown: map[string]decimal.Decimal{},
		ByLocation:      []dto.LocationTillSummary{},
		ByStaff:         []dto.StaffTillSummary{},
		Daily:           []dto.DailyTillSummary{},
		TillTotals:      zeroTotals(),
	}

	byLocation := map[string]*dto.LocationTillSummary{}
	byStaff := map[string]*dto.StaffTillSummary{}
	byDay := map[string]*dto.DailyTillSummary{}
	for _, r := range reports {
		addReport(&out.TillTotals, r)
		switch r.Status {
		case entity.TillStatusReconciled:
			out.ReconciledCount++
		case entity.TillStatusVarianceNoted:
			out.VarianceCount++
		}
		for tender, amount := range r.TenderBreakdown {
			out.TenderBreakdown[tender] = out.TenderBreakdown[tender].Add(amount)
		}

		loc, ok := byLocation[r.LocationID]
		if !ok {
			loc = &dto.LocationTillSummary{LocationID: r.LocationID, LocationName: r.LocationName, TillTotals: zeroTotals()}
			byLocation[r.LocationID] = loc
		}
		addReport(&loc.TillTotals, r)

		staff, ok := byStaff[r.StaffID]
		if !ok {
			staff = &dto.StaffTillSummary{StaffID: r.StaffID, StaffName: r.StaffName, TillTotals: zeroTotals()}
			byStaff[r.StaffID] = staff
		}
		addReport(&staff.TillTotals, r)

		day := r.BusinessDate.Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &dto.DailyTillSummary{Date: day, TillTotals: zeroTotals()}
			byDay[day] = d
		}
		addReport(&d.TillTotals, r)
	}

	for _, v := range byLocation {
		out.ByLocation = append(out.ByLocation, *v)
	}
	sort.Slice(out.ByLocation, func(i, j int) bool { return out.ByLocation[i].LocationName < out.ByLocation[j].LocationName })
	for _, v := range byStaff {
		out.ByStaff = append(out.ByStaff, *v)
	}
	sort.Slice(out.ByStaff, func(i, j int) bool { return out.ByStaff[i].StaffName < out.ByStaff[j].StaffName })
	for _, v := range byDay {
		out.Daily = append(out.Daily, *v)
	}
	sort.Slice(out.Daily, func(i, j int) bool { return out.Daily[i].Date < out.Daily[j].Date })
	return out, nil
}

func zeroTotals() dto.TillTotals {
	return dto.TillTotals{
		TotalSales:    decimal.Zero,
		TotalExpected: decimal.Zero,
		TotalPhysical: decimal.Zero,
		TotalVariance: decimal.Zero,
	}
}

func addReport(t *dto.TillTotals, r *entity.EndOfDayReport) {
	t.ReportCount++
	t.TransactionCount += r.TransactionCount
	t.TotalSales = t.TotalSales.Add(r.TotalSales)
	t.TotalExpected = t.TotalExpected.Add(r.ExpectedClosingBalance)
	t.TotalPhysical = t.TotalPhysical.Add(r.PhysicalCount)
	t.TotalVariance = t.TotalVariance.Add(r.Variance)
}
