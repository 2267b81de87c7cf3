// Package till contiene la aritmética pura de conciliación de caja y las ventanas de periodo.
package till

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// UnspecifiedTender nombre usado cuando una transacción legada no trae medio de pago.
const UnspecifiedTender = "Unspecified"

// VarianceTolerance diferencia absoluta (en unidades de moneda) aceptada como conciliada.
// Regla de negocio fija; candidata a configuración.
var VarianceTolerance = decimal.NewFromInt(1)

var hundred = decimal.NewFromInt(100)

// Totals agregados de las transacciones de una sesión.
type Totals struct {
	TotalSales       decimal.Decimal
	TransactionCount int
	TenderBreakdown  map[string]decimal.Decimal
}

// Aggregate suma las transacciones completadas con createdAt en [openedAt, closedAt].
// closedAt cero significa sin límite superior.
func Aggregate(txs []*entity.Transaction, openedAt, closedAt time.Time) Totals {
	t := Totals{TotalSales: decimal.Zero, TenderBreakdown: map[string]decimal.Decimal{}}
	for _, tx := range txs {
		if tx == nil || !strings.EqualFold(tx.Status, entity.TransactionStatusCompleted) {
			continue
		}
		if tx.CreatedAt.Before(openedAt) {
			continue
		}
		if !closedAt.IsZero() && tx.CreatedAt.After(closedAt) {
			continue
		}
		t.TotalSales = t.TotalSales.Add(tx.Total)
		t.TransactionCount++

		// El pago dividido tiene prioridad; el campo legado se ignora para esa transacción.
		if len(tx.Tenders) > 0 {
			for _, split := range tx.Tenders {
				addTender(t.TenderBreakdown, split.TenderName, split.Amount)
			}
			continue
		}
		addTender(t.TenderBreakdown, tx.TenderType, tx.AmountPaid)
	}
	return t
}

func addTender(breakdown map[string]decimal.Decimal, name string, amount decimal.Decimal) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UnspecifiedTender
	}
	breakdown[name] = breakdown[name].Add(amount)
}

// Result valores calculados al cerrar una caja.
type Result struct {
	Totals
	ExpectedClosingBalance decimal.Decimal
	Variance               decimal.Decimal
	VariancePercentage     decimal.Decimal
	Status                 string
}

// Reconcile calcula saldo esperado, diferencia y estado terminal.
//
//	esperado   = apertura + ventas
//	diferencia = conteo físico - esperado
//	%          = diferencia / esperado × 100 (0 si esperado = 0)
func Reconcile(openingBalance, physicalCount decimal.Decimal, totals Totals) Result {
	expected := openingBalance.Add(totals.TotalSales)
	variance := physicalCount.Sub(expected)
	pct := decimal.Zero
	if !expected.IsZero() {
		pct = variance.Div(expected).Mul(hundred).Round(2)
	}
	status := entity.TillStatusVarianceNoted
	if variance.Abs().LessThan(VarianceTolerance) {
		status = entity.TillStatusReconciled
	}
	return Result{
		Totals:                 totals,
		ExpectedClosingBalance: expected,
		Variance:               variance,
		VariancePercentage:     pct,
		Status:                 status,
	}
}
