package postgres

import (
	"context"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.TransactionLog = (*TransactionLogRepo)(nil)

// TransactionLogRepo ventas del punto de venta guardadas en pos_transactions (solo lectura).
type TransactionLogRepo struct {
	q Querier
}

// NewTransactionLog construye el adaptador.
func NewTransactionLog(q Querier) *TransactionLogRepo {
	return &TransactionLogRepo{q: q}
}

// Insert registra una venta (seed e integración; el núcleo nunca escribe ventas).
func (r *TransactionLogRepo) Insert(ctx context.Context, tx *entity.Transaction) error {
	tenders := tx.Tenders
	if tenders == nil {
		tenders = []entity.TenderSplit{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO pos_transactions (id, total, amount_paid, tender_type, tenders, location_id, location, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tx.ID, tx.Total, tx.AmountPaid, tx.TenderType, tenders, tx.LocationID, tx.Location, tx.Status, tx.CreatedAt)
	return wrap("insert pos transaction", err)
}

// FindCompleted ventas completadas de la ubicación en [Since, Until].
// Se une por location_id; los registros sin location_id se unen por nombre (o por el ID guardado como nombre).
func (r *TransactionLogRepo) FindCompleted(ctx context.Context, q entity.TransactionQuery) ([]*entity.Transaction, error) {
	query := `
		SELECT id, total, amount_paid, tender_type, tenders, location_id, location, status, created_at
		FROM pos_transactions
		WHERE lower(status) = $1
		  AND created_at >= $2
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		  AND (
		        ($4 <> '' AND location_id = $4)
		     OR (location_id = '' AND (
		            ($5 <> '' AND lower(trim(location)) = lower(trim($5)))
		         OR ($4 <> '' AND lower(trim(location)) = lower(trim($4)))))
		  )
		ORDER BY created_at`
	var until any
	if !q.Until.IsZero() {
		until = q.Until
	}
	rows, err := r.q.Query(ctx, query, entity.TransactionStatusCompleted, q.Since, until, q.LocationID, q.LocationName)
	if err != nil {
		return nil, wrap("find completed transactions", err)
	}
	defer rows.Close()
	list := make([]*entity.Transaction, 0)
	for rows.Next() {
		var t entity.Transaction
		if err := rows.Scan(&t.ID, &t.Total, &t.AmountPaid, &t.TenderType, &t.Tenders,
			&t.LocationID, &t.Location, &t.Status, &t.CreatedAt); err != nil {
			return nil, wrap("scan pos transaction", err)
		}
		list = append(list, &t)
	}
	return list, wrap("find completed transactions", rows.Err())
}
