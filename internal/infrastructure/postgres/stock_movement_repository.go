package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, trans_ref, from_location_id, to_location_id, staff_id, reason, status,
	total_cost_price, date_sent, date_received, created_at`

// StockMovementRepo ledger de movimientos sobre PostgreSQL (usable con pool o tx).
// Las líneas viven en stock_movement_lines y se cargan en una segunda consulta.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste cabecera y líneas. Un trans_ref repetido devuelve ConflictError.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransRef, m.FromLocationID, m.ToLocationID, m.StaffID, m.Reason, m.Status,
		m.TotalCostPrice, m.DateSent, m.DateReceived, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("transRef duplicado: " + m.TransRef)
		}
		return wrap("insert stock movement", err)
	}
	if len(m.Lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, l := range m.Lines {
		batch.Queue(`
			INSERT INTO stock_movement_lines (movement_id, line_no, product_id, quantity, delta, expiry_date, cost_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, i, l.ProductID, l.Quantity, l.Delta, l.ExpiryDate, l.CostPrice)
	}
	return wrap("insert movement lines", execBatch(r.q.SendBatch(ctx, batch), len(m.Lines), nil))
}

// GetByID obtiene un movimiento con sus líneas; nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get stock movement", err)
	}
	if err := r.attachLines(ctx, []*entity.StockMovement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// List devuelve la página pedida (más recientes primero) y el total que cumple los filtros.
func (r *StockMovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.StockMovement, int, error) {
	where, args := movementWhere(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_movements`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrap("count stock movements", err)
	}

	query := `SELECT ` + movementColumns + ` FROM stock_movements` + where + ` ORDER BY date_sent DESC, trans_ref DESC`
	pos := len(args) + 1
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
		pos++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, f.Offset)
	}
	list, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListForExpiry movimientos que tocan la ubicación (origen o destino); todos si locationID es vacío.
func (r *StockMovementRepo) ListForExpiry(ctx context.Context, locationID string) ([]*entity.StockMovement, error) {
	where, args := movementWhere(entity.MovementFilter{LocationID: locationID})
	list, err := r.query(ctx, `SELECT `+movementColumns+` FROM stock_movements`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.StockMovement{}
	}
	return list, nil
}

// MarkReceived pasa a Received solo si aún no lo está.
func (r *StockMovementRepo) MarkReceived(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_movements SET status = $2, date_received = $3
		WHERE id = $1 AND status <> $2`, id, entity.MovementStatusReceived, at)
	if err != nil {
		return false, wrap("mark movement received", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *StockMovementRepo) query(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list stock movements", err)
	}
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			rows.Close()
			return nil, wrap("scan stock movement", err)
		}
		list = append(list, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrap("list stock movements", err)
	}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachLines carga las líneas de todos los movimientos en una sola consulta.
func (r *StockMovementRepo) attachLines(ctx context.Context, list []*entity.StockMovement) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	byID := make(map[string]*entity.StockMovement, len(list))
	for i, m := range list {
		ids[i] = m.ID
		byID[m.ID] = m
	}
	rows, err := r.q.Query(ctx, `
		SELECT movement_id, product_id, quantity, delta, expiry_date, cost_price
		FROM stock_movement_lines
		WHERE movement_id = ANY($1)
		ORDER BY movement_id, line_no`, ids)
	if err != nil {
		return wrap("list movement lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var movementID string
		var l entity.MovementLine
		if err := rows.Scan(&movementID, &l.ProductID, &l.Quantity, &l.Delta, &l.ExpiryDate, &l.CostPrice); err != nil {
			return wrap("scan movement line", err)
		}
		if m, ok := byID[movementID]; ok {
			m.Lines = append(m.Lines, l)
		}
	}
	return wrap("list movement lines", rows.Err())
}

// movementWhere arma la cláusula WHERE; la ubicación se compara sin distinguir mayúsculas.
func movementWhere(f entity.MovementFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Reason != "" {
		add("reason = $%d", f.Reason)
	}
	if loc := strings.TrimSpace(f.LocationID); loc != "" {
		args = append(args, strings.ToLower(loc))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(lower(from_location_id) = $%d OR lower(to_location_id) = $%d)", n, n))
	}
	if f.From != nil {
		add("date_sent >= $%d", *f.From)
	}
	if f.To != nil {
		add("date_sent <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(&m.ID, &m.TransRef, &m.FromLocationID, &m.ToLocationID, &m.StaffID, &m.Reason, &m.Status,
		&m.TotalCostPrice, &m.DateSent, &m.DateReceived, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
