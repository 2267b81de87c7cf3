package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo outbox de notificaciones. Enqueue corre en la tx del movimiento; el resto sobre el pool.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador.
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

func (r *OutboxRepo) Enqueue(ctx context.Context, e *entity.OutboxEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO outbox (id, event_type, aggregate_ref, payload, status, attempts, last_error, next_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.EventType, e.AggregateRef, string(e.Payload), e.Status, e.Attempts, e.LastError, e.NextAttemptAt, e.CreatedAt)
	return wrap("enqueue outbox", err)
}

// ClaimLease tiempo durante el cual una entrada reclamada queda fuera de otras tandas. Si la
// instancia que la reclamó no marca el resultado, vuelve a estar disponible al vencer.
const ClaimLease = 5 * time.Minute

// ClaimPending reserva entradas pendientes vencidas, en orden de creación. Las filas bloqueadas por
// otra instancia se saltan y las reclamadas corren su next_attempt_at hasta now + ClaimLease.
func (r *OutboxRepo) ClaimPending(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEntry, error) {
	rows, err := r.q.Query(ctx, `
		UPDATE outbox SET next_attempt_at = $4
		WHERE id IN (
			SELECT id FROM outbox
			WHERE status = $1 AND next_attempt_at <= $2
			ORDER BY created_at, id
			LIMIT $3
			FOR UPDATE SKIP LOCKED)
		RETURNING id, event_type, aggregate_ref, payload, status, attempts, last_error, next_attempt_at, created_at, delivered_at`,
		entity.OutboxStatusPending, now, limit, now.Add(ClaimLease))
	if err != nil {
		return nil, wrap("claim outbox", err)
	}
	defer rows.Close()
	var list []*entity.OutboxEntry
	for rows.Next() {
		var e entity.OutboxEntry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.EventType, &e.AggregateRef, &payload, &e.Status, &e.Attempts,
			&e.LastError, &e.NextAttemptAt, &e.CreatedAt, &e.DeliveredAt); err != nil {
			return nil, wrap("scan outbox", err)
		}
		e.Payload = payload
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("claim outbox", err)
	}
	// RETURNING no garantiza orden
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *OutboxRepo) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE outbox SET status = $2, attempts = attempts + 1, delivered_at = $3
		WHERE id = $1`, id, entity.OutboxStatusDelivered, at)
	return wrap("mark outbox delivered", err)
}

func (r *OutboxRepo) MarkFailed(ctx context.Context, id string, lastErr string, nextAttempt time.Time, dead bool) error {
	status := entity.OutboxStatusPending
	if dead {
		status = entity.OutboxStatusDead
	}
	_, err := r.q.Exec(ctx, `
		UPDATE outbox SET status = $2, attempts = attempts + 1, last_error = $3, next_attempt_at = $4
		WHERE id = $1`, id, status, lastErr, nextAttempt)
	return wrap("mark outbox failed", err)
}
