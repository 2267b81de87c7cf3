package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// OutboxRepository puerto del outbox de notificaciones.
type OutboxRepository interface {
	Enqueue(ctx context.Context, entry *entity.OutboxEntry) error
	// ClaimPending devuelve hasta limit entradas pendientes con next_attempt_at <= now. Una entrada
	// reclamada no vuelve a salir en otra tanda mientras su resultado esté en curso.
	ClaimPending(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEntry, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	// MarkFailed registra el intento; dead=true la saca definitivamente de la cola.
	MarkFailed(ctx context.Context, id string, lastErr string, nextAttempt time.Time, dead bool) error
}
