package memory

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepository)(nil)

// OutboxRepository outbox en memoria, en orden de inserción.
type OutboxRepository struct {
	s    *Store
	undo *undoLog
}

// Outbox devuelve el repositorio del outbox.
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{s: s} }

func (r *OutboxRepository) Enqueue(_ context.Context, e *entity.OutboxEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry := *e
	entry.Payload = append([]byte(nil), e.Payload...)
	r.s.outbox[e.ID] = entry
	r.s.outboxOrder = append(r.s.outboxOrder, e.ID)

	id := e.ID
	r.undo.add(func() {
		delete(r.s.outbox, id)
		for i, v := range r.s.outboxOrder {
			if v == id {
				r.s.outboxOrder = append(r.s.outboxOrder[:i:i], r.s.outboxOrder[i+1:]...)
				break
			}
		}
	})
	return nil
}

func (r *OutboxRepository) ClaimPending(_ context.Context, now time.Time, limit int) ([]*entity.OutboxEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.OutboxEntry
	for _, id := range r.s.outboxOrder {
		if limit > 0 && len(out) >= limit {
			break
		}
		e := r.s.outbox[id]
		if e.Status != entity.OutboxStatusPending || e.NextAttemptAt.After(now) {
			continue
		}
		e.Payload = append([]byte(nil), e.Payload...)
		out = append(out, &e)
	}
	return out, nil
}

func (r *OutboxRepository) MarkDelivered(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.outbox[id]
	if !ok {
		return nil
	}
	prev := e
	e.Status = entity.OutboxStatusDelivered
	e.Attempts++
	e.DeliveredAt = &at
	r.s.outbox[id] = e
	r.undo.add(func() { r.s.outbox[id] = prev })
	return nil
}

func (r *OutboxRepository) MarkFailed(_ context.Context, id string, lastErr string, nextAttempt time.Time, dead bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.outbox[id]
	if !ok {
		return nil
	}
	prev := e
	e.Attempts++
	e.LastError = lastErr
	e.NextAttemptAt = nextAttempt
	if dead {
		e.Status = entity.OutboxStatusDead
	}
	r.s.outbox[id] = e
	r.undo.add(func() { r.s.outbox[id] = prev })
	return nil
}

// OutboxEntries copia del outbox en orden de inserción (tests y diagnóstico).
func (s *Store) OutboxEntries() []entity.OutboxEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.OutboxEntry, 0, len(s.outboxOrder))
	for _, id := range s.outboxOrder {
		out = append(out, s.outbox[id])
	}
	return out
}
