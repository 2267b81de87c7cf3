package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
)

type recordingSink struct {
	fails  int
	events []entity.LowStockEvent
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(_ context.Context, ev entity.LowStockEvent) error {
	if s.fails > 0 {
		s.fails--
		return errors.New("sink caído")
	}
	s.events = append(s.events, ev)
	return nil
}

var t0 = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func enqueue(t *testing.T, st *memory.Store, id string, payload []byte) {
	t.Helper()
	require.NoError(t, st.Outbox().Enqueue(context.Background(), &entity.OutboxEntry{
		ID: id, EventType: entity.EventTypeLowStock, AggregateRef: "TRF-" + id, Payload: payload,
		Status: entity.OutboxStatusPending, NextAttemptAt: t0, CreatedAt: t0,
	}))
}

func lowStockPayload(t *testing.T, ref string) []byte {
	t.Helper()
	b, err := json.Marshal(entity.LowStockEvent{
		Type: entity.EventTypeLowStock, MovementRef: ref,
		Products: []entity.LowStockProduct{{ProductID: "p1", Name: "Leche", Quantity: 2, MinStock: 10}},
	})
	require.NoError(t, err)
	return b
}

func newTestDispatcher(st *memory.Store, sink Sink, clock *time.Time) *Dispatcher {
	d := NewDispatcher(st.Outbox(), sink, Config{MaxAttempts: 3, BaseBackoff: time.Second, MaxBackoff: 4 * time.Second}, zerolog.Nop(), nil)
	d.now = func() time.Time { return *clock }
	return d
}

func TestDispatchPending_Entrega(t *testing.T) {
	st := memory.New()
	enqueue(t, st, "a", lowStockPayload(t, "TRF-a"))
	sink := &recordingSink{}
	now := t0
	d := newTestDispatcher(st, sink, &now)

	n, err := d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "TRF-a", sink.events[0].MovementRef)

	entries := st.OutboxEntries()
	assert.Equal(t, entity.OutboxStatusDelivered, entries[0].Status)
	require.NotNil(t, entries[0].DeliveredAt)

	// una entrega ya hecha no se repite
	n, err = d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, sink.events, 1)
}

func TestDispatchPending_ReintentaConEsperaYLuegoDead(t *testing.T) {
	st := memory.New()
	enqueue(t, st, "a", lowStockPayload(t, "TRF-a"))
	sink := &recordingSink{fails: 10}
	now := t0
	d := newTestDispatcher(st, sink, &now)
	ctx := context.Background()

	_, err := d.DispatchPending(ctx)
	require.NoError(t, err)
	e := st.OutboxEntries()[0]
	assert.Equal(t, 1, e.Attempts)
	assert.Equal(t, entity.OutboxStatusPending, e.Status)
	assert.Equal(t, t0.Add(time.Second), e.NextAttemptAt)

	// antes del vencimiento no se reintenta
	_, err = d.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.OutboxEntries()[0].Attempts)

	now = now.Add(time.Second)
	_, err = d.DispatchPending(ctx)
	require.NoError(t, err)
	e = st.OutboxEntries()[0]
	assert.Equal(t, 2, e.Attempts)
	assert.Equal(t, now.Add(2*time.Second), e.NextAttemptAt)

	now = now.Add(2 * time.Second)
	_, err = d.DispatchPending(ctx)
	require.NoError(t, err)
	e = st.OutboxEntries()[0]
	assert.Equal(t, 3, e.Attempts)
	assert.Equal(t, entity.OutboxStatusDead, e.Status)
	assert.Equal(t, "sink caído", e.LastError)

	now = now.Add(time.Hour)
	n, err := d.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 3, st.OutboxEntries()[0].Attempts)
}

func TestDispatchPending_PayloadInvalidoVaDirectoADead(t *testing.T) {
	st := memory.New()
	enqueue(t, st, "bad", []byte("{not json"))
	enqueue(t, st, "good", lowStockPayload(t, "TRF-good"))
	sink := &recordingSink{}
	now := t0
	d := newTestDispatcher(st, sink, &now)

	n, err := d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	entries := st.OutboxEntries()
	assert.Equal(t, entity.OutboxStatusDead, entries[0].Status)
	assert.Equal(t, entity.OutboxStatusDelivered, entries[1].Status)
}

func TestBackoff_Tope(t *testing.T) {
	now := t0
	d := newTestDispatcher(memory.New(), &recordingSink{}, &now)
	assert.Equal(t, time.Second, d.Backoff(1))
	assert.Equal(t, 2*time.Second, d.Backoff(2))
	assert.Equal(t, 4*time.Second, d.Backoff(3))
	assert.Equal(t, 4*time.Second, d.Backoff(9))
}

func TestStart_ScheduleInvalido(t *testing.T) {
	d := NewDispatcher(memory.New().Outbox(), &recordingSink{}, Config{Schedule: "cada rato"}, zerolog.Nop(), nil)
	assert.Error(t, d.Start())
}
