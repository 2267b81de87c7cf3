package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
)

var errAbort = errors.New("abortar")

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	st := memory.New()
	st.PutProduct(entity.Product{ID: "p1", Name: "Leche", Quantity: 10, MinStock: 5})
	st.PutMovement(entity.StockMovement{ID: "m1", TransRef: "TRF-m1", Reason: entity.ReasonTransfer, Status: entity.MovementStatusSent})
	require.NoError(t, st.Outbox().Enqueue(context.Background(), &entity.OutboxEntry{
		ID: "o1", EventType: entity.EventTypeLowStock, Status: entity.OutboxStatusPending,
	}))
	return st
}

func TestTxRunner_RollbackSoloDeshaceLoPropio(t *testing.T) {
	st := seeded(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	err := memory.NewTxRunner(st).Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		require.NoError(t, r.Movements.Create(ctx, &entity.StockMovement{ID: "m2", TransRef: "TRF-m2", Reason: entity.ReasonRestock}))
		require.NoError(t, r.Products.IncrementQuantities(ctx, []entity.StockDelta{{ProductID: "p1", Delta: 4}}))
		require.NoError(t, r.Stock.IncrementMany(ctx, []entity.StockDelta{{ProductID: "p1", LocationID: "loc", Delta: 4}}))
		require.NoError(t, r.Outbox.Enqueue(ctx, &entity.OutboxEntry{ID: "o2", Status: entity.OutboxStatusPending}))

		// escrituras de otros actores durante la transacción
		ok, err := st.Movements().MarkReceived(ctx, "m1", at)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, st.Outbox().MarkDelivered(ctx, "o1", at))
		require.NoError(t, st.Products().IncrementQuantities(ctx, []entity.StockDelta{{ProductID: "p1", Delta: 1}}))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	m1, err := st.Movements().GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusReceived, m1.Status)

	m2, err := st.Movements().GetByID(ctx, "m2")
	require.NoError(t, err)
	assert.Nil(t, m2)

	p, err := st.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(11), p.Quantity)

	rows, err := st.Stock().ListByLocation(ctx, "loc")
	require.NoError(t, err)
	assert.Empty(t, rows)

	entries := st.OutboxEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "o1", entries[0].ID)
	assert.Equal(t, entity.OutboxStatusDelivered, entries[0].Status)
}

func TestTxRunner_SavepointDeshaceSoloLaSubtransaccion(t *testing.T) {
	st := seeded(t)
	ctx := context.Background()

	err := memory.NewTxRunner(st).Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		require.NoError(t, r.Products.IncrementQuantities(ctx, []entity.StockDelta{{ProductID: "p1", Delta: 2}}))
		spErr := r.Savepoint(ctx, func(ctx context.Context, sp inventory.TxRepos) error {
			require.NoError(t, sp.Outbox.Enqueue(ctx, &entity.OutboxEntry{ID: "o2", Status: entity.OutboxStatusPending}))
			return errAbort
		})
		assert.ErrorIs(t, spErr, errAbort)
		return nil
	})
	require.NoError(t, err)

	p, err := st.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.Quantity)
	assert.Len(t, st.OutboxEntries(), 1)
}

func TestIncrementQuantities_ProductoInexistente(t *testing.T) {
	st := seeded(t)
	ctx := context.Background()

	err := st.Products().IncrementQuantities(ctx, []entity.StockDelta{{ProductID: "p1", Delta: 3}, {ProductID: "ghost", Delta: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := st.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Quantity)
}
