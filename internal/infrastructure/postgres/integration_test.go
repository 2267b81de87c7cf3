//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/location"
	"github.com/jhoicas/retail-ledger/internal/application/till"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/pkg/config"
)

const (
	itStoreID    = "5f1a2b3c4d5e6f7a8b9c0d1e"
	itFloorID    = "5f1a2b3c4d5e6f7a8b9c0d21"
	itBackroomID = "5f1a2b3c4d5e6f7a8b9c0d22"
	itMilkID     = "6a1a2b3c4d5e6f7a8b9c0d01"
	itBreadID    = "6a1a2b3c4d5e6f7a8b9c0d02"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, Migrate(dsn, zerolog.Nop()))

	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	locs := NewLocationRepository(pool)
	require.NoError(t, locs.CreateStore(ctx, &entity.Store{ID: itStoreID, Name: "Centro", Locations: []entity.Location{
		{ID: itFloorID, Name: "Sales Floor", IsActive: true},
		{ID: itBackroomID, Name: "Back Room", IsActive: true},
	}}))
	products := NewProductRepository(pool)
	require.NoError(t, products.Create(ctx, &entity.Product{ID: itMilkID, Name: "Leche 1L", Quantity: 40, MinStock: 10,
		CostPrice: decimal.RequireFromString("2.50")}))
	require.NoError(t, products.Create(ctx, &entity.Product{ID: itBreadID, Name: "Pan tajado", Quantity: 5, MinStock: 8,
		CostPrice: decimal.RequireFromString("1.75")}))
	return pool
}

func TestIntegration_Ledger(t *testing.T) {
	q := startPostgres(t)
	ctx := context.Background()
	directory := location.NewDirectory(NewLocationRepository(q), zerolog.Nop())
	uc := inventory.NewLedgerUseCase(NewTxRunner(q), NewProductRepository(q), NewStockMovementRepository(q),
		NewStockRepository(q), NewLocationRepository(q), directory)

	res, err := uc.CreateMovement(ctx, dto.CreateMovementRequest{
		FromLocationID: itBackroomID, ToLocationID: itFloorID, Reason: entity.ReasonTransfer,
		LineItems: []dto.MovementLineRequest{{ProductID: itMilkID, Quantity: 6}, {ProductID: itBreadID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Back Room", res.FromLocation)
	assert.Equal(t, "Sales Floor", res.ToLocation)

	milk, err := NewProductRepository(q).GetByID(ctx, itMilkID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), milk.Quantity)

	floor, err := uc.ListStock(ctx, itFloorID)
	require.NoError(t, err)
	require.Len(t, floor.Items, 2)

	got, err := uc.GetMovement(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "Leche 1L", got.LineItems[0].ProductName)

	// Pan queda en 5 (< 8): una alerta en el outbox
	pending, err := NewOutboxRepository(q).ClaimPending(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, res.TransRef, pending[0].AggregateRef)

	// producto inexistente: nada se escribe
	_, err = uc.CreateMovement(ctx, dto.CreateMovementRequest{
		FromLocationID: "vendor", ToLocationID: itFloorID, Reason: entity.ReasonRestock,
		LineItems: []dto.MovementLineRequest{{ProductID: itMilkID, Quantity: 1}, {ProductID: "6a1a2b3c4d5e6f7a8b9c0dff", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	list, err := uc.ListMovements(ctx, dto.MovementListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)

	_, err = NewStockMovementRepository(q).MarkReceived(ctx, res.ID, time.Now())
	require.NoError(t, err)
}

func TestIntegration_TransRefDuplicado(t *testing.T) {
	q := startPostgres(t)
	ctx := context.Background()
	repo := NewStockMovementRepository(q)
	m := &entity.StockMovement{ID: "m-1", TransRef: "TRF-X", Reason: entity.ReasonRestock,
		Status: entity.MovementStatusReceived, DateSent: time.Now(), CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, m))
	m.ID = "m-2"
	assert.ErrorIs(t, repo.Create(ctx, m), domain.ErrConflict)
}

func TestIntegration_Till(t *testing.T) {
	q := startPostgres(t)
	ctx := context.Background()
	opened := time.Now().Add(-time.Hour)
	txlog := NewTransactionLog(q)
	require.NoError(t, txlog.Insert(ctx, &entity.Transaction{ID: "t1", Total: decimal.NewFromInt(30000),
		TenderType: "cash", LocationID: itFloorID, Status: "completed", CreatedAt: opened.Add(time.Minute)}))
	require.NoError(t, txlog.Insert(ctx, &entity.Transaction{ID: "t2", Total: decimal.NewFromInt(10000),
		Tenders: []entity.TenderSplit{{TenderName: "card", Amount: decimal.NewFromInt(10000)}},
		Location: "Sales Floor", Status: "completed", CreatedAt: opened.Add(2 * time.Minute)}))

	directory := location.NewDirectory(NewLocationRepository(q), zerolog.Nop())
	uc := till.NewUseCase(NewEndOfDayReportRepository(q), txlog, directory)

	balance := decimal.NewFromInt(50000)
	open, err := uc.Open(ctx, dto.OpenTillRequest{StoreID: itStoreID, LocationID: itFloorID, StaffID: "s1",
		StaffName: "Ana", OpeningBalance: &balance})
	require.NoError(t, err)
	_, err = uc.Open(ctx, dto.OpenTillRequest{StoreID: itStoreID, LocationID: itFloorID, StaffID: "s1",
		StaffName: "Ana", OpeningBalance: &balance})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// el índice parcial también lo impide a nivel de almacenamiento
	reports := NewEndOfDayReportRepository(q)
	dup, err := reports.GetByID(ctx, open.ID)
	require.NoError(t, err)
	dup.ID = "otro"
	assert.ErrorIs(t, reports.Create(ctx, dup), domain.ErrConflict)

	physical := decimal.NewFromInt(90000)
	closed, err := uc.Close(ctx, dto.CloseTillRequest{LocationID: itFloorID, PhysicalCount: &physical, ClosedBy: "s1"})
	require.NoError(t, err)
	assert.Equal(t, entity.TillStatusReconciled, closed.Status)
	assert.Equal(t, 2, closed.TransactionCount)
	assert.True(t, closed.TenderBreakdown["card"].Equal(decimal.NewFromInt(10000)))

	stored, err := reports.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, reports.Close(ctx, stored), domain.ErrConflict)
}

func TestIntegration_MovimientosConcurrentesNoPierdenIncrementos(t *testing.T) {
	q := startPostgres(t)
	ctx := context.Background()
	directory := location.NewDirectory(NewLocationRepository(q), zerolog.Nop())
	uc := inventory.NewLedgerUseCase(NewTxRunner(q), NewProductRepository(q), NewStockMovementRepository(q),
		NewStockRepository(q), NewLocationRepository(q), directory)

	before, err := NewProductRepository(q).GetByID(ctx, itMilkID)
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.CreateMovement(ctx, dto.CreateMovementRequest{
				FromLocationID: "vendor", ToLocationID: itFloorID, Reason: entity.ReasonRestock,
				LineItems: []dto.MovementLineRequest{{ProductID: itMilkID, Quantity: 1}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	after, err := NewProductRepository(q).GetByID(ctx, itMilkID)
	require.NoError(t, err)
	assert.Equal(t, before.Quantity+workers, after.Quantity)

	floor, err := uc.ListStock(ctx, itFloorID)
	require.NoError(t, err)
	require.Len(t, floor.Items, 1)
	assert.Equal(t, int64(workers), floor.Items[0].Quantity)
}

func TestIntegration_OutboxClaimReservaEntradas(t *testing.T) {
	q := startPostgres(t)
	ctx := context.Background()
	repo := NewOutboxRepository(q)
	now := time.Now().UTC().Truncate(time.Microsecond)
	for _, id := range []string{"o1", "o2"} {
		require.NoError(t, repo.Enqueue(ctx, &entity.OutboxEntry{ID: id, EventType: entity.EventTypeLowStock,
			AggregateRef: "TRF-" + id, Payload: []byte(`{}`), Status: entity.OutboxStatusPending,
			NextAttemptAt: now.Add(-time.Second), CreatedAt: now}))
	}

	first, err := repo.ClaimPending(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "o1", first[0].ID)

	// otra instancia no ve las entradas ya reclamadas
	second, err := repo.ClaimPending(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, second)

	// vencida la reserva vuelven a estar disponibles
	again, err := repo.ClaimPending(ctx, now.Add(ClaimLease+time.Second), 10)
	require.NoError(t, err)
	assert.Len(t, again, 2)
}
