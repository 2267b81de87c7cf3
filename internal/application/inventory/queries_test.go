package inventory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestGetMovement_ProductoEliminadoMuestraNA(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	created, err := h.uc.CreateMovement(ctx, dto.CreateMovementRequest{
		FromLocationID: "vendor", ToLocationID: floorID, Reason: entity.ReasonRestock,
		LineItems: []dto.MovementLineRequest{line(milkID, 2), line(breadID, 1)},
	})
	require.NoError(t, err)
	h.store.DeleteProduct(breadID)

	got, err := h.uc.GetMovement(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "Leche 1L", got.LineItems[0].ProductName)
	assert.Equal(t, "N/A", got.LineItems[1].ProductName)
	assert.True(t, got.LineItems[1].CostPrice.IsZero())
	assert.Equal(t, created.TransRef, got.TransRef)
}

func TestGetMovement_Inexistente(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.uc.GetMovement(context.Background(), ghostID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMovements_PaginaYNombres(t *testing.T) {
	h := newHarness(t, nil)
	for i := 0; i < 3; i++ {
		h.store.PutMovement(entity.StockMovement{
			ID: fmt.Sprintf("m-%d", i), TransRef: fmt.Sprintf("TRF-%d", i),
			FromLocationID: backroomID, ToLocationID: floorID, Reason: entity.ReasonTransfer,
			Status: entity.MovementStatusReceived, DateSent: fixedNow.Add(time.Duration(i) * time.Hour),
			Lines: []entity.MovementLine{{ProductID: milkID, Quantity: 2, Delta: 2}, {ProductID: breadID, Quantity: 1, Delta: 1}},
		})
	}
	h.store.PutMovement(entity.StockMovement{
		ID: "legacy", TransRef: "TRF-legacy", FromLocationID: "", ToLocationID: "", Reason: entity.ReasonRestock,
		Status: entity.MovementStatusReceived, DateSent: fixedNow.Add(-48 * time.Hour),
		Lines: []entity.MovementLine{{ProductID: milkID, Quantity: 1, Delta: 1}},
	})

	res, err := h.uc.ListMovements(context.Background(), dto.MovementListRequest{
		Reason:      entity.ReasonTransfer,
		PageRequest: dto.PageRequest{Limit: 500},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Page.Limit)
	assert.Equal(t, 3, res.Page.Total)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "TRF-2", res.Items[0].TransRef)
	assert.Equal(t, "Back Room", res.Items[0].FromLocation)
	assert.Equal(t, "Sales Floor", res.Items[0].ToLocation)
	assert.Equal(t, int64(3), res.Items[0].TotalQuantity)

	res, err = h.uc.ListMovements(context.Background(), dto.MovementListRequest{
		Reason: entity.ReasonRestock,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Vendor", res.Items[0].FromLocation)
	assert.Equal(t, "Unknown", res.Items[0].ToLocation)
	assert.Equal(t, 20, res.Page.Limit)
}

func TestListMovements_RangoDeFechas(t *testing.T) {
	h := newHarness(t, nil)
	h.store.PutMovement(entity.StockMovement{ID: "a", TransRef: "A", ToLocationID: floorID, Reason: entity.ReasonRestock,
		Status: entity.MovementStatusReceived, DateSent: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)})
	h.store.PutMovement(entity.StockMovement{ID: "b", TransRef: "B", ToLocationID: floorID, Reason: entity.ReasonRestock,
		Status: entity.MovementStatusReceived, DateSent: time.Date(2026, 5, 3, 23, 0, 0, 0, time.UTC)})

	res, err := h.uc.ListMovements(context.Background(), dto.MovementListRequest{DateFrom: "2026-05-02", DateTo: "2026-05-03"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "B", res.Items[0].TransRef)

	_, err = h.uc.ListMovements(context.Background(), dto.MovementListRequest{DateFrom: "2026-05-04", DateTo: "2026-05-03"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceiveMovement(t *testing.T) {
	h := newHarness(t, nil)
	h.store.PutMovement(entity.StockMovement{
		ID: "pending-1", TransRef: "TRF-P1", FromLocationID: backroomID, ToLocationID: floorID,
		Reason: entity.ReasonTransfer, Status: entity.MovementStatusSent, DateSent: fixedNow.Add(-time.Hour),
		Lines: []entity.MovementLine{{ProductID: milkID, Quantity: 4, Delta: 4}},
	})
	ctx := context.Background()

	res, err := h.uc.ReceiveMovement(ctx, "pending-1")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusReceived, res.Status)
	require.NotNil(t, res.DateReceived)
	assert.Equal(t, fixedNow, *res.DateReceived)
	// recibir no aplica deltas
	assert.Equal(t, int64(40), h.quantity(t, milkID))

	_, err = h.uc.ReceiveMovement(ctx, "pending-1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = h.uc.ReceiveMovement(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExpiryProjection_ExcluyeSinFechaYOrdena(t *testing.T) {
	h := newHarness(t, nil)
	h.store.PutProduct(entity.Product{ID: breadID, Name: "Pan tajado", Quantity: 5, MinStock: 8,
		CostPrice: decimal.RequireFromString("1.75"), ExpiryDate: ptrTime(time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))})

	h.store.PutMovement(entity.StockMovement{
		ID: "m1", TransRef: "TRF-1", FromLocationID: "vendor", ToLocationID: floorID, Reason: entity.ReasonRestock,
		Status: entity.MovementStatusReceived, DateSent: fixedNow,
		Lines: []entity.MovementLine{
			{ProductID: milkID, Quantity: 6, Delta: 6, ExpiryDate: ptrTime(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))},
			{ProductID: breadID, Quantity: 3, Delta: 3},
		},
	})
	h.store.PutMovement(entity.StockMovement{
		ID: "m2", TransRef: "TRF-2", FromLocationID: "vendor", ToLocationID: backroomID, Reason: entity.ReasonRestock,
		Status: entity.MovementStatusReceived, DateSent: fixedNow,
		Lines: []entity.MovementLine{
			{ProductID: milkID, Quantity: 2, Delta: 2, ExpiryDate: ptrTime(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC))},
		},
	})
	h.store.PutProduct(entity.Product{ID: ghostID, Name: "Sin vencimiento", Quantity: 10})
	h.store.PutMovement(entity.StockMovement{
		ID: "m3", TransRef: "TRF-3", FromLocationID: "vendor", ToLocationID: floorID, Reason: entity.ReasonRestock,
		Status: entity.MovementStatusReceived, DateSent: fixedNow,
		Lines: []entity.MovementLine{{ProductID: ghostID, Quantity: 1, Delta: 1}},
	})

	res, err := h.uc.ExpiryProjection(context.Background(), dto.ExpiryListRequest{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	for i := 1; i < len(res.Items); i++ {
		assert.True(t, res.Items[i-1].ExpiryDate.Before(res.Items[i].ExpiryDate))
	}
	assert.Equal(t, "TRF-2", res.Items[0].BatchID)
	assert.Equal(t, "Back Room", res.Items[0].LocationName)
	assert.Equal(t, "Pan tajado", res.Items[1].ProductName)
	assert.Equal(t, "TRF-1", res.Items[2].BatchID)

	res, err = h.uc.ExpiryProjection(context.Background(), dto.ExpiryListRequest{LocationID: floorID, ExpiringWithinDays: 20})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, breadID, res.Items[0].ProductID)
}

func TestExpiryProjection_EmpateOrdenaPorLote(t *testing.T) {
	h := newHarness(t, nil)
	expiry := ptrTime(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	h.store.PutMovement(entity.StockMovement{
		ID: "a", TransRef: "TRF-Z", FromLocationID: "vendor", ToLocationID: floorID, Reason: entity.ReasonRestock,
		Status: entity.MovementStatusReceived, DateSent: fixedNow,
		Lines: []entity.MovementLine{{ProductID: milkID, Quantity: 1, Delta: 1, ExpiryDate: expiry}},
	})
	h.store.PutMovement(entity.StockMovement{
		ID: "b", TransRef: "TRF-A", FromLocationID: "vendor", ToLocationID: floorID, Reason: entity.ReasonRestock,
		Status: entity.MovementStatusReceived, DateSent: fixedNow,
		Lines: []entity.MovementLine{{ProductID: milkID, Quantity: 1, Delta: 1, ExpiryDate: expiry}},
	})

	res, err := h.uc.ExpiryProjection(context.Background(), dto.ExpiryListRequest{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "TRF-A", res.Items[0].BatchID)
	assert.Equal(t, "TRF-Z", res.Items[1].BatchID)
}

func TestListStock_PorUbicacion(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.uc.CreateMovement(context.Background(), dto.CreateMovementRequest{
		FromLocationID: "vendor", ToLocationID: floorID, Reason: entity.ReasonRestock,
		LineItems: []dto.MovementLineRequest{line(milkID, 4)},
	})
	require.NoError(t, err)

	res, err := h.uc.ListStock(context.Background(), floorID)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Sales Floor", res.Items[0].LocationName)
	assert.Equal(t, int64(4), res.Items[0].Quantity)

	_, err = h.uc.ListStock(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDirectory_IncluyeCentinelas(t *testing.T) {
	h := newHarness(t, nil)
	res, err := h.uc.Directory(context.Background())
	require.NoError(t, err)
	names := map[string]string{}
	for _, e := range res.Items {
		names[e.ID] = e.Name
	}
	assert.Equal(t, "Vendor", names["vendor"])
	assert.Equal(t, "Unknown", names[""])
	assert.Equal(t, "Sales Floor", names[floorID])
}
