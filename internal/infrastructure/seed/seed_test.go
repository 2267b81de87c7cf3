package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/memory"
)

func TestDemo_AplicaEnMemoria(t *testing.T) {
	ds := Demo()
	st := memory.New()
	require.NoError(t, Apply(context.Background(), ds, ForMemory(st)))

	locs, err := st.Locations().ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, locs, 3)
	for _, l := range locs {
		assert.Equal(t, ds.Stores[0].ID, l.StoreID)
		if l.Name == "Bodega Norte" {
			assert.False(t, l.IsActive)
		} else {
			assert.True(t, l.IsActive)
		}
	}

	milk, err := st.Products().GetByID(context.Background(), "0b9f4f3e-1c2d-4e5f-8a9b-1c2d3e4f5a6b")
	require.NoError(t, err)
	require.NotNil(t, milk)
	assert.Equal(t, int64(40), milk.Quantity)
	assert.Equal(t, "2.5", milk.CostPrice.String())
}

func TestLoad_Errores(t *testing.T) {
	cases := map[string]string{
		"campo desconocido":     `{"stores":[],"extra":1}`,
		"id de tienda inválido": `{"stores":[{"id":"tienda-1","name":"X","locations":[]}]}`,
		"ubicación sin nombre":  `{"stores":[{"id":"2f0c5d0e-6a7b-4c1e-9d4a-3b2a1c0d9e8f","name":"X","locations":[{"id":"6512bd43d9caa6e02c990b0a","name":" "}]}]}`,
		"min_stock negativo":    `{"products":[{"id":"0b9f4f3e-1c2d-4e5f-8a9b-1c2d3e4f5a6b","name":"Leche","min_stock":-1}]}`,
		"venta sin fecha":       `{"transactions":[{"id":"t1","total":"10"}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(raw))
			assert.Error(t, err)
		})
	}
}

func TestApply_VentaSinEstadoQuedaCompletada(t *testing.T) {
	ds, err := Load(strings.NewReader(`{"transactions":[{"id":"t1","total":"10","amount_paid":"10","tender_type":"cash","location_id":"6512bd43d9caa6e02c990b0a","created_at":"2026-05-01T10:00:00Z"}]}`))
	require.NoError(t, err)
	st := memory.New()
	require.NoError(t, Apply(context.Background(), ds, ForMemory(st)))
	txs, err := st.Transactions().FindCompleted(context.Background(), entity.TransactionQuery{LocationID: "6512bd43d9caa6e02c990b0a"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, entity.TransactionStatusCompleted, txs[0].Status)
}
