package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/infrastructure/metrics"
)

func TestCollector_Contadores(t *testing.T) {
	c := metrics.New()
	c.MovementRecorded("Restock")
	c.MovementRecorded("Restock")
	c.MovementFailed("", "validation")
	c.LowStockStaged(3)
	c.TillOpened()
	c.TillClosed("VARIANCE_NOTED", -250)
	c.NotificationFailed("webhook", true)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `retail_ledger_movements_total{reason="Restock"} 2`)
	assert.Contains(t, out, `retail_ledger_movement_errors_total{kind="validation",reason="none"} 1`)
	assert.Contains(t, out, `retail_ledger_low_stock_products_total 3`)
	assert.Contains(t, out, `retail_ledger_tills_closed_total{status="VARIANCE_NOTED"} 1`)
	assert.Contains(t, out, `retail_ledger_notifications_total{result="dead",sink="webhook"} 1`)
	assert.Contains(t, out, "go_goroutines")

	n, err := testutil.GatherAndCount(c.Registry(), "retail_ledger_till_variance_abs")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
