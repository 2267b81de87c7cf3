// Package metrics expone contadores Prometheus del ledger, la caja y el outbox.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/notification"
	"github.com/jhoicas/retail-ledger/internal/application/till"
)

const namespace = "retail_ledger"

var (
	_ inventory.Metrics    = (*Collector)(nil)
	_ till.Metrics         = (*Collector)(nil)
	_ notification.Metrics = (*Collector)(nil)
)

// Collector agrupa las métricas en un registry propio.
type Collector struct {
	registry *prometheus.Registry

	movements      *prometheus.CounterVec
	movementErrors *prometheus.CounterVec
	lowStock       prometheus.Counter
	tillsOpened    prometheus.Counter
	tillsClosed    *prometheus.CounterVec
	tillVariance   prometheus.Histogram
	notifications  *prometheus.CounterVec
}

// New registra todas las métricas junto con las del runtime de Go y del proceso.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "movements_total",
			Help: "Movimientos de inventario registrados por motivo.",
		}, []string{"reason"}),
		movementErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "movement_errors_total",
			Help: "Movimientos rechazados por motivo y clase de error.",
		}, []string{"reason", "kind"}),
		lowStock: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "low_stock_products_total",
			Help: "Productos incluidos en alertas de stock bajo encoladas.",
		}),
		tillsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tills_opened_total",
			Help: "Cajas abiertas.",
		}),
		tillsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "tills_closed_total",
			Help: "Cajas cerradas por estado final.",
		}, []string{"status"}),
		tillVariance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "till_variance_abs",
			Help:    "Diferencia absoluta al cierre de caja.",
			Buckets: []float64{0.5, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_total",
			Help: "Entregas de alertas por sink y resultado.",
		}, []string{"sink", "result"}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.movements, c.movementErrors, c.lowStock,
		c.tillsOpened, c.tillsClosed, c.tillVariance,
		c.notifications,
	)
	return c
}

// Registry registry subyacente (tests).
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler endpoint HTTP de exposición.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) MovementRecorded(reason string) { c.movements.WithLabelValues(reason).Inc() }

func (c *Collector) MovementFailed(reason, kind string) {
	if reason == "" {
		reason = "none"
	}
	c.movementErrors.WithLabelValues(reason, kind).Inc()
}

func (c *Collector) LowStockStaged(products int) { c.lowStock.Add(float64(products)) }

func (c *Collector) TillOpened() { c.tillsOpened.Inc() }

func (c *Collector) TillClosed(status string, variance float64) {
	c.tillsClosed.WithLabelValues(status).Inc()
	if variance < 0 {
		variance = -variance
	}
	c.tillVariance.Observe(variance)
}

func (c *Collector) NotificationDelivered(sink string) {
	c.notifications.WithLabelValues(sink, "delivered").Inc()
}

func (c *Collector) NotificationFailed(sink string, dead bool) {
	result := "retry"
	if dead {
		result = "dead"
	}
	c.notifications.WithLabelValues(sink, result).Inc()
}
