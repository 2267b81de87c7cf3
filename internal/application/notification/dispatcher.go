// Package notification entrega las alertas encoladas en el outbox a los sinks configurados.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// Sink destino de una alerta de stock bajo. Sin acuse de recibo para el llamador del ledger.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event entity.LowStockEvent) error
}

// Metrics contadores de entrega.
type Metrics interface {
	NotificationDelivered(sink string)
	NotificationFailed(sink string, dead bool)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) NotificationDelivered(string)     {}
func (NopMetrics) NotificationFailed(string, bool) {}

// Config parámetros del despachador.
type Config struct {
	Schedule    string        // expresión cron, p. ej. "@every 5s"
	BatchSize   int
	MaxAttempts int
	BaseBackoff time.Duration // espera tras el primer fallo; se duplica en cada intento
	MaxBackoff  time.Duration
	Timeout     time.Duration // límite de cada pasada
}

// DefaultConfig valores por defecto.
func DefaultConfig() Config {
	return Config{
		Schedule:    "@every 5s",
		BatchSize:   50,
		MaxAttempts: 5,
		BaseBackoff: 5 * time.Second,
		MaxBackoff:  5 * time.Minute,
		Timeout:     30 * time.Second,
	}
}

// Dispatcher lee entradas pendientes del outbox y las publica con reintentos acotados.
// Agotados los intentos la entrada queda como dead y no se vuelve a procesar.
type Dispatcher struct {
	repo    repository.OutboxRepository
	sink    Sink
	cfg     Config
	log     zerolog.Logger
	metrics Metrics
	now     func() time.Time
	cron    *cron.Cron
}

// NewDispatcher construye el despachador. Los valores no positivos de cfg toman el valor por defecto.
func NewDispatcher(repo repository.OutboxRepository, sink Sink, cfg Config, log zerolog.Logger, metrics Metrics) *Dispatcher {
	def := DefaultConfig()
	if cfg.Schedule == "" {
		cfg.Schedule = def.Schedule
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = def.BaseBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Dispatcher{
		repo:    repo,
		sink:    sink,
		cfg:     cfg,
		log:     log.With().Str("component", "outbox_dispatcher").Logger(),
		metrics: metrics,
		now:     time.Now,
	}
}

// Start programa DispatchPending según cfg.Schedule. Una pasada lenta no se solapa con la siguiente.
func (d *Dispatcher) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(d.cfg.Schedule, d.tick); err != nil {
		return fmt.Errorf("programar despachador (%q): %w", d.cfg.Schedule, err)
	}
	d.cron = c
	d.cron.Start()
	d.log.Info().Str("schedule", d.cfg.Schedule).Str("sink", d.sink.Name()).Msg("despachador de notificaciones iniciado")
	return nil
}

// Stop detiene el cron y espera la pasada en curso o hasta que ctx expire.
func (d *Dispatcher) Stop(ctx context.Context) {
	if d.cron == nil {
		return
	}
	select {
	case <-d.cron.Stop().Done():
	case <-ctx.Done():
	}
	d.log.Info().Msg("despachador de notificaciones detenido")
}

func (d *Dispatcher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()
	if _, err := d.DispatchPending(ctx); err != nil {
		d.log.Error().Err(err).Msg("pasada del outbox falló")
	}
}

// DispatchPending procesa una tanda de entradas vencidas. Devuelve cuántas se entregaron.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	now := d.now()
	entries, err := d.repo.ClaimPending(ctx, now, d.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	delivered := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if d.deliver(ctx, e) {
			delivered++
		}
	}
	return delivered, nil
}

func (d *Dispatcher) deliver(ctx context.Context, e *entity.OutboxEntry) bool {
	var event entity.LowStockEvent
	if err := json.Unmarshal(e.Payload, &event); err != nil {
		// un payload ilegible no mejora con reintentos
		d.fail(ctx, e, fmt.Errorf("payload inválido: %w", err), true)
		return false
	}
	if err := d.sink.Publish(ctx, event); err != nil {
		d.fail(ctx, e, err, e.Attempts+1 >= d.cfg.MaxAttempts)
		return false
	}
	if err := d.repo.MarkDelivered(ctx, e.ID, d.now()); err != nil {
		d.log.Error().Err(err).Str("outbox_id", e.ID).Msg("no se pudo marcar como entregada")
		return false
	}
	d.metrics.NotificationDelivered(d.sink.Name())
	d.log.Debug().Str("outbox_id", e.ID).Str("movement_ref", e.AggregateRef).Msg("alerta entregada")
	return true
}

func (d *Dispatcher) fail(ctx context.Context, e *entity.OutboxEntry, cause error, dead bool) {
	next := d.now().Add(d.Backoff(e.Attempts + 1))
	if err := d.repo.MarkFailed(ctx, e.ID, cause.Error(), next, dead); err != nil {
		d.log.Error().Err(err).Str("outbox_id", e.ID).Msg("no se pudo registrar el fallo")
	}
	d.metrics.NotificationFailed(d.sink.Name(), dead)
	ev := d.log.Warn()
	if dead {
		ev = d.log.Error()
	}
	ev.Err(cause).
		Str("outbox_id", e.ID).
		Str("movement_ref", e.AggregateRef).
		Int("attempt", e.Attempts+1).
		Bool("dead", dead).
		Msg("entrega de alerta falló")
}

// Backoff espera antes del siguiente intento tras attempt fallos: base × 2^(attempt-1), con tope.
func (d *Dispatcher) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	wait := d.cfg.BaseBackoff
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= d.cfg.MaxBackoff {
			return d.cfg.MaxBackoff
		}
	}
	return wait
}
