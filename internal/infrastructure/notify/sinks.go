// Package notify implementa los sinks de alertas de stock bajo.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ledger/internal/application/notification"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

var (
	_ notification.Sink = (*LogSink)(nil)
	_ notification.Sink = (*RedisSink)(nil)
	_ notification.Sink = (*WebhookSink)(nil)
	_ notification.Sink = (*MultiSink)(nil)
)

// LogSink escribe la alerta en el log estructurado.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink construye el sink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "notify_log").Logger()}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Publish(_ context.Context, ev entity.LowStockEvent) error {
	ids := make([]string, 0, len(ev.Products))
	backordered := 0
	for _, p := range ev.Products {
		ids = append(ids, p.ProductID)
		if p.Backordered {
			backordered++
		}
	}
	s.log.Warn().
		Str("type", ev.Type).
		Str("movement_ref", ev.MovementRef).
		Strs("products", ids).
		Int("backordered", backordered).
		Msg("stock bajo")
	return nil
}

// RedisSink publica la alerta como JSON en un canal Pub/Sub.
type RedisSink struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisSink construye el sink sobre un cliente existente.
func NewRedisSink(client redis.UniversalClient, channel string) *RedisSink {
	if channel == "" {
		channel = "inventory.low-stock"
	}
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, ev entity.LowStockEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		return fmt.Errorf("publicar en redis %s: %w", s.channel, err)
	}
	return nil
}

// WebhookSink envía la alerta por HTTP POST.
type WebhookSink struct {
	client *resty.Client
	url    string
}

// NewWebhookSink construye el sink. token vacío omite la cabecera Authorization.
func NewWebhookSink(url, token string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &WebhookSink{client: c, url: strings.TrimSpace(url)}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Publish(ctx context.Context, ev entity.LowStockEvent) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-Event-Type", ev.Type).
		SetBody(ev).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("webhook respondió %d", resp.StatusCode())
	}
	return nil
}

// MultiSink publica en todos los sinks; falla si alguno falla (la entrada se reintenta completa).
type MultiSink struct {
	sinks []notification.Sink
}

// NewMultiSink agrupa sinks.
func NewMultiSink(sinks ...notification.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Name() string {
	names := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		names = append(names, s.Name())
	}
	return strings.Join(names, "+")
}

func (m *MultiSink) Publish(ctx context.Context, ev entity.LowStockEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
