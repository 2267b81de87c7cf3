package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// BuildLowStockEvent compone un único evento por movimiento con todos los productos bajo umbral.
// Devuelve nil si no hay productos.
func BuildLowStockEvent(movementRef string, products []*entity.Product, at time.Time) *entity.LowStockEvent {
	if len(products) == 0 {
		return nil
	}
	items := make([]entity.LowStockProduct, 0, len(products))
	for _, p := range products {
		if p == nil || !p.IsBelowMinStock() {
			continue
		}
		items = append(items, entity.LowStockProduct{
			ProductID:   p.ID,
			Name:        p.Name,
			Quantity:    p.Quantity,
			MinStock:    p.EffectiveMinStock(),
			Backordered: p.IsBackordered(),
		})
	}
	if len(items) == 0 {
		return nil
	}
	return &entity.LowStockEvent{
		Type:        entity.EventTypeLowStock,
		MovementRef: movementRef,
		Products:    items,
		OccurredAt:  at,
	}
}

// stageLowStock relee los productos afectados (ya con los deltas aplicados) y encola el evento
// en el outbox dentro de un savepoint. Cualquier fallo se registra y se descarta.
func (uc *LedgerUseCase) stageLowStock(ctx context.Context, r TxRepos, mov *entity.StockMovement) {
	if r.Outbox == nil || r.Savepoint == nil {
		return
	}
	staged := 0
	err := r.Savepoint(ctx, func(ctx context.Context, sp TxRepos) error {
		below, err := sp.Products.ListBelowThreshold(ctx, mov.ProductIDs())
		if err != nil {
			return err
		}
		now := uc.now()
		event := BuildLowStockEvent(mov.TransRef, below, now)
		if event == nil {
			return nil
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		staged = len(event.Products)
		return sp.Outbox.Enqueue(ctx, &entity.OutboxEntry{
			ID:            uuid.New().String(),
			EventType:     event.Type,
			AggregateRef:  mov.TransRef,
			Payload:       payload,
			Status:        entity.OutboxStatusPending,
			NextAttemptAt: now,
			CreatedAt:     now,
		})
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("trans_ref", mov.TransRef).Msg("no se pudo encolar alerta de stock bajo")
		return
	}
	if staged > 0 {
		uc.metrics.LowStockStaged(staged)
		uc.log.Info().Str("trans_ref", mov.TransRef).Int("products", staged).Msg("alerta de stock bajo encolada")
	}
}
