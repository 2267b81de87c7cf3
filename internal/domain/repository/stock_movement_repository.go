package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-ledger/internal/domain/entity"
)

// StockMovementRepository puerto de persistencia del ledger de movimientos.
// TransRef es único a nivel de almacenamiento: un duplicado devuelve ConflictError.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, int, error)
	// ListForExpiry devuelve los movimientos que tocan la ubicación (todos si locationID es vacío).
	ListForExpiry(ctx context.Context, locationID string) ([]*entity.StockMovement, error)
	// MarkReceived cambia Status a Received solo si aún no lo está; false si no hubo cambio.
	MarkReceived(ctx context.Context, id string, at time.Time) (bool, error)
}
