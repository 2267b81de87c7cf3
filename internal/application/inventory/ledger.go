package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/location"
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	dominv "github.com/jhoicas/retail-ledger/internal/domain/inventory"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// RetryPolicy reintentos de la transacción de aplicación de deltas.
// Solo se reintentan StorageError transitorios.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetry tres intentos con espera lineal corta.
var DefaultRetry = RetryPolicy{MaxAttempts: 3, Backoff: 50 * time.Millisecond}

// LedgerUseCase registra y consulta movimientos de inventario.
type LedgerUseCase struct {
	txRunner  TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	stock     repository.StockRepository
	locations repository.LocationRepository
	directory *location.Directory
	metrics   Metrics
	log       zerolog.Logger
	now       func() time.Time
	retry     RetryPolicy
}

// Option configura el caso de uso.
type Option func(*LedgerUseCase)

// WithMetrics registra contadores del ledger.
func WithMetrics(m Metrics) Option { return func(uc *LedgerUseCase) { uc.metrics = m } }

// WithLogger asigna el logger.
func WithLogger(l zerolog.Logger) Option {
	return func(uc *LedgerUseCase) { uc.log = l.With().Str("component", "ledger").Logger() }
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option { return func(uc *LedgerUseCase) { uc.now = now } }

// WithRetry reemplaza la política de reintentos.
func WithRetry(p RetryPolicy) Option { return func(uc *LedgerUseCase) { uc.retry = p } }

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	stock repository.StockRepository,
	locations repository.LocationRepository,
	directory *location.Directory,
	opts ...Option,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		txRunner:  txRunner,
		products:  products,
		movements: movements,
		stock:     stock,
		locations: locations,
		directory: directory,
		metrics:   NopMetrics{},
		log:       zerolog.Nop(),
		now:       time.Now,
		retry:     DefaultRetry,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CreateMovement valida, persiste el movimiento y aplica los deltas en una sola transacción.
// Los productos que quedan bajo su umbral se encolan en el outbox dentro de la misma transacción;
// un fallo al encolar se registra y no afecta al movimiento.
func (uc *LedgerUseCase) CreateMovement(ctx context.Context, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	mov, err := uc.buildMovement(in)
	if err != nil {
		uc.metrics.MovementFailed(in.Reason, "validation")
		return nil, err
	}

	var (
		known    map[string]struct{}
		products map[string]*entity.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		locs, err := uc.locations.ListAll(gctx)
		if err != nil {
			return domain.Storage("listar ubicaciones", err)
		}
		known = make(map[string]struct{}, len(locs))
		for _, l := range locs {
			known[l.ID] = struct{}{}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = uc.products.FindMany(gctx, mov.ProductIDs())
		return domain.Storage("buscar productos", err)
	})
	if err := g.Wait(); err != nil {
		uc.metrics.MovementFailed(mov.Reason, "storage")
		return nil, err
	}

	for _, id := range []string{mov.FromLocationID, mov.ToLocationID} {
		if !dominv.IsTracked(id) {
			continue
		}
		if _, ok := known[id]; !ok {
			uc.metrics.MovementFailed(mov.Reason, "not_found")
			return nil, domain.NotFound("ubicación", id)
		}
	}
	// El costo es el del catálogo al momento de la llamada.
	for i := range mov.Lines {
		p, ok := products[mov.Lines[i].ProductID]
		if !ok || p == nil {
			uc.metrics.MovementFailed(mov.Reason, "not_found")
			return nil, domain.NotFound("producto", mov.Lines[i].ProductID)
		}
		mov.Lines[i].CostPrice = p.CostPrice
	}
	mov.TotalCostPrice = dominv.TotalCost(mov.Lines)

	if err := uc.persist(ctx, mov); err != nil {
		kind := "storage"
		if errors.Is(err, domain.ErrConflict) {
			kind = "conflict"
		}
		uc.metrics.MovementFailed(mov.Reason, kind)
		return nil, err
	}
	uc.metrics.MovementRecorded(mov.Reason)
	uc.log.Info().
		Str("trans_ref", mov.TransRef).
		Str("reason", mov.Reason).
		Int("lines", len(mov.Lines)).
		Msg("movimiento registrado")

	cache := location.NewCache(nil)
	if c, err := uc.directory.Build(ctx); err == nil {
		cache = c
	} else {
		uc.log.Warn().Err(err).Msg("directorio de ubicaciones no disponible")
	}
	return uc.toResponse(ctx, mov, cache, products), nil
}

// persist escribe movimiento y deltas de forma atómica, reintentando solo fallos transitorios.
func (uc *LedgerUseCase) persist(ctx context.Context, mov *entity.StockMovement) error {
	aggregate := dominv.AggregateDeltas(mov)
	perLocation := dominv.LocationDeltas(mov)

	attempts := uc.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = uc.txRunner.Run(ctx, func(ctx context.Context, r TxRepos) error {
			if err := r.Movements.Create(ctx, mov); err != nil {
				return err
			}
			if err := r.Products.IncrementQuantities(ctx, aggregate); err != nil {
				return err
			}
			if err := r.Stock.IncrementMany(ctx, perLocation); err != nil {
				return err
			}
			uc.stageLowStock(ctx, r, mov)
			return nil
		})
		if err == nil || !domain.IsRetryable(err) || attempt == attempts {
			break
		}
		uc.log.Warn().Err(err).Int("attempt", attempt).Str("trans_ref", mov.TransRef).Msg("reintentando movimiento")
		select {
		case <-ctx.Done():
			return domain.Storage("registrar movimiento", ctx.Err())
		case <-time.After(uc.retry.Backoff * time.Duration(attempt)):
		}
	}
	return err
}

// buildMovement valida la forma de la entrada en orden fijo y construye el movimiento.
func (uc *LedgerUseCase) buildMovement(in dto.CreateMovementRequest) (*entity.StockMovement, error) {
	from := strings.TrimSpace(in.FromLocationID)
	to := strings.TrimSpace(in.ToLocationID)
	if from == "" {
		return nil, domain.Invalid("from_location_id", "requerido")
	}
	if to == "" {
		return nil, domain.Invalid("to_location_id", "requerido")
	}
	if !entity.IsVendor(from) && !entity.IsIdentifier(from) {
		return nil, domain.Invalid("from_location_id", "identificador inválido")
	}
	if !entity.IsVendor(to) && !entity.IsIdentifier(to) {
		return nil, domain.Invalid("to_location_id", "identificador inválido")
	}
	if entity.IsVendor(from) {
		from = entity.VendorLocation
	}
	if entity.IsVendor(to) {
		to = entity.VendorLocation
	}
	if !entity.ValidReason(in.Reason) {
		return nil, domain.Invalid("reason", "debe ser Restock, Transfer, Return o Adjustment")
	}
	if err := validateEnds(in.Reason, from, to); err != nil {
		return nil, err
	}
	if len(in.LineItems) == 0 {
		return nil, domain.Invalid("line_items", "debe contener al menos una línea")
	}

	lines := make([]entity.MovementLine, 0, len(in.LineItems))
	for i, li := range in.LineItems {
		field := fmt.Sprintf("line_items[%d]", i)
		if !entity.IsIdentifier(strings.TrimSpace(li.ProductID)) {
			return nil, domain.Invalid(field+".product_id", "identificador inválido")
		}
		line := entity.MovementLine{
			ProductID:  strings.TrimSpace(li.ProductID),
			Quantity:   li.Quantity,
			Delta:      li.Quantity,
			ExpiryDate: li.ExpiryDate,
		}
		if in.Reason == entity.ReasonAdjustment && li.Delta != nil {
			if *li.Delta == 0 {
				return nil, domain.Invalid(field+".delta", "no puede ser cero")
			}
			line.Delta = *li.Delta
			line.Quantity = abs(*li.Delta)
		}
		if line.Quantity < 1 {
			return nil, domain.Invalid(field+".quantity", "debe ser mayor o igual a 1")
		}
		lines = append(lines, line)
	}

	now := uc.now()
	return &entity.StockMovement{
		ID:             uuid.New().String(),
		TransRef:       NewTransRef(now),
		FromLocationID: from,
		ToLocationID:   to,
		StaffID:        strings.TrimSpace(in.StaffID),
		Reason:         in.Reason,
		Status:         entity.MovementStatusReceived,
		Lines:          lines,
		DateSent:       now,
		DateReceived:   &now,
		CreatedAt:      now,
	}, nil
}

// validateEnds exige los extremos rastreados que cada motivo necesita para sus deltas por ubicación.
func validateEnds(reason, from, to string) error {
	fromTracked, toTracked := dominv.IsTracked(from), dominv.IsTracked(to)
	switch reason {
	case entity.ReasonRestock:
		if !toTracked {
			return domain.Invalid("to_location_id", "Restock requiere una ubicación de destino")
		}
	case entity.ReasonReturn:
		if !fromTracked {
			return domain.Invalid("from_location_id", "Return requiere una ubicación de origen")
		}
	case entity.ReasonTransfer:
		if !fromTracked || !toTracked {
			return domain.Invalid("to_location_id", "Transfer requiere origen y destino rastreados")
		}
		if strings.EqualFold(from, to) {
			return domain.Invalid("to_location_id", "origen y destino deben ser distintos")
		}
	case entity.ReasonAdjustment:
		if !fromTracked && !toTracked {
			return domain.Invalid("to_location_id", "Adjustment requiere al menos una ubicación rastreada")
		}
	}
	return nil
}

// NewTransRef referencia basada en timestamp más un sufijo aleatorio corto.
// La unicidad definitiva la garantiza el índice único del almacenamiento.
func NewTransRef(now time.Time) string {
	return fmt.Sprintf("TRF-%s-%s", now.UTC().Format("20060102150405"), strings.ToUpper(uuid.New().String()[:8]))
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
