package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP del ledger de movimientos (protegido).
type InventoryHandler struct {
	uc       *inventory.LedgerUseCase
	validate *validator.Validate
	log      zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, validate: newValidator(), log: log}
}

// CreateMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Restock, Transfer, Return o Adjustment. Aplica los deltas de cantidad de forma atómica.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "from_location_id, to_location_id (\"vendor\" = proveedor), reason, line_items"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := parseBody(c, h.validate, &in); err != nil {
		return writeError(c, h.log, err)
	}
	if in.StaffID == "" {
		in.StaffID = GetUserID(c)
	}
	out, err := h.uc.CreateMovement(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "Pending | Sent | Received"
// @Param        reason       query  string  false  "Restock | Transfer | Return | Adjustment"
// @Param        location_id  query  string  false  "Origen o destino"
// @Param        date_from    query  string  false  "YYYY-MM-DD"
// @Param        date_to      query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        limit        query  int     false  "Máximo 100"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if err := parseQuery(c, h.validate, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.ListMovements(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	out, err := h.uc.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ReceiveMovement godoc
// @Summary      Marcar movimiento como recibido
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/receive [post]
func (h *InventoryHandler) ReceiveMovement(c *fiber.Ctx) error {
	out, err := h.uc.ReceiveMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ExpiryProjection godoc
// @Summary      Lotes con vencimiento
// @Description  Un lote por línea de movimiento con fecha de vencimiento, ordenados por fecha ascendente.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id           query  string  false  "Ubicación del lote"
// @Param        expiring_within_days  query  int     false  "Solo lotes que vencen en los próximos N días"
// @Success      200  {object}  dto.ExpiryListResponse
// @Router       /api/inventory/expiry [get]
func (h *InventoryHandler) ExpiryProjection(c *fiber.Ctx) error {
	var in dto.ExpiryListRequest
	if err := parseQuery(c, h.validate, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.ExpiryProjection(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListStock godoc
// @Summary      Stock por ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "Ubicación"
// @Success      200  {object}  dto.StockListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	var in dto.StockRequest
	if err := parseQuery(c, h.validate, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.ListStock(c.UserContext(), in.LocationID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Productos bajo umbral (negativos incluidos), mayor faltante primero, con cantidad sugerida y costo estimado.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de productos (por defecto 50)"
// @Success      200  {object}  dto.ReplenishmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	var in dto.ReplenishmentRequest
	if err := parseQuery(c, h.validate, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Replenishment(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Directory godoc
// @Summary      Directorio de ubicaciones
// @Description  Volcado del caché id → nombre, incluidos los centinelas de proveedor y desconocido.
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LocationDirectoryResponse
// @Router       /api/locations [get]
func (h *InventoryHandler) Directory(c *fiber.Ctx) error {
	out, err := h.uc.Directory(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
