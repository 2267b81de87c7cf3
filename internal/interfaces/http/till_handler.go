package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/application/till"
)

// TillHandler apertura, cierre y resumen de cajas (protegido).
type TillHandler struct {
	uc       *till.UseCase
	validate *validator.Validate
	log      zerolog.Logger
}

// NewTillHandler construye el handler.
func NewTillHandler(uc *till.UseCase, log zerolog.Logger) *TillHandler {
	return &TillHandler{uc: uc, validate: newValidator(), log: log}
}

// Open godoc
// @Summary      Abrir caja
// @Tags         tills
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenTillRequest  true  "store_id (por defecto la del token), location_id, staff_id, staff_name, opening_balance"
// @Success      201   {object}  dto.TillResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tills/open [post]
func (h *TillHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenTillRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, h.log, errInvalidBody)
	}
	if in.StoreID == "" {
		in.StoreID = GetStoreID(c)
	}
	if err := validateStruct(h.validate, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Open(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Close godoc
// @Summary      Cerrar y conciliar caja
// @Description  Concilia la caja abierta del día contra las ventas completadas desde la apertura.
// @Tags         tills
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CloseTillRequest  true  "location_id, physical_count, closed_by (por defecto el usuario del token), closing_notes"
// @Success      200   {object}  dto.TillResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tills/close [post]
func (h *TillHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseTillRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, h.log, errInvalidBody)
	}
	if in.ClosedBy == "" {
		in.ClosedBy = GetUserID(c)
	}
	if err := validateStruct(h.validate, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Close(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de cierres
// @Tags         tills
// @Security     Bearer
// @Produce      json
// @Param        period       query  string  false  "today | yesterday | thisWeek | thisMonth | thisYear | day | week | month | year"
// @Param        location_id  query  string  false  "Ubicación"
// @Param        store_id     query  string  false  "Tienda (por defecto la del token)"
// @Success      200  {object}  dto.TillSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/tills/summary [get]
func (h *TillHandler) Summary(c *fiber.Ctx) error {
	var in dto.TillSummaryRequest
	if err := parseQuery(c, h.validate, &in); err != nil {
		return writeError(c, h.log, err)
	}
	if in.StoreID == "" {
		in.StoreID = GetStoreID(c)
	}
	out, err := h.uc.Summarize(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener reporte de caja
// @Tags         tills
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del reporte"
// @Success      200  {object}  dto.TillResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tills/{id} [get]
func (h *TillHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetOpen godoc
// @Summary      Caja abierta de una ubicación
// @Tags         tills
// @Security     Bearer
// @Produce      json
// @Param        location_id  path  string  true  "Ubicación"
// @Success      200  {object}  dto.TillResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tills/open/{location_id} [get]
func (h *TillHandler) GetOpen(c *fiber.Ctx) error {
	out, err := h.uc.GetOpen(c.UserContext(), c.Params("location_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
