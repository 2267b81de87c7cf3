package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/domain"
)

// writeError traduce errores de dominio a HTTP. Los fallos de almacenamiento u otros responden 500
// con un mensaje genérico; el detalle solo va al log.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var (
		ve *domain.ValidationError
		nf *domain.NotFoundError
		ce *domain.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: ve.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: nf.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.As(err, &ce):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: ce.Error()})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}
	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno, intente más tarde"})
}

// ErrorHandler manejador global de fiber: errores de fiber conservan su código, el resto pasa por writeError.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := "HTTP_ERROR"
			switch fe.Code {
			case fiber.StatusNotFound:
				code = "NOT_FOUND"
			case fiber.StatusRequestTimeout:
				code = "TIMEOUT"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		return writeError(c, log, err)
	}
}
