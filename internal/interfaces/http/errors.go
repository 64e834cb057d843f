package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/domain"
	"github.com/jhoicas/flota-api/pkg/logger"
)

// retryAfterSeconds sugerencia al cliente ante CONCURRENCY_CONFLICT.
const retryAfterSeconds = "1"

// writeError traduce errores de dominio a la respuesta HTTP:
//
//	INVALID_BODY          400
//	VALIDATION            400
//	NOT_FOUND             404
//	INSUFFICIENT_STOCK    409 (details: item_id, available, requested)
//	INVALID_MOVEMENT_TYPE 422
//	CONCURRENCY_CONFLICT  409 + Retry-After
//	INTERNAL              500 (se registra en el log)
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var (
		validation *domain.ValidationError
		stock      *domain.InsufficientStockError
		reason     *domain.InvalidMovementTypeError
	)
	switch {
	case errors.Is(err, errInvalidBody):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	case errors.As(err, &validation):
		resp := dto.ErrorResponse{Code: "VALIDATION", Message: validation.Message}
		if validation.Field != "" {
			resp.Details = map[string]any{"field": validation.Field}
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.As(err, &stock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: "stock insuficiente",
			Details: map[string]any{
				"item_id":   stock.ItemID,
				"available": stock.Available.String(),
				"requested": stock.Requested.String(),
			},
		})
	case errors.As(err, &reason):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "INVALID_MOVEMENT_TYPE",
			Message: "tipo de movimiento inválido",
			Details: map[string]any{"reason": reason.Reason},
		})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente"})
	default:
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
