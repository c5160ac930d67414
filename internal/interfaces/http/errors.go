package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/domain"
)

// respondError mapea los errores de dominio a estados HTTP. Los no mapeados
// caen en 500 con el mensaje crudo (API interna de operación, no pública).
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrZeroDuration):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrVoucherNotRedeemable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "VOUCHER_NOT_REDEEMABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrPackageMismatch):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PACKAGE_MISMATCH", Message: err.Error()})
	case errors.Is(err, domain.ErrSubscriptionInactive):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SUBSCRIPTION_INACTIVE", Message: err.Error()})
	case errors.Is(err, domain.ErrCodeSpaceExhausted):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CODE_SPACE_EXHAUSTED", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
