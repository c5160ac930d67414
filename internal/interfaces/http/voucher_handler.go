package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/application/vouchers"
)

// VoucherHandler maneja las peticiones HTTP del libro de vouchers.
type VoucherHandler struct {
	uc *vouchers.UseCase
}

// NewVoucherHandler construye el handler.
func NewVoucherHandler(uc *vouchers.UseCase) *VoucherHandler {
	return &VoucherHandler{uc: uc}
}

// Generate POST /api/vouchers/generate (protegido)
func (h *VoucherHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateVouchersRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Generate(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Redeem POST /api/vouchers/redeem (público: lo usa el portal cautivo)
func (h *VoucherHandler) Redeem(c *fiber.Ctx) error {
	var in dto.RedeemVoucherRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Redeem(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// CardsPDF GET /api/vouchers/batches/:batch_id/cards.pdf (protegido)
func (h *VoucherHandler) CardsPDF(c *fiber.Ctx) error {
	pdf, err := h.uc.CardsPDF(c.Context(), c.Params("batch_id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}
