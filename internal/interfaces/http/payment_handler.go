package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/application/usecase"
)

// PaymentHandler maneja facturación y el callback de la pasarela de pagos.
type PaymentHandler struct {
	invoices  *usecase.InvoiceUseCase
	lifecycle *provisioning.Lifecycle
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(invoices *usecase.InvoiceUseCase, lifecycle *provisioning.Lifecycle) *PaymentHandler {
	return &PaymentHandler{invoices: invoices, lifecycle: lifecycle}
}

// CreateInvoice POST /api/invoices
func (h *PaymentHandler) CreateInvoice(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inv, err := h.invoices.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// GetInvoice GET /api/invoices/:id
func (h *PaymentHandler) GetInvoice(c *fiber.Ctx) error {
	inv, err := h.invoices.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inv)
}

// ListInvoicesByCustomer GET /api/customers/:id/invoices
func (h *PaymentHandler) ListInvoicesByCustomer(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	list, err := h.invoices.ListByCustomer(c.Context(), c.Params("id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Callback POST /api/payments/callback (público: lo invoca la pasarela)
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	var in dto.PaymentCallbackRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	sub, err := h.lifecycle.HandlePaymentEvent(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	if sub == nil {
		// PENDING o FAILED: se registra pero no hay suscripción que devolver.
		return c.JSON(fiber.Map{"status": "recorded"})
	}
	return c.JSON(toSubscriptionResponse(sub))
}
