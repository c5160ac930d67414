package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/billing"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

// SubscriptionHandler operaciones administrativas sobre suscripciones.
type SubscriptionHandler struct {
	subs      repository.SubscriptionRepository
	lifecycle *provisioning.Lifecycle
}

// NewSubscriptionHandler construye el handler.
func NewSubscriptionHandler(subs repository.SubscriptionRepository, lifecycle *provisioning.Lifecycle) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, lifecycle: lifecycle}
}

// ListByCustomer GET /api/customers/:id/subscriptions
func (h *SubscriptionHandler) ListByCustomer(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	list, err := h.subs.ListByCustomer(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.SubscriptionResponse, len(list))
	for i, s := range list {
		out[i] = toSubscriptionResponse(s)
	}
	return c.JSON(out)
}

// GetByID GET /api/subscriptions/:id
func (h *SubscriptionHandler) GetByID(c *fiber.Ctx) error {
	sub, err := h.subs.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if sub == nil {
		return respondError(c, domain.ErrNotFound)
	}
	return c.JSON(toSubscriptionResponse(sub))
}

// Compensate POST /api/subscriptions/:id/compensate
func (h *SubscriptionHandler) Compensate(c *fiber.Ctx) error {
	var in dto.CompensationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	extra := billing.Duration(in.ExtraMinutes, in.ExtraHours, in.ExtraDays)
	sub, err := h.lifecycle.ApplyCompensation(c.Context(), c.Params("id"), extra, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSubscriptionResponse(sub))
}

// Expire POST /api/subscriptions/:id/expire (corte manual anticipado)
func (h *SubscriptionHandler) Expire(c *fiber.Ctx) error {
	sub, err := h.subs.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if sub == nil {
		return respondError(c, domain.ErrNotFound)
	}
	if err := h.lifecycle.Expire(c.Context(), sub, GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSubscriptionResponse(sub))
}

func toSubscriptionResponse(s *entity.Subscription) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		ID:             s.ID,
		CustomerID:     s.CustomerID,
		PackageID:      s.PackageID,
		ConnectionType: s.ConnectionType,
		Username:       s.Username,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		IsActive:       s.IsActive,
		RouterID:       s.RouterID,
	}
}
