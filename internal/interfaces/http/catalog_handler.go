package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/application/usecase"
)

// PackageHandler maneja las peticiones HTTP del catálogo de paquetes.
type PackageHandler struct {
	uc *usecase.PackageUseCase
}

// NewPackageHandler construye el handler.
func NewPackageHandler(uc *usecase.PackageUseCase) *PackageHandler {
	return &PackageHandler{uc: uc}
}

// Create POST /api/packages
func (h *PackageHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePackageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	pkg, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pkg)
}

// List GET /api/packages?connection_type=HOTSPOT&limit=20&offset=0
func (h *PackageHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	list, err := h.uc.ListByConnectionType(c.Context(), c.Query("connection_type"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/packages/:id
func (h *PackageHandler) GetByID(c *fiber.Ctx) error {
	pkg, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pkg)
}

// Delete DELETE /api/packages/:id
func (h *PackageHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RouterHandler maneja las peticiones HTTP de los equipos de acceso.
type RouterHandler struct {
	uc *usecase.RouterUseCase
}

// NewRouterHandler construye el handler.
func NewRouterHandler(uc *usecase.RouterUseCase) *RouterHandler {
	return &RouterHandler{uc: uc}
}

// Create POST /api/routers
func (h *RouterHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRouterRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	router, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(router)
}

// List GET /api/routers
func (h *RouterHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/routers/:id
func (h *RouterHandler) GetByID(c *fiber.Ctx) error {
	router, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(router)
}

// Delete DELETE /api/routers/:id
func (h *RouterHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
