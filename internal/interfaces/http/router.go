package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/wisp-core/internal/application/auth"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/application/usecase"
	"github.com/tu-usuario/wisp-core/internal/application/vouchers"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PackageUC  *usecase.PackageUseCase
	RouterUC   *usecase.RouterUseCase
	CustomerUC *usecase.CustomerUseCase
	InvoiceUC  *usecase.InvoiceUseCase
	VoucherUC  *vouchers.UseCase
	AuthUC     *auth.UseCase
	Lifecycle  *provisioning.Lifecycle
	SubRepo    repository.SubscriptionRepository
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Canje de voucher (público: lo usa el portal cautivo)
	voucherHandler := NewVoucherHandler(deps.VoucherUC)
	api.Post("/vouchers/redeem", voucherHandler.Redeem)

	// Callback de la pasarela de pagos (público)
	paymentHandler := NewPaymentHandler(deps.InvoiceUC, deps.Lifecycle)
	api.Post("/payments/callback", paymentHandler.Callback)

	// Alta de abonado (público: autoservicio desde el portal)
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	api.Post("/customers", customerHandler.Create)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Packages (protegido)
	packages := protected.Group("/packages")
	packageHandler := NewPackageHandler(deps.PackageUC)
	packages.Post("/", packageHandler.Create)
	packages.Get("/", packageHandler.List)
	packages.Get("/:id", packageHandler.GetByID)
	packages.Delete("/:id", RequireRole(entity.RoleAdmin), packageHandler.Delete)

	// Routers (protegido, solo admin escribe)
	routers := protected.Group("/routers")
	routerHandler := NewRouterHandler(deps.RouterUC)
	routers.Post("/", RequireRole(entity.RoleAdmin), routerHandler.Create)
	routers.Get("/", routerHandler.List)
	routers.Get("/:id", routerHandler.GetByID)
	routers.Delete("/:id", RequireRole(entity.RoleAdmin), routerHandler.Delete)

	// Vouchers (protegido)
	vouchersGroup := protected.Group("/vouchers")
	vouchersGroup.Post("/generate", voucherHandler.Generate)
	vouchersGroup.Get("/batches/:batch_id/cards.pdf", voucherHandler.CardsPDF)

	// Subscriptions (protegido)
	subs := protected.Group("/subscriptions")
	subHandler := NewSubscriptionHandler(deps.SubRepo, deps.Lifecycle)
	subs.Get("/:id", subHandler.GetByID)
	subs.Post("/:id/compensate", subHandler.Compensate)
	subs.Post("/:id/expire", subHandler.Expire)

	// Customers (protegido: listado y detalle)
	customers := protected.Group("/customers")
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Get("/:id/subscriptions", subHandler.ListByCustomer)
	customers.Get("/:id/invoices", paymentHandler.ListInvoicesByCustomer)

	// Invoices (protegido)
	invoices := protected.Group("/invoices")
	invoices.Post("/", paymentHandler.CreateInvoice)
	invoices.Get("/:id", paymentHandler.GetInvoice)
}
