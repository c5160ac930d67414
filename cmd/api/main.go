package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/tu-usuario/wisp-core/internal/application/auth"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/application/usecase"
	"github.com/tu-usuario/wisp-core/internal/application/vouchers"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/infrastructure/mikrotik"
	infrapdf "github.com/tu-usuario/wisp-core/internal/infrastructure/pdf"
	"github.com/tu-usuario/wisp-core/internal/infrastructure/plugins"
	"github.com/tu-usuario/wisp-core/internal/infrastructure/postgres"
	infraradius "github.com/tu-usuario/wisp-core/internal/infrastructure/radius"
	httpRouter "github.com/tu-usuario/wisp-core/internal/interfaces/http"
	"github.com/tu-usuario/wisp-core/pkg/config"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	// Repositorios
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	routerRepo := postgres.NewRouterRepository(pool)
	packageRepo := postgres.NewPackageRepository(pool)
	voucherRepo := postgres.NewVoucherRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)

	// Plugins: la variante activa se resuelve por nombre en el arranque.
	registry := plugins.NewRegistry()
	registry.RegisterMessenger("log", &plugins.LogMessenger{Log: log.Component("sms")})
	registry.RegisterMessenger("http-sms", plugins.NewHTTPSMSMessenger(cfg.Plugins.SMSGatewayURL, cfg.Plugins.SMSGatewayToken))
	registry.RegisterPayment("http-gateway", plugins.NewHTTPPaymentGateway(cfg.Plugins.PaymentGwURL, cfg.Plugins.PaymentGwToken))

	messenger, err := registry.Messenger(cfg.Plugins.Messaging)
	if err != nil {
		log.Fatal().Err(err).Msg("plugin de mensajería")
	}
	gateway, err := registry.Payment(cfg.Plugins.Payment)
	if err != nil {
		log.Fatal().Err(err).Msg("plugin de pagos")
	}

	// Sincronizadores por modo de router
	dialer := mikrotik.NewDialer(mikrotik.DialConfig{
		Timeout: cfg.Sync.Timeout,
		Retries: uint64(cfg.Sync.DialRetries),
	})
	apiSyncer := mikrotik.NewSyncer(dialer, log.Component("mikrotik"))
	vpnSyncer := mikrotik.NewTunneledSyncer(apiSyncer, &mikrotik.ProbeTunnelManager{}, log.Component("mikrotik-vpn"))
	radiusSyncer := infraradius.NewSyncer(pool, auditRepo, log.Component("radius"))

	syncers := provisioning.NewSyncerSet()
	syncers.Register(entity.RouterModeAPI, apiSyncer)
	syncers.Register(entity.RouterModeVPN, vpnSyncer)
	syncers.Register(entity.RouterModeRadius, radiusSyncer)

	// Motor de aprovisionamiento
	resolver := provisioning.NewResolver(cfg.Voucher.DefaultSecret, nil)
	minter := vouchers.NewMinter(voucherRepo)
	lifecycle := provisioning.NewLifecycle(provisioning.LifecycleDeps{
		Subscriptions: subscriptionRepo,
		Packages:      packageRepo,
		Routers:       routerRepo,
		Payments:      paymentRepo,
		Invoices:      invoiceRepo,
		Customers:     customerRepo,
		Audit:         auditRepo,
		Syncers:       syncers,
		Resolver:      resolver,
		Minter:        minter,
		Messenger:     messenger,
		Log:           log.Component("lifecycle"),
	})

	// Casos de uso
	packageUC := usecase.NewPackageUseCase(packageRepo, routerRepo)
	routerUC := usecase.NewRouterUseCase(routerRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo, messenger, log.Component("customers"))
	invoiceUC := usecase.NewInvoiceUseCase(invoiceRepo, paymentRepo, customerRepo, packageRepo, gateway, log.Component("invoices"))
	voucherUC := vouchers.NewUseCase(voucherRepo, packageRepo, auditRepo, lifecycle, infrapdf.NewVoucherCardRenderer(), log.Component("vouchers"))
	authUC := auth.NewUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Redis se valida en el arranque aunque el API no tome locks: compartimos
	// la instancia con el reconciliador y conviene fallar temprano.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis no disponible")
	}
	defer redisClient.Close()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		PackageUC:  packageUC,
		RouterUC:   routerUC,
		CustomerUC: customerUC,
		InvoiceUC:  invoiceUC,
		VoucherUC:  voucherUC,
		AuthUC:     authUC,
		Lifecycle:  lifecycle,
		SubRepo:    subscriptionRepo,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
