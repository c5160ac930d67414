package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/application/vouchers"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/infrastructure/mikrotik"
	"github.com/tu-usuario/wisp-core/internal/infrastructure/plugins"
	"github.com/tu-usuario/wisp-core/internal/infrastructure/postgres"
	infraradius "github.com/tu-usuario/wisp-core/internal/infrastructure/radius"
	"github.com/tu-usuario/wisp-core/internal/infrastructure/redislock"
	"github.com/tu-usuario/wisp-core/pkg/config"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

// Proceso del reconciliador: corre separado del API para que un ciclo largo
// (resync RADIUS, routers lentos) no compita con el tráfico HTTP. Varias
// instancias pueden coexistir; la exclusión pasa por el lock en Redis.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	}).Component("reconciler")
	log.Info().
		Str("env", cfg.App.Env).
		Dur("interval", cfg.Scheduler.Interval).
		Msg("iniciando reconciliador")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer redisClient.Close()

	customerRepo := postgres.NewCustomerRepository(pool)
	routerRepo := postgres.NewRouterRepository(pool)
	packageRepo := postgres.NewPackageRepository(pool)
	voucherRepo := postgres.NewVoucherRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)

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

	// El reconciliador no envía SMS ni cobra; la mensajería queda en log.
	lifecycle := provisioning.NewLifecycle(provisioning.LifecycleDeps{
		Subscriptions: subscriptionRepo,
		Packages:      packageRepo,
		Routers:       routerRepo,
		Payments:      paymentRepo,
		Invoices:      invoiceRepo,
		Customers:     customerRepo,
		Audit:         auditRepo,
		Syncers:       syncers,
		Resolver:      provisioning.NewResolver(cfg.Voucher.DefaultSecret, nil),
		Minter:        vouchers.NewMinter(voucherRepo),
		Messenger:     &plugins.LogMessenger{Log: log.Component("sms")},
		Log:           log.Component("lifecycle"),
	})

	reconciler := provisioning.NewReconciler(provisioning.ReconcilerDeps{
		Subscriptions: subscriptionRepo,
		Customers:     customerRepo,
		Routers:       routerRepo,
		Lifecycle:     lifecycle,
		Syncers:       syncers,
		Radius:        radiusSyncer,
		Locker:        redislock.NewLocker(redisClient),
		Usage:         vpnSyncer,
		Log:           log,
	})

	reconciler.Loop(ctx, cfg.Scheduler.Interval)

	log.Info().Msg("reconciliador detenido")
}
