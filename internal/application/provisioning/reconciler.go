package provisioning

import (
	"context"
	"time"

	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

// Clave y TTL del lock de escritor único del resync RADIUS. El backend
// RADIUS es un recurso compartido: dos resyncs solapados podrían truncarse
// las filas mutuamente.
const (
	radiusResyncLockKey = "wisp:radius:resync"
	radiusResyncLockTTL = 10 * time.Minute
)

// ReconcilerDeps dependencias del reconciliador.
type ReconcilerDeps struct {
	Subscriptions repository.SubscriptionRepository
	Customers     repository.CustomerRepository
	Routers       repository.RouterRepository
	Lifecycle     *Lifecycle
	Syncers       *SyncerSet
	Radius        RadiusResyncer
	Locker        Locker
	Usage         UsageSource
	Log           *logger.Logger
	Now           func() time.Time
}

// Reconciler job periódico que alinea el estado de los equipos de acceso con
// la fuente de verdad de facturación. Corre dos pasadas independientes:
// expiración de suscripciones vencidas y resync total de las activas. Toda la
// coordinación pasa por estado persistido, de modo que varias instancias
// pueden programarse sin compartir memoria.
type Reconciler struct {
	subs      repository.SubscriptionRepository
	customers repository.CustomerRepository
	routers   repository.RouterRepository
	lifecycle *Lifecycle
	syncers   *SyncerSet
	radius    RadiusResyncer
	locker    Locker
	usage     UsageSource
	log       *logger.Logger
	now       func() time.Time
}

// NewReconciler construye el reconciliador.
func NewReconciler(d ReconcilerDeps) *Reconciler {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Reconciler{
		subs:      d.Subscriptions,
		customers: d.Customers,
		routers:   d.Routers,
		lifecycle: d.Lifecycle,
		syncers:   d.Syncers,
		radius:    d.Radius,
		locker:    d.Locker,
		usage:     d.Usage,
		log:       d.Log,
		now:       d.Now,
	}
}

// Run ejecuta un ciclo completo. Las pasadas son independientes: la falla de
// una no impide la siguiente.
func (r *Reconciler) Run(ctx context.Context) {
	if n, err := r.ExpiryPass(ctx); err != nil {
		r.log.Error().Err(err).Msg("pasada de expiración falló")
	} else if n > 0 {
		r.log.Info().Int("expired", n).Msg("suscripciones expiradas")
	}
	if err := r.ResyncPass(ctx); err != nil {
		r.log.Error().Err(err).Msg("pasada de resync falló")
	}
	if err := r.UsagePass(ctx); err != nil {
		r.log.Warn().Err(err).Msg("pasada de consumo falló")
	}
}

// ExpiryPass expira toda suscripción activa con end_time <= now. Los errores
// se aíslan por elemento: una suscripción que no se puede desaprovisionar no
// bloquea al resto.
func (r *Reconciler) ExpiryPass(ctx context.Context) (int, error) {
	expired, err := r.subs.ListActiveExpiredBefore(ctx, r.now())
	if err != nil {
		return 0, err
	}
	count := 0
	for _, sub := range expired {
		if err := r.lifecycle.Expire(ctx, sub, ""); err != nil {
			r.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("no se pudo expirar")
			continue
		}
		count++
	}
	return count, nil
}

// ResyncPass vuelve a empujar el estado de todas las suscripciones activas a
// sus backends. Para routers API/VPN re-aplica credenciales una a una (los
// sincronizadores son idempotentes); para RADIUS ejecuta el replanteo total
// truncar-y-repoblar bajo el lock de escritor único.
func (r *Reconciler) ResyncPass(ctx context.Context) error {
	active, err := r.subs.ListActive(ctx)
	if err != nil {
		return err
	}

	var radiusTargets []Target
	for _, sub := range active {
		t, err := r.lifecycle.LoadTarget(ctx, sub)
		if err != nil {
			r.log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("suscripción sin paquete o router")
			continue
		}
		if t.Router.Mode == entity.RouterModeRadius {
			radiusTargets = append(radiusTargets, t)
			continue
		}
		// Falla aislada por elemento; queda en bitácora vía lifecycle.
		r.lifecycle.SyncTarget(ctx, t)
	}

	return r.resyncRadius(ctx, radiusTargets)
}

// resyncRadius corre el replanteo destructivo serializado. Si otro proceso
// sostiene el lock se omite el ciclo: el siguiente tick lo retoma.
func (r *Reconciler) resyncRadius(ctx context.Context, targets []Target) error {
	if r.radius == nil {
		return nil
	}
	err := r.locker.WithLock(ctx, radiusResyncLockKey, radiusResyncLockTTL, func(ctx context.Context) error {
		return r.radius.Resync(ctx, targets)
	})
	if err == domain.ErrLockHeld {
		r.log.Info().Msg("resync RADIUS omitido: lock ocupado")
		return nil
	}
	return err
}

// UsagePass refresca el consumo acumulado de los abonados desde el
// accounting de los routers API/VPN (el original lo leía del hotspot).
func (r *Reconciler) UsagePass(ctx context.Context) error {
	if r.usage == nil {
		return nil
	}
	active, err := r.subs.ListActive(ctx)
	if err != nil {
		return err
	}
	customerByUsername := make(map[string]string, len(active))
	routerIDs := make(map[string]struct{})
	for _, sub := range active {
		customerByUsername[sub.Username] = sub.CustomerID
		routerIDs[sub.RouterID] = struct{}{}
	}

	for routerID := range routerIDs {
		router, err := r.routers.GetByID(ctx, routerID)
		if err != nil || router == nil || router.Mode == entity.RouterModeRadius {
			continue
		}
		usage, err := r.usage.CollectUsage(ctx, router)
		if err != nil {
			r.log.Warn().Err(err).Str("router_id", routerID).Msg("lectura de accounting falló")
			continue
		}
		for username, mb := range usage {
			customerID, ok := customerByUsername[username]
			if !ok {
				continue
			}
			if err := r.customers.UpdateDataUsage(ctx, customerID, mb); err != nil {
				r.log.Warn().Err(err).Str("customer_id", customerID).Msg("no se pudo actualizar consumo")
			}
		}
	}
	return nil
}

// Loop corre ciclos en el intervalo dado hasta que el contexto se cancele.
// Ejecuta un ciclo inmediato al arrancar.
func (r *Reconciler) Loop(ctx context.Context, interval time.Duration) {
	r.log.Info().Dur("interval", interval).Msg("reconciliador iniciado")
	r.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("reconciliador detenido")
			return
		case <-ticker.C:
			r.Run(ctx)
		}
	}
}
