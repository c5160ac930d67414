package provisioning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

type reconcilerFixture struct {
	rec       *Reconciler
	subs      *memSubscriptionRepo
	customers *memCustomerRepo
	audit     *memAuditRepo
	syncer    *recordingSyncer
	radius    *recordingResyncer
	usage     *fakeUsageSource
	now       time.Time
}

func newReconcilerFixture(t *testing.T, locker Locker) *reconcilerFixture {
	t.Helper()
	now := time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)

	apiRouter := &entity.Router{ID: "r-api", Mode: entity.RouterModeAPI}
	radRouter := &entity.Router{ID: "r-rad", Mode: entity.RouterModeRadius}
	apiPkg := &entity.Package{ID: "p-api", ConnectionType: entity.ConnectionPPPoE, DurationDays: 30, RouterID: "r-api"}
	radPkg := &entity.Package{ID: "p-rad", ConnectionType: entity.ConnectionPPPoE, DurationDays: 30, RouterID: "r-rad"}

	subs := newMemSubscriptionRepo()
	customers := newMemCustomerRepo()
	audit := &memAuditRepo{}
	syncer := &recordingSyncer{}
	radius := &recordingResyncer{}
	usage := &fakeUsageSource{byRouter: make(map[string]map[string]float64)}

	pkgs := &memPackageRepo{byID: map[string]*entity.Package{apiPkg.ID: apiPkg, radPkg.ID: radPkg}}
	routers := &memRouterRepo{byID: map[string]*entity.Router{apiRouter.ID: apiRouter, radRouter.ID: radRouter}}

	syncers := NewSyncerSet()
	syncers.Register(entity.RouterModeAPI, syncer)

	lc := NewLifecycle(LifecycleDeps{
		Subscriptions: subs,
		Packages:      pkgs,
		Routers:       routers,
		Customers:     customers,
		Audit:         audit,
		Syncers:       syncers,
		Resolver:      NewResolver("user123", func() time.Time { return now }),
		Log:           testLogger(),
	})

	rec := NewReconciler(ReconcilerDeps{
		Subscriptions: subs,
		Customers:     customers,
		Routers:       routers,
		Lifecycle:     lc,
		Syncers:       syncers,
		Radius:        radius,
		Locker:        locker,
		Usage:         usage,
		Log:           testLogger(),
		Now:           func() time.Time { return now },
	})

	return &reconcilerFixture{
		rec: rec, subs: subs, customers: customers, audit: audit,
		syncer: syncer, radius: radius, usage: usage, now: now,
	}
}

func (fx *reconcilerFixture) seedSub(t *testing.T, id, pkgID, routerID, username string, end time.Time, active bool) {
	t.Helper()
	require.NoError(t, fx.subs.Create(context.Background(), &entity.Subscription{
		ID: id, CustomerID: "c-" + id, PackageID: pkgID, RouterID: routerID,
		Username: username, IsActive: active, EndTime: end,
	}))
}

func TestExpiryPass_SoloLasVencidas(t *testing.T) {
	fx := newReconcilerFixture(t, passLocker{})
	fx.seedSub(t, "s1", "p-api", "r-api", "u1", fx.now.Add(-time.Minute), true)  // vencida
	fx.seedSub(t, "s2", "p-api", "r-api", "u2", fx.now.Add(time.Hour), true)     // vigente
	fx.seedSub(t, "s3", "p-api", "r-api", "u3", fx.now.Add(-time.Hour), false)   // ya inactiva

	n, err := fx.rec.ExpiryPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s1, _ := fx.subs.GetByID(context.Background(), "s1")
	s2, _ := fx.subs.GetByID(context.Background(), "s2")
	assert.False(t, s1.IsActive)
	assert.True(t, s2.IsActive)
	assert.Equal(t, 1, fx.audit.count(entity.ActionSubscriptionExpired))
}

func TestExpiryPass_SegundaCorridaEsNoOp(t *testing.T) {
	fx := newReconcilerFixture(t, passLocker{})
	fx.seedSub(t, "s1", "p-api", "r-api", "u1", fx.now.Add(-time.Minute), true)

	n, err := fx.rec.ExpiryPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = fx.rec.ExpiryPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, fx.audit.count(entity.ActionSubscriptionExpired))
}

func TestResyncPass_SeparaRadiusDeAPI(t *testing.T) {
	fx := newReconcilerFixture(t, passLocker{})
	fx.seedSub(t, "s1", "p-api", "r-api", "u-api", fx.now.Add(time.Hour), true)
	fx.seedSub(t, "s2", "p-rad", "r-rad", "u-rad1", fx.now.Add(time.Hour), true)
	fx.seedSub(t, "s3", "p-rad", "r-rad", "u-rad2", fx.now.Add(time.Hour), true)

	require.NoError(t, fx.rec.ResyncPass(context.Background()))

	assert.ElementsMatch(t, []string{"u-api"}, fx.syncer.provisioned)
	assert.Equal(t, 1, fx.radius.runs)
	assert.Equal(t, map[string]struct{}{"u-rad1": {}, "u-rad2": {}}, fx.radius.last)
}

func TestResyncPass_Idempotente(t *testing.T) {
	fx := newReconcilerFixture(t, passLocker{})
	fx.seedSub(t, "s1", "p-rad", "r-rad", "u-rad1", fx.now.Add(time.Hour), true)
	fx.seedSub(t, "s2", "p-rad", "r-rad", "u-rad2", fx.now.Add(time.Hour), true)

	require.NoError(t, fx.rec.ResyncPass(context.Background()))
	first := fx.radius.last
	require.NoError(t, fx.rec.ResyncPass(context.Background()))

	// Dos corridas consecutivas repueblan exactamente el mismo conjunto.
	assert.Equal(t, first, fx.radius.last)
	assert.Equal(t, 2, fx.radius.runs)
}

func TestResyncPass_LockOcupadoOmiteSinError(t *testing.T) {
	fx := newReconcilerFixture(t, heldLocker{})
	fx.seedSub(t, "s1", "p-rad", "r-rad", "u-rad1", fx.now.Add(time.Hour), true)

	require.NoError(t, fx.rec.ResyncPass(context.Background()))
	assert.Equal(t, 0, fx.radius.runs, "con el lock tomado el ciclo se salta")
}

func TestUsagePass_RefrescaConsumo(t *testing.T) {
	fx := newReconcilerFixture(t, passLocker{})
	fx.seedSub(t, "s1", "p-api", "r-api", "u1", fx.now.Add(time.Hour), true)
	fx.seedSub(t, "s2", "p-rad", "r-rad", "u2", fx.now.Add(time.Hour), true)
	fx.usage.byRouter["r-api"] = map[string]float64{"u1": 1536.5, "desconocido": 10}

	require.NoError(t, fx.rec.UsagePass(context.Background()))

	assert.Equal(t, 1536.5, fx.customers.usage["c-s1"])
	_, ok := fx.customers.usage["c-s2"]
	assert.False(t, ok, "los routers RADIUS no se consultan por API")
}

func TestRun_PasadasIndependientes(t *testing.T) {
	fx := newReconcilerFixture(t, passLocker{})
	fx.seedSub(t, "s1", "p-api", "r-api", "u1", fx.now.Add(-time.Minute), true)
	fx.seedSub(t, "s2", "p-rad", "r-rad", "u2", fx.now.Add(time.Hour), true)

	fx.rec.Run(context.Background())

	s1, _ := fx.subs.GetByID(context.Background(), "s1")
	assert.False(t, s1.IsActive)
	assert.Equal(t, 1, fx.radius.runs)
}
