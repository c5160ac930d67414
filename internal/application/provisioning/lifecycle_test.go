package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

type lifecycleFixture struct {
	lc        *Lifecycle
	subs      *memSubscriptionRepo
	payments  *memPaymentRepo
	invoices  *memInvoiceRepo
	audit     *memAuditRepo
	syncer    *recordingSyncer
	messenger *recordingMessenger
	minter    *fakeMinter
	router    *entity.Router
	pkg       *entity.Package
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	router := &entity.Router{
		ID:                 "r1",
		Mode:               entity.RouterModeAPI,
		HotspotLoginMethod: entity.LoginPhone,
	}
	pkg := &entity.Package{
		ID:             "p1",
		Name:           "PPPoE 30 días",
		ConnectionType: entity.ConnectionPPPoE,
		DurationDays:   30,
		RouterID:       "r1",
	}
	customer := &entity.Customer{ID: "c1", Phone: "3120000000"}

	subs := newMemSubscriptionRepo()
	payments := newMemPaymentRepo()
	invoices := &memInvoiceRepo{byID: make(map[string]*entity.Invoice)}
	audit := &memAuditRepo{}
	syncer := &recordingSyncer{}
	messenger := &recordingMessenger{}
	minter := &fakeMinter{code: "MINTCODE"}

	customers := newMemCustomerRepo()
	require.NoError(t, customers.Create(context.Background(), customer))

	syncers := NewSyncerSet()
	syncers.Register(entity.RouterModeAPI, syncer)

	lc := NewLifecycle(LifecycleDeps{
		Subscriptions: subs,
		Packages:      &memPackageRepo{byID: map[string]*entity.Package{pkg.ID: pkg}},
		Routers:       &memRouterRepo{byID: map[string]*entity.Router{router.ID: router}},
		Payments:      payments,
		Invoices:      invoices,
		Customers:     customers,
		Audit:         audit,
		Syncers:       syncers,
		Resolver:      NewResolver("user123", nil),
		Minter:        minter,
		Messenger:     messenger,
		Log:           testLogger(),
	})

	return &lifecycleFixture{
		lc: lc, subs: subs, payments: payments, invoices: invoices,
		audit: audit, syncer: syncer, messenger: messenger, minter: minter,
		router: router, pkg: pkg,
	}
}

func (fx *lifecycleFixture) seedInvoiceAndPayment(t *testing.T) (*entity.Invoice, *entity.Payment) {
	t.Helper()
	invoice := &entity.Invoice{
		ID:         "i1",
		CustomerID: "c1",
		PackageID:  "p1",
		Amount:     decimal.NewFromInt(25000),
		Status:     entity.InvoicePending,
	}
	require.NoError(t, fx.invoices.Create(context.Background(), invoice))
	payment := &entity.Payment{
		ID:            "pay1",
		CustomerID:    "c1",
		InvoiceID:     "i1",
		Amount:        invoice.Amount,
		TransactionID: "TX-1",
		Method:        entity.MethodMobileMoney,
		Status:        entity.PaymentPending,
	}
	require.NoError(t, fx.payments.Create(context.Background(), payment))
	return invoice, payment
}

func TestCreateFromPayment_ConvierteYMarcaFactura(t *testing.T) {
	fx := newLifecycleFixture(t)
	invoice, payment := fx.seedInvoiceAndPayment(t)

	sub, err := fx.lc.CreateFromPayment(context.Background(), payment)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.True(t, sub.IsActive)
	assert.Equal(t, sub.StartTime.Add(30*24*time.Hour), sub.EndTime)

	got, _ := fx.invoices.GetByID(context.Background(), invoice.ID)
	assert.Equal(t, entity.InvoicePaid, got.Status)
	assert.Equal(t, sub.ID, got.SubscriptionID)
	require.NotNil(t, got.PaidAt)

	assert.Equal(t, entity.PaymentSuccess, payment.Status)
	assert.Equal(t, 1, fx.audit.count(entity.ActionPaymentApplied))
	assert.Equal(t, 1, fx.audit.count(entity.ActionSubscriptionSynced))
	assert.Len(t, fx.syncer.provisioned, 1)
	assert.Len(t, fx.messenger.sent, 1)
}

func TestCreateFromPayment_Idempotente(t *testing.T) {
	fx := newLifecycleFixture(t)
	_, payment := fx.seedInvoiceAndPayment(t)

	first, err := fx.lc.CreateFromPayment(context.Background(), payment)
	require.NoError(t, err)
	second, err := fx.lc.CreateFromPayment(context.Background(), payment)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, fx.subs.byID, 1, "un pago repetido no duplica la suscripción")
	assert.Equal(t, 1, fx.audit.count(entity.ActionPaymentApplied))
}

func TestCreateFromPayment_HotspotVoucherEmiteCodigo(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.pkg.ConnectionType = entity.ConnectionHotspot
	fx.pkg.DurationDays = 0
	fx.pkg.DurationHours = 3
	fx.router.HotspotLoginMethod = entity.LoginVoucher
	_, payment := fx.seedInvoiceAndPayment(t)

	sub, err := fx.lc.CreateFromPayment(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, "MINTCODE", sub.Username, "el código emitido es el username de hotspot")
}

func TestCreateFromPayment_FallaDeEmisionAborta(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.pkg.ConnectionType = entity.ConnectionHotspot
	fx.pkg.DurationHours = 3
	fx.router.HotspotLoginMethod = entity.LoginVoucher
	fx.minter.err = domain.ErrCodeSpaceExhausted
	_, payment := fx.seedInvoiceAndPayment(t)

	_, err := fx.lc.CreateFromPayment(context.Background(), payment)
	assert.ErrorIs(t, err, domain.ErrCodeSpaceExhausted)
	assert.Empty(t, fx.subs.byID)
}

func TestHandlePaymentEvent_Estados(t *testing.T) {
	t.Run("SUCCESS convierte", func(t *testing.T) {
		fx := newLifecycleFixture(t)
		fx.seedInvoiceAndPayment(t)

		sub, err := fx.lc.HandlePaymentEvent(context.Background(), dto.PaymentCallbackRequest{
			TransactionID: "TX-1",
			Status:        entity.PaymentSuccess,
		})
		require.NoError(t, err)
		assert.NotNil(t, sub)
	})

	t.Run("FAILED marca pago y factura", func(t *testing.T) {
		fx := newLifecycleFixture(t)
		invoice, _ := fx.seedInvoiceAndPayment(t)

		sub, err := fx.lc.HandlePaymentEvent(context.Background(), dto.PaymentCallbackRequest{
			TransactionID: "TX-1",
			Status:        entity.PaymentFailed,
		})
		require.NoError(t, err)
		assert.Nil(t, sub)
		got, _ := fx.invoices.GetByID(context.Background(), invoice.ID)
		assert.Equal(t, entity.InvoiceFailed, got.Status)
		assert.Empty(t, fx.subs.byID)
	})

	t.Run("PENDING no hace nada", func(t *testing.T) {
		fx := newLifecycleFixture(t)
		fx.seedInvoiceAndPayment(t)

		sub, err := fx.lc.HandlePaymentEvent(context.Background(), dto.PaymentCallbackRequest{
			TransactionID: "TX-1",
			Status:        entity.PaymentPending,
		})
		require.NoError(t, err)
		assert.Nil(t, sub)
	})

	t.Run("transacción desconocida", func(t *testing.T) {
		fx := newLifecycleFixture(t)
		_, err := fx.lc.HandlePaymentEvent(context.Background(), dto.PaymentCallbackRequest{
			TransactionID: "TX-NADIE",
			Status:        entity.PaymentSuccess,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSyncFailure_NoRevierteLaSuscripcion(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.syncer.provisionErr = errors.New("router inalcanzable")
	_, payment := fx.seedInvoiceAndPayment(t)

	sub, err := fx.lc.CreateFromPayment(context.Background(), payment)
	require.NoError(t, err, "la falla de red no es fatal para la conversión")
	require.NotNil(t, sub)
	assert.True(t, sub.IsActive)

	assert.Equal(t, 1, fx.audit.count(entity.ActionProvisionFailed))
	assert.Equal(t, 0, fx.audit.count(entity.ActionSubscriptionSynced))

	got, _ := fx.invoices.GetByID(context.Background(), payment.InvoiceID)
	assert.Equal(t, entity.InvoicePaid, got.Status, "la facturación se compromete igual")
}

func TestExpire_Idempotente(t *testing.T) {
	fx := newLifecycleFixture(t)
	sub := &entity.Subscription{
		ID: "s1", CustomerID: "c1", PackageID: "p1", RouterID: "r1",
		Username: "pppoe_3120000000_20260101000000", IsActive: true,
		EndTime: time.Now().Add(-time.Hour),
	}
	require.NoError(t, fx.subs.Create(context.Background(), sub))

	require.NoError(t, fx.lc.Expire(context.Background(), sub, "admin"))
	require.NoError(t, fx.lc.Expire(context.Background(), sub, "admin"))

	assert.Equal(t, 1, fx.audit.count(entity.ActionSubscriptionExpired), "una sola entrada de bitácora")
	assert.Len(t, fx.syncer.deprovisioned, 1, "un solo desaprovisionamiento")

	got, _ := fx.subs.GetByID(context.Background(), "s1")
	assert.False(t, got.IsActive)
}

func TestExpire_FallaDeDesaprovisionamientoNoBloquea(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.syncer.deprovErr = errors.New("timeout")
	sub := &entity.Subscription{
		ID: "s1", CustomerID: "c1", PackageID: "p1", RouterID: "r1",
		Username: "u1", IsActive: true, EndTime: time.Now().Add(-time.Hour),
	}
	require.NoError(t, fx.subs.Create(context.Background(), sub))

	require.NoError(t, fx.lc.Expire(context.Background(), sub, ""))

	got, _ := fx.subs.GetByID(context.Background(), "s1")
	assert.False(t, got.IsActive, "la expiración procede aunque el equipo no responda")
	assert.Equal(t, 1, fx.audit.count(entity.ActionDeprovisionFailed))
	assert.Equal(t, 1, fx.audit.count(entity.ActionSubscriptionExpired))
}

func TestApplyCompensation_ExtiendeVigencia(t *testing.T) {
	fx := newLifecycleFixture(t)
	end := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	sub := &entity.Subscription{
		ID: "s1", CustomerID: "c1", PackageID: "p1", RouterID: "r1",
		Username: "u1", IsActive: true, EndTime: end,
	}
	require.NoError(t, fx.subs.Create(context.Background(), sub))

	got, err := fx.lc.ApplyCompensation(context.Background(), "s1", 90*time.Minute, "admin")
	require.NoError(t, err)
	assert.Equal(t, end.Add(90*time.Minute), got.EndTime)
	assert.Equal(t, 1, fx.audit.count(entity.ActionSubscriptionCompensated))
	assert.Len(t, fx.syncer.provisioned, 1, "la compensación re-sincroniza")
}

func TestApplyCompensation_Rechazos(t *testing.T) {
	fx := newLifecycleFixture(t)
	sub := &entity.Subscription{
		ID: "s1", CustomerID: "c1", PackageID: "p1", RouterID: "r1",
		Username: "u1", IsActive: false, EndTime: time.Now(),
	}
	require.NoError(t, fx.subs.Create(context.Background(), sub))

	_, err := fx.lc.ApplyCompensation(context.Background(), "s1", time.Hour, "admin")
	assert.ErrorIs(t, err, domain.ErrSubscriptionInactive)

	_, err = fx.lc.ApplyCompensation(context.Background(), "s1", 0, "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = fx.lc.ApplyCompensation(context.Background(), "no-existe", time.Hour, "admin")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
