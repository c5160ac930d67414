package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

// LifecycleDeps dependencias del gestor de ciclo de vida.
type LifecycleDeps struct {
	Subscriptions repository.SubscriptionRepository
	Packages      repository.PackageRepository
	Routers       repository.RouterRepository
	Payments      repository.PaymentRepository
	Invoices      repository.InvoiceRepository
	Customers     repository.CustomerRepository
	Audit         repository.AuditLogRepository
	Syncers       *SyncerSet
	Resolver      *Resolver
	Minter        VoucherMinter
	Messenger     Messenger
	Log           *logger.Logger
	Now           func() time.Time
}

// Lifecycle orquesta la máquina de estados de una suscripción:
// CREATED -> SYNCED -> EXPIRED -> DEPROVISIONED, con los desvíos SYNC_FAILED
// que no bloquean la progresión. La corrección de facturación (el cliente
// pagó, se le debe acceso) tiene prioridad sobre la corrección de red: una
// falla de sincronización nunca revierte la suscripción ya comprometida; el
// reconciliador cierra la brecha después.
type Lifecycle struct {
	subs      repository.SubscriptionRepository
	pkgs      repository.PackageRepository
	routers   repository.RouterRepository
	payments  repository.PaymentRepository
	invoices  repository.InvoiceRepository
	customers repository.CustomerRepository
	audit     repository.AuditLogRepository
	syncers   *SyncerSet
	resolver  *Resolver
	minter    VoucherMinter
	messenger Messenger
	log       *logger.Logger
	now       func() time.Time
}

// NewLifecycle construye el gestor.
func NewLifecycle(d LifecycleDeps) *Lifecycle {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Lifecycle{
		subs:      d.Subscriptions,
		pkgs:      d.Packages,
		routers:   d.Routers,
		payments:  d.Payments,
		invoices:  d.Invoices,
		customers: d.Customers,
		audit:     d.Audit,
		syncers:   d.Syncers,
		resolver:  d.Resolver,
		minter:    d.Minter,
		messenger: d.Messenger,
		log:       d.Log,
		now:       d.Now,
	}
}

// HandlePaymentEvent procesa el evento de resultado de pago de la pasarela.
// Solo SUCCESS convierte; FAILED marca pago y factura; PENDING no hace nada.
// Es idempotente: un evento SUCCESS repetido devuelve la suscripción ya
// creada sin duplicarla.
func (l *Lifecycle) HandlePaymentEvent(ctx context.Context, in dto.PaymentCallbackRequest) (*entity.Subscription, error) {
	payment, err := l.payments.GetByTransactionID(ctx, in.TransactionID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}

	switch in.Status {
	case entity.PaymentSuccess:
		return l.CreateFromPayment(ctx, payment)
	case entity.PaymentFailed:
		payment.Status = entity.PaymentFailed
		payment.UpdatedAt = l.now()
		if err := l.payments.Update(ctx, payment); err != nil {
			return nil, err
		}
		invoice, err := l.invoices.GetByID(ctx, payment.InvoiceID)
		if err != nil || invoice == nil {
			return nil, err
		}
		invoice.Status = entity.InvoiceFailed
		invoice.UpdatedAt = l.now()
		return nil, l.invoices.Update(ctx, invoice)
	default:
		return nil, nil
	}
}

// CreateFromPayment convierte un pago exitoso en suscripción. Idempotente por
// pago: si la factura ya tiene suscripción asociada se devuelve esa.
func (l *Lifecycle) CreateFromPayment(ctx context.Context, payment *entity.Payment) (*entity.Subscription, error) {
	invoice, err := l.invoices.GetByID(ctx, payment.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	if invoice.SubscriptionID != "" {
		return l.subs.GetByID(ctx, invoice.SubscriptionID)
	}

	customer, pkg, router, err := l.loadParties(ctx, payment.CustomerID, invoice.PackageID)
	if err != nil {
		return nil, err
	}

	// Hotspot con login por voucher: el pago emite un voucher nuevo y su
	// código pasa a ser el username.
	voucherCode := ""
	if pkg.ConnectionType == entity.ConnectionHotspot && router.HotspotLoginMethod == entity.LoginVoucher && l.minter != nil {
		v, err := l.minter.Mint(ctx, pkg.ID)
		if err != nil {
			return nil, fmt.Errorf("emitir voucher para pago %s: %w", payment.ID, err)
		}
		voucherCode = v.Code
	}

	ent, err := l.resolver.Resolve(ResolveInput{
		Package:       pkg,
		Router:        router,
		Customer:      customer,
		TransactionID: payment.TransactionID,
		VoucherCode:   voucherCode,
	})
	if err != nil {
		return nil, err
	}

	sub, err := l.createSubscription(ctx, customer, pkg, router, ent)
	if err != nil {
		return nil, err
	}

	now := l.now()
	payment.Status = entity.PaymentSuccess
	payment.UpdatedAt = now
	if err := l.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	invoice.Status = entity.InvoicePaid
	invoice.PaidAt = &now
	invoice.SubscriptionID = sub.ID
	invoice.UpdatedAt = now
	if err := l.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	l.appendAudit(ctx, entity.ActionPaymentApplied, "payment", payment.ID, "", "invoice="+invoice.ID)

	l.syncTarget(ctx, Target{Subscription: sub, Package: pkg, Router: router})
	l.notify(ctx, customer.Phone, fmt.Sprintf("Pago recibido. Usuario: %s, Clave: %s", sub.Username, sub.Password))
	return sub, nil
}

// CreateFromVoucher crea la suscripción de un voucher ya consumido. El canje
// no se revierte si algo de lo que sigue falla: el voucher quedó reclamado y
// la recuperación de la sincronización es asíncrona.
func (l *Lifecycle) CreateFromVoucher(ctx context.Context, v *entity.Voucher, customerID string) (*entity.Subscription, error) {
	customer, pkg, router, err := l.loadParties(ctx, customerID, v.PackageID)
	if err != nil {
		return nil, err
	}

	ent, err := l.resolver.Resolve(ResolveInput{
		Package:     pkg,
		Router:      router,
		Customer:    customer,
		VoucherCode: v.Code,
	})
	if err != nil {
		return nil, err
	}

	sub, err := l.createSubscription(ctx, customer, pkg, router, ent)
	if err != nil {
		return nil, err
	}

	l.syncTarget(ctx, Target{Subscription: sub, Package: pkg, Router: router})
	l.notify(ctx, customer.Phone, fmt.Sprintf("Voucher canjeado. Usuario: %s, Clave: %s", sub.Username, sub.Password))
	return sub, nil
}

// ApplyCompensation extiende la vigencia de una suscripción activa y vuelve a
// sincronizar para propagar los nuevos límites.
func (l *Lifecycle) ApplyCompensation(ctx context.Context, subscriptionID string, extra time.Duration, actor string) (*entity.Subscription, error) {
	if extra <= 0 {
		return nil, domain.ErrInvalidInput
	}
	sub, err := l.subs.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.ErrNotFound
	}
	if !sub.IsActive {
		return nil, domain.ErrSubscriptionInactive
	}

	sub.EndTime = sub.EndTime.Add(extra)
	sub.UpdatedAt = l.now()
	if err := l.subs.Update(ctx, sub); err != nil {
		return nil, err
	}
	l.appendAudit(ctx, entity.ActionSubscriptionCompensated, "subscription", sub.ID, actor,
		fmt.Sprintf("extra=%s end_time=%s", extra, sub.EndTime.Format(time.RFC3339)))

	if t, err := l.LoadTarget(ctx, sub); err == nil {
		l.syncTarget(ctx, t)
	}
	return sub, nil
}

// Expire desactiva la suscripción y la desaprovisiona del equipo de acceso.
// Idempotente: sobre una suscripción ya inactiva es un no-op silencioso (cero
// entradas nuevas de bitácora).
func (l *Lifecycle) Expire(ctx context.Context, sub *entity.Subscription, actor string) error {
	changed, err := l.subs.MarkInactive(ctx, sub.ID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	sub.IsActive = false

	if t, err := l.LoadTarget(ctx, sub); err == nil {
		if syncer, err := l.syncers.ForRouter(t.Router); err == nil {
			if err := syncer.Deprovision(ctx, t); err != nil {
				// No bloquea la expiración: el resync total limpia después.
				l.log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("desaprovisionamiento falló")
				l.appendAudit(ctx, entity.ActionDeprovisionFailed, "subscription", sub.ID, actor, err.Error())
			}
		}
	}

	l.appendAudit(ctx, entity.ActionSubscriptionExpired, "subscription", sub.ID, actor, "")
	return nil
}

// LoadTarget arma el Target de una suscripción cargando paquete y router.
func (l *Lifecycle) LoadTarget(ctx context.Context, sub *entity.Subscription) (Target, error) {
	pkg, err := l.pkgs.GetByID(ctx, sub.PackageID)
	if err != nil {
		return Target{}, err
	}
	if pkg == nil {
		return Target{}, domain.ErrNotFound
	}
	router, err := l.routers.GetByID(ctx, sub.RouterID)
	if err != nil {
		return Target{}, err
	}
	if router == nil {
		return Target{}, domain.ErrNotFound
	}
	return Target{Subscription: sub, Package: pkg, Router: router}, nil
}

// SyncTarget empuja el estado de la suscripción al equipo de acceso. La falla
// se registra (bitácora *_failed + warn) y no se propaga como error fatal.
func (l *Lifecycle) SyncTarget(ctx context.Context, t Target) {
	l.syncTarget(ctx, t)
}

func (l *Lifecycle) loadParties(ctx context.Context, customerID, packageID string) (*entity.Customer, *entity.Package, *entity.Router, error) {
	customer, err := l.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, nil, nil, err
	}
	if customer == nil {
		return nil, nil, nil, domain.ErrNotFound
	}
	pkg, err := l.pkgs.GetByID(ctx, packageID)
	if err != nil {
		return nil, nil, nil, err
	}
	if pkg == nil {
		return nil, nil, nil, domain.ErrNotFound
	}
	router, err := l.routers.GetByID(ctx, pkg.RouterID)
	if err != nil {
		return nil, nil, nil, err
	}
	if router == nil {
		return nil, nil, nil, domain.ErrNotFound
	}
	return customer, pkg, router, nil
}

func (l *Lifecycle) createSubscription(ctx context.Context, customer *entity.Customer, pkg *entity.Package, router *entity.Router, ent Entitlement) (*entity.Subscription, error) {
	now := l.now()
	sub := &entity.Subscription{
		ID:             uuid.New().String(),
		CustomerID:     customer.ID,
		PackageID:      pkg.ID,
		ConnectionType: pkg.ConnectionType,
		Username:       ent.Username,
		Password:       ent.Secret,
		StartTime:      ent.Start,
		EndTime:        ent.End,
		IsActive:       true,
		RouterID:       router.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := l.subs.Create(ctx, sub); err != nil {
		return nil, err
	}
	l.appendAudit(ctx, entity.ActionSubscriptionCreated, "subscription", sub.ID, "",
		fmt.Sprintf("username=%s package=%s", sub.Username, pkg.ID))
	return sub, nil
}

func (l *Lifecycle) syncTarget(ctx context.Context, t Target) {
	syncer, err := l.syncers.ForRouter(t.Router)
	if err != nil {
		l.log.Warn().Err(err).Str("router_id", t.Router.ID).Msg("router sin sincronizador")
		return
	}
	if err := syncer.Provision(ctx, t); err != nil {
		l.log.Warn().Err(err).
			Str("subscription_id", t.Subscription.ID).
			Str("router_id", t.Router.ID).
			Msg("sincronización de credenciales falló")
		l.appendAudit(ctx, entity.ActionProvisionFailed, "subscription", t.Subscription.ID, "", err.Error())
		return
	}
	l.appendAudit(ctx, entity.ActionSubscriptionSynced, "subscription", t.Subscription.ID, "", "")
}

func (l *Lifecycle) notify(ctx context.Context, to, message string) {
	if l.messenger == nil || to == "" {
		return
	}
	if err := l.messenger.Send(ctx, to, message); err != nil {
		l.log.Warn().Err(err).Str("to", to).Msg("notificación falló")
	}
}

// appendAudit nunca falla hacia el llamador: la bitácora es diagnóstico, no
// parte de la transacción de negocio.
func (l *Lifecycle) appendAudit(ctx context.Context, action, entityType, entityID, actor, detail string) {
	entry := &entity.AuditLog{
		ID:         uuid.New().String(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Detail:     detail,
		CreatedAt:  l.now(),
	}
	if err := l.audit.Append(ctx, entry); err != nil {
		l.log.Error().Err(err).Str("action", action).Msg("no se pudo escribir la bitácora")
	}
}
