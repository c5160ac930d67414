// Package provisioning contiene el motor de aprovisionamiento y ciclo de
// vida de suscripciones: resolución del derecho adquirido (pago o voucher),
// creación y expiración de suscripciones, y reconciliación periódica contra
// los equipos de control de acceso.
package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

// Target agrupa una suscripción con el paquete y el router que la sirven.
// Es la unidad de trabajo de los sincronizadores.
type Target struct {
	Subscription *entity.Subscription
	Package      *entity.Package
	Router       *entity.Router
}

// NetworkSyncer puerto uniforme sobre los backends de control de acceso.
// Provision y Deprovision deben ser idempotentes: re-aplicar el estado de una
// suscripción ya aprovisionada no es un error (el resync total depende de eso).
type NetworkSyncer interface {
	Provision(ctx context.Context, t Target) error
	Deprovision(ctx context.Context, t Target) error
}

// RadiusResyncer replanteo total de las tablas RADIUS: truncar y repoblar
// con el conjunto vigente de suscripciones activas. Estrategia destructiva y
// no incremental a propósito, para no acumular filas huérfanas; debe correr
// serializada (un solo escritor a la vez).
type RadiusResyncer interface {
	Resync(ctx context.Context, targets []Target) error
}

// SyncerSet resuelve la variante de sincronizador según el modo del router.
type SyncerSet struct {
	byMode map[string]NetworkSyncer
}

// NewSyncerSet construye el set vacío.
func NewSyncerSet() *SyncerSet {
	return &SyncerSet{byMode: make(map[string]NetworkSyncer)}
}

// Register asocia un sincronizador a un modo de router (API, VPN, RADIUS).
func (s *SyncerSet) Register(mode string, syncer NetworkSyncer) {
	s.byMode[mode] = syncer
}

// ForRouter devuelve el sincronizador del modo del router.
func (s *SyncerSet) ForRouter(r *entity.Router) (NetworkSyncer, error) {
	syncer, ok := s.byMode[r.Mode]
	if !ok {
		return nil, fmt.Errorf("sin sincronizador para modo %q: %w", r.Mode, domain.ErrInvalidInput)
	}
	return syncer, nil
}

// Messenger capability MESSAGING: envío fire-and-forget. Las fallas se
// registran pero jamás bloquean el aprovisionamiento.
type Messenger interface {
	Send(ctx context.Context, to, message string) error
}

// PaymentInitiator capability PAYMENT: inicia un cobro en la pasarela y
// devuelve el transaction id con el que llegará el callback.
type PaymentInitiator interface {
	InitiatePayment(ctx context.Context, phone string, amount decimal.Decimal, invoiceID, customerID string) (transactionID string, err error)
}

// VoucherMinter emite un voucher nuevo de un paquete (username de hotspot en
// routers con login VOUCHER cuando el derecho viene de un pago).
type VoucherMinter interface {
	Mint(ctx context.Context, packageID string) (*entity.Voucher, error)
}

// Locker serializa secciones críticas entre procesos (p.ej. el resync RADIUS).
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// UsageSource lectura del accounting de un router: MB consumidos por username.
type UsageSource interface {
	CollectUsage(ctx context.Context, router *entity.Router) (map[string]float64, error)
}
