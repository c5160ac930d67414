package entity

import "time"

// Acciones registradas en la bitácora. Las variantes *_failed marcan fallas
// de integración que el reconciliador debe sanar.
const (
	ActionSubscriptionCreated     = "subscription_created"
	ActionSubscriptionSynced      = "subscription_synced"
	ActionSubscriptionExpired     = "subscription_expired"
	ActionSubscriptionCompensated = "subscription_compensated"
	ActionProvisionFailed         = "provision_failed"
	ActionDeprovisionFailed       = "deprovision_failed"
	ActionVoucherRedeemed         = "voucher_redeemed"
	ActionVoucherBatchGenerated   = "voucher_batch_generated"
	ActionRadiusResync            = "radius_resync"
	ActionRadiusResyncFailed      = "radius_resync_failed"
	ActionPaymentApplied          = "payment_applied"
)

// AuditLog entrada inmutable de bitácora (append-only). Permite reconstruir
// el historial de aprovisionamiento y diagnosticar fallas de sincronización.
type AuditLog struct {
	ID         string
	Action     string
	EntityType string // subscription | voucher | payment | router
	EntityID   string
	Actor      string // user id, o vacío para procesos de fondo
	Detail     string
	CreatedAt  time.Time
}
