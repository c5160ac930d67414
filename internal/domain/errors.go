package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Vouchers
	ErrVoucherNotRedeemable = errors.New("voucher inválido o ya usado")
	ErrPackageMismatch      = errors.New("el voucher pertenece a otro paquete")
	ErrCodeSpaceExhausted   = errors.New("presupuesto de intentos agotado generando códigos únicos")

	// Suscripciones y pagos
	ErrPaymentAlreadyApplied = errors.New("el pago ya generó una suscripción")
	ErrSubscriptionInactive  = errors.New("la suscripción no está activa")
	ErrZeroDuration          = errors.New("el paquete no define duración")

	// Coordinación
	ErrLockHeld = errors.New("otro proceso sostiene el lock")
)
