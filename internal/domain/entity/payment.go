package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pago reportados por la pasarela.
const (
	PaymentPending              = "PENDING"
	PaymentSuccess              = "SUCCESS"
	PaymentFailed               = "FAILED"
	PaymentAwaitingVerification = "AWAITING_VERIFICATION" // transferencia/efectivo por verificar
)

// Métodos de pago.
const (
	MethodMobileMoney  = "MOBILE_MONEY"
	MethodBankTransfer = "BANK_TRANSFER"
	MethodCash         = "CASH"
)

// Estados de factura.
const (
	InvoicePending = "PENDING"
	InvoicePaid    = "PAID"
	InvoiceFailed  = "FAILED"
)

// Payment intento de pago contra una factura. TransactionID es único y es la
// clave de correlación con el callback de la pasarela.
type Payment struct {
	ID            string
	CustomerID    string
	InvoiceID     string
	Amount        decimal.Decimal
	TransactionID string
	Method        string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Invoice cobro pendiente o pagado por un paquete. SubscriptionID se llena
// cuando el pago exitoso generó la suscripción: es la marca de idempotencia
// del punto de entrada de conversión de pagos.
type Invoice struct {
	ID             string
	CustomerID     string
	PackageID      string
	SubscriptionID string // vacío hasta que el pago se convierte
	Amount         decimal.Decimal
	Status         string
	PaidAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
