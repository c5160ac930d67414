package dto

import "time"

// SubscriptionResponse representación pública de una suscripción.
type SubscriptionResponse struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	PackageID      string    `json:"package_id"`
	ConnectionType string    `json:"connection_type"`
	Username       string    `json:"username"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	IsActive       bool      `json:"is_active"`
	RouterID       string    `json:"router_id"`
}

// CompensationRequest extensión administrativa de vigencia.
type CompensationRequest struct {
	ExtraMinutes int `json:"extra_minutes"`
	ExtraHours   int `json:"extra_hours"`
	ExtraDays    int `json:"extra_days"`
}

// PaymentCallbackRequest evento de resultado de pago emitido por la pasarela.
type PaymentCallbackRequest struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"` // PENDING | SUCCESS | FAILED
	InvoiceID     string `json:"invoice_id"`
	CustomerID    string `json:"customer_id"`
}

// CreateInvoiceRequest cobro por renovación/compra de un paquete.
type CreateInvoiceRequest struct {
	CustomerID string `json:"customer_id"`
	PackageID  string `json:"package_id"`
	Method     string `json:"method"` // MOBILE_MONEY | BANK_TRANSFER | CASH
}

// InvoiceResponse factura creada, con la transacción iniciada si aplica.
type InvoiceResponse struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customer_id"`
	PackageID     string `json:"package_id"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
}
