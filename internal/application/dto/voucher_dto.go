package dto

import "time"

// GenerateVouchersRequest generación de un lote de códigos.
type GenerateVouchersRequest struct {
	PackageID string `json:"package_id"`
	Count     int    `json:"count"`
	Length    int    `json:"length"`
	Charset   string `json:"charset"` // uppercase | lowercase | digits | mixed
	Prefix    string `json:"prefix"`
}

// GenerateVouchersResponse lote generado.
type GenerateVouchersResponse struct {
	BatchID string   `json:"batch_id"`
	Codes   []string `json:"codes"`
}

// RedeemVoucherRequest canje de un código por una suscripción.
type RedeemVoucherRequest struct {
	Code       string `json:"code"`
	CustomerID string `json:"customer_id"`
	// PackageID opcional: si viene, el voucher debe pertenecer a ese paquete.
	PackageID string `json:"package_id"`
}

// RedeemVoucherResponse credenciales resultantes del canje.
type RedeemVoucherResponse struct {
	SubscriptionID string    `json:"subscription_id"`
	Username       string    `json:"username"`
	Password       string    `json:"password"`
	EndTime        time.Time `json:"end_time"`
}
