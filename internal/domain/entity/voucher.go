package entity

import "time"

// Voucher código prepago de un solo uso, canjeable por una suscripción del
// paquete al que pertenece.
//
// Invariante: es canjeable si y solo si IsActive && RedeemedAt == nil. El
// canje es una transición de una sola vía garantizada por un UPDATE
// condicional en la capa de persistencia (dos canjes concurrentes del mismo
// código no pueden tener éxito ambos).
type Voucher struct {
	ID         string
	Code       string // único global, lookup case-insensitive
	PackageID  string
	BatchID    string // lote de generación, para impresión y auditoría
	IsActive   bool
	RedeemedAt *time.Time
	CreatedAt  time.Time
}

// Redeemable indica si el voucher todavía puede canjearse.
func (v *Voucher) Redeemable() bool {
	return v.IsActive && v.RedeemedAt == nil
}
