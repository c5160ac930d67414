package entity

import "time"

// Subscription derecho de acceso vigente de un cliente sobre un paquete.
//
// Invariantes: EndTime > StartTime. IsActive implica "ahora < EndTime" como
// estado esperado, pero puede ser transitoriamente falso hasta que el
// reconciliador procese la expiración. ConnectionType se copia del paquete al
// crear y no se muta después; la única mutación administrativa permitida es
// la compensación (extender EndTime).
type Subscription struct {
	ID             string
	CustomerID     string
	PackageID      string
	ConnectionType string
	Username       string
	Password       string
	StartTime      time.Time
	EndTime        time.Time
	IsActive       bool
	RouterID       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Expired indica si la suscripción ya pasó su fin de vigencia.
func (s *Subscription) Expired(now time.Time) bool {
	return !now.Before(s.EndTime)
}
