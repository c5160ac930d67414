package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de conexión soportados. Cada uno implica un mecanismo de
// aprovisionamiento distinto en el equipo de acceso.
const (
	ConnectionHotspot = "HOTSPOT"
	ConnectionPPPoE   = "PPPOE"
	ConnectionStatic  = "STATIC"
	ConnectionVPN     = "VPN"
)

// ValidConnectionType indica si el tipo de conexión es uno de los soportados.
func ValidConnectionType(ct string) bool {
	switch ct {
	case ConnectionHotspot, ConnectionPPPoE, ConnectionStatic, ConnectionVPN:
		return true
	}
	return false
}

// Package plan comercial: tipo de conexión, velocidades, precio y duración.
// Una vez referenciado por una suscripción viva se trata como inmutable:
// los cambios solo afectan suscripciones futuras (la suscripción copia
// connection_type al crearse).
type Package struct {
	ID             string
	Name           string
	ConnectionType string
	DownloadKbps   int
	UploadKbps     int
	Price          decimal.Decimal
	// Duración: se espera exactamente una unidad poblada, pero si hay varias
	// se suman todas (la compensación administrativa agrega unidades sueltas).
	DurationMinutes int
	DurationHours   int
	DurationDays    int
	DataCapMB       int64  // 0 = sin tope de datos
	StaticIP        string // vacío salvo en planes STATIC con IP fija
	RouterID        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
