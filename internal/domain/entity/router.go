package entity

import "time"

// Modos de sincronización del equipo de acceso.
const (
	RouterModeAPI    = "API"    // API del router accesible directo
	RouterModeVPN    = "VPN"    // API del router detrás de un túnel cifrado
	RouterModeRadius = "RADIUS" // credenciales en tablas SQL de FreeRADIUS
)

// Protocolos de túnel para RouterModeVPN.
const (
	VPNProtoIPsecL2TP = "IPSEC_L2TP"
	VPNProtoOpenVPN   = "OPENVPN"
	VPNProtoWireGuard = "WIREGUARD"
	VPNProtoPPTP      = "PPTP"
)

// Métodos de login hotspot: definen cómo se construye el username de
// autoservicio (ver provisioning.Resolver).
const (
	LoginTransaction = "TRANSACTION" // código de transacción del pago móvil
	LoginPhone       = "PHONE"       // número de teléfono + timestamp
	LoginVoucher     = "VOUCHER"     // el código del voucher es el username
)

// Router equipo de control de acceso (MikroTik o servidor RADIUS).
// Posee paquetes y, a través de ellos, suscripciones.
type Router struct {
	ID          string
	Name        string
	Host        string
	APIPort     int
	Username    string
	Password    string
	Mode        string // API | VPN | RADIUS
	VPNProtocol string // solo con Mode=VPN
	// RADIUS: datos informativos del servidor que lee las tablas.
	RadiusServer string
	RadiusSecret string
	// Política de username para hotspot de este equipo.
	HotspotLoginMethod string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
