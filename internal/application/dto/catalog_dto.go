package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePackageRequest alta de un paquete comercial.
type CreatePackageRequest struct {
	Name            string          `json:"name"`
	ConnectionType  string          `json:"connection_type"`
	DownloadKbps    int             `json:"download_kbps"`
	UploadKbps      int             `json:"upload_kbps"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	DurationHours   int             `json:"duration_hours"`
	DurationDays    int             `json:"duration_days"`
	DataCapMB       int64           `json:"data_cap_mb"`
	StaticIP        string          `json:"static_ip"`
	RouterID        string          `json:"router_id"`
}

// PackageResponse representación pública de un paquete.
type PackageResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	ConnectionType  string          `json:"connection_type"`
	DownloadKbps    int             `json:"download_kbps"`
	UploadKbps      int             `json:"upload_kbps"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	DurationHours   int             `json:"duration_hours"`
	DurationDays    int             `json:"duration_days"`
	DataCapMB       int64           `json:"data_cap_mb,omitempty"`
	StaticIP        string          `json:"static_ip,omitempty"`
	RouterID        string          `json:"router_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CreateRouterRequest alta de un equipo de acceso.
type CreateRouterRequest struct {
	Name               string `json:"name"`
	Host               string `json:"host"`
	APIPort            int    `json:"api_port"`
	Username           string `json:"username"`
	Password           string `json:"password"`
	Mode               string `json:"mode"`
	VPNProtocol        string `json:"vpn_protocol"`
	RadiusServer       string `json:"radius_server"`
	RadiusSecret       string `json:"radius_secret"`
	HotspotLoginMethod string `json:"hotspot_login_method"`
}

// RouterResponse representación pública de un router (sin credenciales).
type RouterResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Host               string    `json:"host"`
	APIPort            int       `json:"api_port"`
	Mode               string    `json:"mode"`
	VPNProtocol        string    `json:"vpn_protocol,omitempty"`
	RadiusServer       string    `json:"radius_server,omitempty"`
	HotspotLoginMethod string    `json:"hotspot_login_method"`
	CreatedAt          time.Time `json:"created_at"`
}
