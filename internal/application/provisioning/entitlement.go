package provisioning

import (
	"fmt"
	"strings"
	"time"

	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/billing"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

// Entitlement parámetros de la suscripción derivados de un derecho adquirido
// (pago exitoso o canje de voucher).
type Entitlement struct {
	Username string
	Secret   string
	Start    time.Time
	End      time.Time
}

// ResolveInput contexto del derecho adquirido.
type ResolveInput struct {
	Package  *entity.Package
	Router   *entity.Router
	Customer *entity.Customer
	// VoucherCode código ya consumido, cuando el derecho viene de un canje.
	VoucherCode string
	// TransactionID de la pasarela, cuando el derecho viene de un pago.
	TransactionID string
	// Password opcional del llamador; si está vacío se usa el default.
	Password string
}

// Resolver calcula username, secreto y vigencia de la suscripción.
//
// Política de username:
//   - Hotspot con login VOUCHER: el código del voucher es el username.
//   - Hotspot con login TRANSACTION y pago de por medio: el transaction id.
//   - Resto: {tipo}_{teléfono}_{timestamp} con granularidad de segundos.
//     Bajo resoluciones concurrentes del mismo teléfono en el mismo segundo el
//     username puede colisionar; se conserva el riesgo del comportamiento de
//     referencia en lugar de agregar sufijos.
type Resolver struct {
	defaultSecret string
	now           func() time.Time
}

// NewResolver construye el resolver. now permite inyectar reloj en tests.
func NewResolver(defaultSecret string, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{defaultSecret: defaultSecret, now: now}
}

// Resolve deriva el entitlement. El fin de vigencia es exactamente
// inicio + duración del paquete.
func (r *Resolver) Resolve(in ResolveInput) (Entitlement, error) {
	if in.Package == nil || in.Router == nil || in.Customer == nil {
		return Entitlement{}, domain.ErrInvalidInput
	}
	start := r.now()
	end, err := billing.ResolveExpiry(in.Package, start)
	if err != nil {
		return Entitlement{}, err
	}

	username := r.username(in, start)
	secret := in.Password
	if secret == "" {
		// Default heredado de los flujos de autoservicio. Candidato a
		// reemplazarse por secretos aleatorios por suscripción.
		secret = r.defaultSecret
	}
	return Entitlement{Username: username, Secret: secret, Start: start, End: end}, nil
}

func (r *Resolver) username(in ResolveInput, now time.Time) string {
	if in.Package.ConnectionType == entity.ConnectionHotspot {
		switch in.Router.HotspotLoginMethod {
		case entity.LoginVoucher:
			if in.VoucherCode != "" {
				return in.VoucherCode
			}
		case entity.LoginTransaction:
			if in.TransactionID != "" {
				return in.TransactionID
			}
		}
	}
	return fmt.Sprintf("%s_%s_%s",
		strings.ToLower(in.Package.ConnectionType),
		in.Customer.Phone,
		now.Format("20060102150405"),
	)
}
