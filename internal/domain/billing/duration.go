// Package billing contiene servicios de dominio puros de facturación de
// tiempo de servicio: conversión de la duración de un paquete en una fecha
// absoluta de expiración.
package billing

import (
	"time"

	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

// PackageDuration suma todas las unidades pobladas del paquete.
// Se espera exactamente una unidad, pero si hay varias se suman en vez de
// rechazarse: la compensación administrativa agrega minutos u horas sueltas
// sobre paquetes ya configurados.
func PackageDuration(pkg *entity.Package) time.Duration {
	return Duration(pkg.DurationMinutes, pkg.DurationHours, pkg.DurationDays)
}

// Duration construye una duración a partir de unidades sueltas.
func Duration(minutes, hours, days int) time.Duration {
	return time.Duration(minutes)*time.Minute +
		time.Duration(hours)*time.Hour +
		time.Duration(days)*24*time.Hour
}

// ResolveExpiry calcula el fin de vigencia: from + duración del paquete,
// exacto y sin deriva entre unidades. Un paquete sin duración retorna
// domain.ErrZeroDuration; la validación en la creación del paquete debería
// impedir que llegue hasta aquí.
func ResolveExpiry(pkg *entity.Package, from time.Time) (time.Time, error) {
	d := PackageDuration(pkg)
	if d <= 0 {
		return time.Time{}, domain.ErrZeroDuration
	}
	return from.Add(d), nil
}

// ValidateDuration rechaza explícitamente el centinela de duración cero al
// crear o editar un paquete. Nunca se corrige en silencio.
func ValidateDuration(pkg *entity.Package) error {
	if pkg.DurationMinutes < 0 || pkg.DurationHours < 0 || pkg.DurationDays < 0 {
		return domain.ErrInvalidInput
	}
	if PackageDuration(pkg) <= 0 {
		return domain.ErrZeroDuration
	}
	return nil
}
