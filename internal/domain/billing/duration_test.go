package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/billing"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

func pkgWith(minutes, hours, days int) *entity.Package {
	return &entity.Package{
		ID:              "pkg-1",
		Name:            "Hotspot Día",
		ConnectionType:  entity.ConnectionHotspot,
		DurationMinutes: minutes,
		DurationHours:   hours,
		DurationDays:    days,
	}
}

func TestResolveExpiry_UnidadesExactas(t *testing.T) {
	from := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

	cases := []struct {
		name    string
		pkg     *entity.Package
		expects time.Time
	}{
		{"solo minutos", pkgWith(45, 0, 0), from.Add(45 * time.Minute)},
		{"solo horas", pkgWith(0, 6, 0), from.Add(6 * time.Hour)},
		{"solo días", pkgWith(0, 0, 7), from.Add(7 * 24 * time.Hour)},
		// Varias unidades pobladas: se suman, no se rechaza (defensivo).
		{"mezcla de unidades", pkgWith(30, 2, 1), from.Add(30*time.Minute + 2*time.Hour + 24*time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end, err := billing.ResolveExpiry(tc.pkg, from)
			require.NoError(t, err)
			assert.True(t, end.Equal(tc.expects), "esperado %s, obtenido %s", tc.expects, end)
		})
	}
}

func TestResolveExpiry_SinDeriva(t *testing.T) {
	// T + D debe ser exacto: 7 días no son "una semana aproximada".
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end, err := billing.ResolveExpiry(pkgWith(0, 0, 7), from)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, end.Sub(from))
}

func TestResolveExpiry_DuracionCero(t *testing.T) {
	_, err := billing.ResolveExpiry(pkgWith(0, 0, 0), time.Now())
	assert.ErrorIs(t, err, domain.ErrZeroDuration)
}

func TestValidateDuration(t *testing.T) {
	assert.NoError(t, billing.ValidateDuration(pkgWith(0, 0, 30)))
	assert.ErrorIs(t, billing.ValidateDuration(pkgWith(0, 0, 0)), domain.ErrZeroDuration)
	assert.ErrorIs(t, billing.ValidateDuration(pkgWith(-5, 0, 1)), domain.ErrInvalidInput)
}

func TestDuration_Compensacion(t *testing.T) {
	// La duración de compensación se arma con unidades sueltas.
	assert.Equal(t, 90*time.Minute, billing.Duration(30, 1, 0))
}
