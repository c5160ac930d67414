package provisioning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResolve_UsernameVoucherEnHotspot(t *testing.T) {
	r := NewResolver("user123", fixedClock(time.Date(2026, 3, 15, 10, 30, 45, 0, time.UTC)))

	ent, err := r.Resolve(ResolveInput{
		Package:     &entity.Package{ConnectionType: entity.ConnectionHotspot, DurationHours: 3},
		Router:      &entity.Router{HotspotLoginMethod: entity.LoginVoucher},
		Customer:    &entity.Customer{Phone: "3120000000"},
		VoucherCode: "WIFI-ABC123",
	})
	require.NoError(t, err)
	assert.Equal(t, "WIFI-ABC123", ent.Username)
	assert.Equal(t, "user123", ent.Secret)
}

func TestResolve_UsernameTransaccionEnHotspot(t *testing.T) {
	r := NewResolver("user123", fixedClock(time.Date(2026, 3, 15, 10, 30, 45, 0, time.UTC)))

	ent, err := r.Resolve(ResolveInput{
		Package:       &entity.Package{ConnectionType: entity.ConnectionHotspot, DurationHours: 3},
		Router:        &entity.Router{HotspotLoginMethod: entity.LoginTransaction},
		Customer:      &entity.Customer{Phone: "3120000000"},
		TransactionID: "TX-998877",
	})
	require.NoError(t, err)
	assert.Equal(t, "TX-998877", ent.Username)
}

func TestResolve_UsernameCompuestoConTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 45, 0, time.UTC)
	r := NewResolver("user123", fixedClock(now))

	cases := []struct {
		name string
		pkg  *entity.Package
		rout *entity.Router
		want string
	}{
		{
			name: "pppoe ignora el método de login hotspot",
			pkg:  &entity.Package{ConnectionType: entity.ConnectionPPPoE, DurationDays: 30},
			rout: &entity.Router{HotspotLoginMethod: entity.LoginVoucher},
			want: "pppoe_3120000000_20260315103045",
		},
		{
			name: "hotspot con login por teléfono",
			pkg:  &entity.Package{ConnectionType: entity.ConnectionHotspot, DurationHours: 3},
			rout: &entity.Router{HotspotLoginMethod: entity.LoginPhone},
			want: "hotspot_3120000000_20260315103045",
		},
		{
			name: "hotspot voucher sin código cae al compuesto",
			pkg:  &entity.Package{ConnectionType: entity.ConnectionHotspot, DurationHours: 3},
			rout: &entity.Router{HotspotLoginMethod: entity.LoginVoucher},
			want: "hotspot_3120000000_20260315103045",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ent, err := r.Resolve(ResolveInput{
				Package:  tc.pkg,
				Router:   tc.rout,
				Customer: &entity.Customer{Phone: "3120000000"},
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, ent.Username)
		})
	}
}

func TestResolve_MismoSegundoMismoUsername(t *testing.T) {
	// La granularidad de segundos del timestamp hace que dos resoluciones del
	// mismo teléfono en el mismo segundo produzcan el mismo username.
	now := time.Date(2026, 3, 15, 10, 30, 45, 0, time.UTC)
	r := NewResolver("user123", fixedClock(now))
	in := ResolveInput{
		Package:  &entity.Package{ConnectionType: entity.ConnectionPPPoE, DurationDays: 30},
		Router:   &entity.Router{},
		Customer: &entity.Customer{Phone: "3120000000"},
	}

	a, err := r.Resolve(in)
	require.NoError(t, err)
	b, err := r.Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, a.Username, b.Username)
}

func TestResolve_VigenciaExacta(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 45, 0, time.UTC)
	r := NewResolver("user123", fixedClock(now))

	ent, err := r.Resolve(ResolveInput{
		Package:  &entity.Package{ConnectionType: entity.ConnectionPPPoE, DurationDays: 7},
		Router:   &entity.Router{},
		Customer: &entity.Customer{Phone: "3120000000"},
	})
	require.NoError(t, err)
	assert.Equal(t, now, ent.Start)
	assert.Equal(t, now.Add(7*24*time.Hour), ent.End)
}

func TestResolve_PasswordExplicitaPrevalece(t *testing.T) {
	r := NewResolver("user123", nil)

	ent, err := r.Resolve(ResolveInput{
		Package:  &entity.Package{ConnectionType: entity.ConnectionPPPoE, DurationDays: 30},
		Router:   &entity.Router{},
		Customer: &entity.Customer{Phone: "3120000000"},
		Password: "clave-propia",
	})
	require.NoError(t, err)
	assert.Equal(t, "clave-propia", ent.Secret)
}

func TestResolve_DuracionCeroFalla(t *testing.T) {
	r := NewResolver("user123", nil)

	_, err := r.Resolve(ResolveInput{
		Package:  &entity.Package{ConnectionType: entity.ConnectionPPPoE},
		Router:   &entity.Router{},
		Customer: &entity.Customer{Phone: "3120000000"},
	})
	assert.ErrorIs(t, err, domain.ErrZeroDuration)
}
