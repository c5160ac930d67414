package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

type stubPackageRepo struct {
	byID map[string]*entity.Package
}

func (s *stubPackageRepo) Create(_ context.Context, p *entity.Package) error { s.byID[p.ID] = p; return nil }
func (s *stubPackageRepo) GetByID(_ context.Context, id string) (*entity.Package, error) {
	return s.byID[id], nil
}
func (s *stubPackageRepo) ListByConnectionType(context.Context, string, int, int) ([]*entity.Package, error) {
	return nil, nil
}
func (s *stubPackageRepo) ListByRouter(context.Context, string) ([]*entity.Package, error) {
	return nil, nil
}
func (s *stubPackageRepo) Update(_ context.Context, p *entity.Package) error { s.byID[p.ID] = p; return nil }
func (s *stubPackageRepo) Delete(_ context.Context, id string) error         { delete(s.byID, id); return nil }

type stubRouterRepo struct {
	byID map[string]*entity.Router
}

func (s *stubRouterRepo) Create(_ context.Context, r *entity.Router) error { s.byID[r.ID] = r; return nil }
func (s *stubRouterRepo) GetByID(_ context.Context, id string) (*entity.Router, error) {
	return s.byID[id], nil
}
func (s *stubRouterRepo) List(context.Context) ([]*entity.Router, error)   { return nil, nil }
func (s *stubRouterRepo) Update(_ context.Context, r *entity.Router) error { s.byID[r.ID] = r; return nil }
func (s *stubRouterRepo) Delete(_ context.Context, id string) error        { delete(s.byID, id); return nil }

func newPackageUC() (*PackageUseCase, *stubPackageRepo) {
	pkgs := &stubPackageRepo{byID: make(map[string]*entity.Package)}
	routers := &stubRouterRepo{byID: map[string]*entity.Router{
		"r1": {ID: "r1", Mode: entity.RouterModeAPI},
	}}
	return NewPackageUseCase(pkgs, routers), pkgs
}

func validRequest() dto.CreatePackageRequest {
	return dto.CreatePackageRequest{
		Name:           "Hotspot 3 horas",
		ConnectionType: entity.ConnectionHotspot,
		DownloadKbps:   5120,
		UploadKbps:     1024,
		Price:          decimal.NewFromInt(2000),
		DurationHours:  3,
		RouterID:       "r1",
	}
}

func TestPackageCreate_OK(t *testing.T) {
	uc, pkgs := newPackageUC()

	resp, err := uc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 3, resp.DurationHours)
	assert.Contains(t, pkgs.byID, resp.ID)
}

func TestPackageCreate_DuracionCeroRechazada(t *testing.T) {
	uc, _ := newPackageUC()
	in := validRequest()
	in.DurationHours = 0

	_, err := uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrZeroDuration)
}

func TestPackageCreate_DuracionNegativaRechazada(t *testing.T) {
	uc, _ := newPackageUC()
	in := validRequest()
	in.DurationMinutes = -10

	_, err := uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPackageCreate_TipoInvalido(t *testing.T) {
	uc, _ := newPackageUC()
	in := validRequest()
	in.ConnectionType = "DIALUP"

	_, err := uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPackageCreate_RouterInexistente(t *testing.T) {
	uc, _ := newPackageUC()
	in := validRequest()
	in.RouterID = "no-existe"

	_, err := uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPackageCreate_StaticSinIP(t *testing.T) {
	uc, _ := newPackageUC()
	in := validRequest()
	in.ConnectionType = entity.ConnectionStatic
	in.DurationHours = 0
	in.DurationDays = 30

	_, err := uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in.StaticIP = "10.0.5.17"
	resp, err := uc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "10.0.5.17", resp.StaticIP)
}

func TestRouterCreate_Validaciones(t *testing.T) {
	routers := &stubRouterRepo{byID: make(map[string]*entity.Router)}
	uc := NewRouterUseCase(routers)

	t.Run("API sin host", func(t *testing.T) {
		_, err := uc.Create(context.Background(), dto.CreateRouterRequest{
			Name: "nodo-1", Mode: entity.RouterModeAPI,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("VPN sin protocolo", func(t *testing.T) {
		_, err := uc.Create(context.Background(), dto.CreateRouterRequest{
			Name: "nodo-2", Mode: entity.RouterModeVPN, Host: "10.8.0.2", Username: "api",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("RADIUS sin credenciales pasa", func(t *testing.T) {
		resp, err := uc.Create(context.Background(), dto.CreateRouterRequest{
			Name: "freeradius", Mode: entity.RouterModeRadius,
		})
		require.NoError(t, err)
		assert.Equal(t, entity.LoginPhone, resp.HotspotLoginMethod, "método de login por defecto")
	})

	t.Run("puerto API por defecto", func(t *testing.T) {
		resp, err := uc.Create(context.Background(), dto.CreateRouterRequest{
			Name: "nodo-3", Mode: entity.RouterModeAPI, Host: "192.168.88.1", Username: "api",
		})
		require.NoError(t, err)
		assert.Equal(t, 8728, resp.APIPort)
	})
}
