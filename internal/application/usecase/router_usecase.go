package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

// RouterUseCase gestión de los equipos de control de acceso.
type RouterUseCase struct {
	routers repository.RouterRepository
}

// NewRouterUseCase construye el caso de uso.
func NewRouterUseCase(routers repository.RouterRepository) *RouterUseCase {
	return &RouterUseCase{routers: routers}
}

// Create valida y registra un router. Las reglas por modo:
//   - API y VPN requieren host y credenciales de la API.
//   - VPN además requiere protocolo de túnel.
//   - RADIUS no necesita credenciales de API (se escribe directo en SQL).
func (uc *RouterUseCase) Create(ctx context.Context, in dto.CreateRouterRequest) (*dto.RouterResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	switch in.Mode {
	case entity.RouterModeAPI, entity.RouterModeVPN:
		if in.Host == "" || in.Username == "" {
			return nil, fmt.Errorf("modo %s requiere host y credenciales: %w", in.Mode, domain.ErrInvalidInput)
		}
		if in.Mode == entity.RouterModeVPN && !validVPNProtocol(in.VPNProtocol) {
			return nil, fmt.Errorf("protocolo de túnel %q: %w", in.VPNProtocol, domain.ErrInvalidInput)
		}
	case entity.RouterModeRadius:
		// Sin requisitos de API; RadiusServer/Secret son informativos.
	default:
		return nil, fmt.Errorf("modo %q: %w", in.Mode, domain.ErrInvalidInput)
	}
	if in.HotspotLoginMethod != "" && !validLoginMethod(in.HotspotLoginMethod) {
		return nil, fmt.Errorf("hotspot_login_method %q: %w", in.HotspotLoginMethod, domain.ErrInvalidInput)
	}

	apiPort := in.APIPort
	if apiPort == 0 {
		apiPort = 8728 // puerto por defecto de la API MikroTik
	}
	login := in.HotspotLoginMethod
	if login == "" {
		login = entity.LoginPhone
	}
	now := time.Now()
	router := &entity.Router{
		ID:                 uuid.New().String(),
		Name:               in.Name,
		Host:               in.Host,
		APIPort:            apiPort,
		Username:           in.Username,
		Password:           in.Password,
		Mode:               in.Mode,
		VPNProtocol:        in.VPNProtocol,
		RadiusServer:       in.RadiusServer,
		RadiusSecret:       in.RadiusSecret,
		HotspotLoginMethod: login,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.routers.Create(ctx, router); err != nil {
		return nil, err
	}
	return toRouterResponse(router), nil
}

// GetByID busca un router por id.
func (uc *RouterUseCase) GetByID(ctx context.Context, id string) (*dto.RouterResponse, error) {
	router, err := uc.routers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if router == nil {
		return nil, domain.ErrNotFound
	}
	return toRouterResponse(router), nil
}

// List lista todos los routers registrados.
func (uc *RouterUseCase) List(ctx context.Context) ([]*dto.RouterResponse, error) {
	routers, err := uc.routers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.RouterResponse, len(routers))
	for i, r := range routers {
		out[i] = toRouterResponse(r)
	}
	return out, nil
}

// Delete elimina un router.
func (uc *RouterUseCase) Delete(ctx context.Context, id string) error {
	router, err := uc.routers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if router == nil {
		return domain.ErrNotFound
	}
	return uc.routers.Delete(ctx, id)
}

func validVPNProtocol(p string) bool {
	switch p {
	case entity.VPNProtoIPsecL2TP, entity.VPNProtoOpenVPN, entity.VPNProtoWireGuard, entity.VPNProtoPPTP:
		return true
	}
	return false
}

func validLoginMethod(m string) bool {
	switch m {
	case entity.LoginTransaction, entity.LoginPhone, entity.LoginVoucher:
		return true
	}
	return false
}

// toRouterResponse nunca expone las credenciales del equipo.
func toRouterResponse(r *entity.Router) *dto.RouterResponse {
	return &dto.RouterResponse{
		ID:                 r.ID,
		Name:               r.Name,
		Host:               r.Host,
		APIPort:            r.APIPort,
		Mode:               r.Mode,
		VPNProtocol:        r.VPNProtocol,
		RadiusServer:       r.RadiusServer,
		HotspotLoginMethod: r.HotspotLoginMethod,
		CreatedAt:          r.CreatedAt,
	}
}
