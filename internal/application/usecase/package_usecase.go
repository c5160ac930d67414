// Package usecase casos de uso administrativos: catálogo de paquetes y
// routers, abonados y facturación.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/billing"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

// PackageUseCase gestión del catálogo de paquetes comerciales.
type PackageUseCase struct {
	pkgs    repository.PackageRepository
	routers repository.RouterRepository
}

// NewPackageUseCase construye el caso de uso.
func NewPackageUseCase(pkgs repository.PackageRepository, routers repository.RouterRepository) *PackageUseCase {
	return &PackageUseCase{pkgs: pkgs, routers: routers}
}

// Create valida y da de alta un paquete. La duración debe ser positiva: un
// paquete sin duración produciría suscripciones que expiran al crearse.
func (uc *PackageUseCase) Create(ctx context.Context, in dto.CreatePackageRequest) (*dto.PackageResponse, error) {
	if in.Name == "" || in.RouterID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidConnectionType(in.ConnectionType) {
		return nil, fmt.Errorf("connection_type %q: %w", in.ConnectionType, domain.ErrInvalidInput)
	}
	if err := billing.ValidateDuration(&entity.Package{
		DurationMinutes: in.DurationMinutes,
		DurationHours:   in.DurationHours,
		DurationDays:    in.DurationDays,
	}); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
	}
	router, err := uc.routers.GetByID(ctx, in.RouterID)
	if err != nil {
		return nil, err
	}
	if router == nil {
		return nil, fmt.Errorf("router %s: %w", in.RouterID, domain.ErrNotFound)
	}
	if in.ConnectionType == entity.ConnectionStatic && in.StaticIP == "" {
		return nil, fmt.Errorf("plan STATIC sin IP fija: %w", domain.ErrInvalidInput)
	}

	now := time.Now()
	pkg := &entity.Package{
		ID:              uuid.New().String(),
		Name:            in.Name,
		ConnectionType:  in.ConnectionType,
		DownloadKbps:    in.DownloadKbps,
		UploadKbps:      in.UploadKbps,
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		DurationHours:   in.DurationHours,
		DurationDays:    in.DurationDays,
		DataCapMB:       in.DataCapMB,
		StaticIP:        in.StaticIP,
		RouterID:        in.RouterID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.pkgs.Create(ctx, pkg); err != nil {
		return nil, err
	}
	return toPackageResponse(pkg), nil
}

// GetByID busca un paquete por id.
func (uc *PackageUseCase) GetByID(ctx context.Context, id string) (*dto.PackageResponse, error) {
	pkg, err := uc.pkgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, domain.ErrNotFound
	}
	return toPackageResponse(pkg), nil
}

// ListByConnectionType lista paquetes filtrados por tipo de conexión.
func (uc *PackageUseCase) ListByConnectionType(ctx context.Context, connectionType string, page dto.PageRequest) ([]*dto.PackageResponse, error) {
	if connectionType != "" && !entity.ValidConnectionType(connectionType) {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	pkgs, err := uc.pkgs.ListByConnectionType(ctx, connectionType, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PackageResponse, len(pkgs))
	for i, p := range pkgs {
		out[i] = toPackageResponse(p)
	}
	return out, nil
}

// Delete elimina un paquete del catálogo.
func (uc *PackageUseCase) Delete(ctx context.Context, id string) error {
	pkg, err := uc.pkgs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if pkg == nil {
		return domain.ErrNotFound
	}
	return uc.pkgs.Delete(ctx, id)
}

func toPackageResponse(p *entity.Package) *dto.PackageResponse {
	return &dto.PackageResponse{
		ID:              p.ID,
		Name:            p.Name,
		ConnectionType:  p.ConnectionType,
		DownloadKbps:    p.DownloadKbps,
		UploadKbps:      p.UploadKbps,
		Price:           p.Price,
		DurationMinutes: p.DurationMinutes,
		DurationHours:   p.DurationHours,
		DurationDays:    p.DurationDays,
		DataCapMB:       p.DataCapMB,
		StaticIP:        p.StaticIP,
		RouterID:        p.RouterID,
		CreatedAt:       p.CreatedAt,
	}
}
