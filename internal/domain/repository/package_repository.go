package repository

import (
	"context"

	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

// PackageRepository define el puerto de persistencia para Package.
type PackageRepository interface {
	Create(ctx context.Context, pkg *entity.Package) error
	GetByID(ctx context.Context, id string) (*entity.Package, error)
	ListByConnectionType(ctx context.Context, connectionType string, limit, offset int) ([]*entity.Package, error)
	ListByRouter(ctx context.Context, routerID string) ([]*entity.Package, error)
	Update(ctx context.Context, pkg *entity.Package) error
	Delete(ctx context.Context, id string) error
}

// RouterRepository define el puerto de persistencia para Router.
type RouterRepository interface {
	Create(ctx context.Context, router *entity.Router) error
	GetByID(ctx context.Context, id string) (*entity.Router, error)
	List(ctx context.Context) ([]*entity.Router, error)
	Update(ctx context.Context, router *entity.Router) error
	Delete(ctx context.Context, id string) error
}
