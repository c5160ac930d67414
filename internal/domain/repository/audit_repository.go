package repository

import (
	"context"

	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

// AuditLogRepository bitácora append-only: solo inserción y lectura.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entity.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*entity.AuditLog, error)
}

// UserRepository define el puerto de persistencia para usuarios administrativos.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
