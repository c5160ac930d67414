package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

// SubscriptionRepository define el puerto de persistencia para Subscription.
//
// MarkInactive desactiva solo si la fila sigue activa y reporta si hubo
// cambio: es la base de la idempotencia de Expire (dos expiraciones del mismo
// registro producen una sola transición y una sola entrada de bitácora).
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error
	GetByID(ctx context.Context, id string) (*entity.Subscription, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Subscription, error)
	ListActive(ctx context.Context) ([]*entity.Subscription, error)
	ListActiveExpiredBefore(ctx context.Context, now time.Time) ([]*entity.Subscription, error)
	Update(ctx context.Context, sub *entity.Subscription) error
	MarkInactive(ctx context.Context, id string) (changed bool, err error)
}
