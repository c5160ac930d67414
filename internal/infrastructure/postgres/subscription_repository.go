package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo implementación de SubscriptionRepository (usable con pool o tx).
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador.
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

const subscriptionColumns = `id, customer_id, package_id, connection_type, username, password,
	start_time, end_time, is_active, router_id, created_at, updated_at`

// Create persiste una suscripción.
func (r *SubscriptionRepo) Create(ctx context.Context, s *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.CustomerID, s.PackageID, s.ConnectionType, s.Username, s.Password,
		s.StartTime, s.EndTime, s.IsActive, s.RouterID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// GetByID obtiene una suscripción por ID.
func (r *SubscriptionRepo) GetByID(ctx context.Context, id string) (*entity.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	var s entity.Subscription
	if err := scanSubscription(r.q.QueryRow(ctx, query, id), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &s, nil
}

// ListByCustomer lista las suscripciones de un abonado.
func (r *SubscriptionRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions by customer: %w", err)
	}
	return collectSubscriptions(rows)
}

// ListActive lista todas las suscripciones activas (insumo del resync total).
func (r *SubscriptionRepo) ListActive(ctx context.Context) ([]*entity.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE is_active`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	return collectSubscriptions(rows)
}

// ListActiveExpiredBefore lista las activas cuyo end_time ya pasó.
func (r *SubscriptionRepo) ListActiveExpiredBefore(ctx context.Context, now time.Time) ([]*entity.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE is_active AND end_time <= $1`
	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list expired subscriptions: %w", err)
	}
	return collectSubscriptions(rows)
}

// Update actualiza una suscripción (compensación: nuevo end_time).
func (r *SubscriptionRepo) Update(ctx context.Context, s *entity.Subscription) error {
	query := `
		UPDATE subscriptions SET end_time = $2, is_active = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, s.ID, s.EndTime, s.IsActive, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

// MarkInactive desactiva solo si la fila sigue activa; el conteo de filas
// afectadas dice si esta llamada hizo la transición (base de la idempotencia
// de la expiración).
func (r *SubscriptionRepo) MarkInactive(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE subscriptions SET is_active = FALSE, updated_at = now() WHERE id = $1 AND is_active`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("mark subscription inactive: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSubscription(row pgx.Row, s *entity.Subscription) error {
	return row.Scan(&s.ID, &s.CustomerID, &s.PackageID, &s.ConnectionType, &s.Username, &s.Password,
		&s.StartTime, &s.EndTime, &s.IsActive, &s.RouterID, &s.CreatedAt, &s.UpdatedAt)
}

func collectSubscriptions(rows pgx.Rows) ([]*entity.Subscription, error) {
	defer rows.Close()
	var list []*entity.Subscription
	for rows.Next() {
		var s entity.Subscription
		if err := scanSubscription(rows, &s); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
