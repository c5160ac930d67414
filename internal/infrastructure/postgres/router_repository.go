package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

var _ repository.RouterRepository = (*RouterRepo)(nil)

// RouterRepo implementación de RouterRepository (usable con pool o tx).
type RouterRepo struct {
	q Querier
}

// NewRouterRepository construye el adaptador.
func NewRouterRepository(q Querier) *RouterRepo {
	return &RouterRepo{q: q}
}

const routerColumns = `id, name, host, api_port, username, password, mode, vpn_protocol,
	radius_server, radius_secret, hotspot_login_method, created_at, updated_at`

// Create persiste un router.
func (r *RouterRepo) Create(ctx context.Context, rt *entity.Router) error {
	query := `
		INSERT INTO routers (` + routerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		rt.ID, rt.Name, rt.Host, rt.APIPort, rt.Username, rt.Password, rt.Mode, rt.VPNProtocol,
		rt.RadiusServer, rt.RadiusSecret, rt.HotspotLoginMethod, rt.CreatedAt, rt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert router: %w", err)
	}
	return nil
}

// GetByID obtiene un router por ID.
func (r *RouterRepo) GetByID(ctx context.Context, id string) (*entity.Router, error) {
	query := `SELECT ` + routerColumns + ` FROM routers WHERE id = $1`
	var rt entity.Router
	if err := scanRouter(r.q.QueryRow(ctx, query, id), &rt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get router: %w", err)
	}
	return &rt, nil
}

// List lista todos los routers.
func (r *RouterRepo) List(ctx context.Context) ([]*entity.Router, error) {
	query := `SELECT ` + routerColumns + ` FROM routers ORDER BY name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list routers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Router
	for rows.Next() {
		var rt entity.Router
		if err := scanRouter(rows, &rt); err != nil {
			return nil, fmt.Errorf("scan router: %w", err)
		}
		list = append(list, &rt)
	}
	return list, rows.Err()
}

// Update actualiza un router.
func (r *RouterRepo) Update(ctx context.Context, rt *entity.Router) error {
	query := `
		UPDATE routers SET name = $2, host = $3, api_port = $4, username = $5, password = $6,
			mode = $7, vpn_protocol = $8, radius_server = $9, radius_secret = $10,
			hotspot_login_method = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		rt.ID, rt.Name, rt.Host, rt.APIPort, rt.Username, rt.Password, rt.Mode, rt.VPNProtocol,
		rt.RadiusServer, rt.RadiusSecret, rt.HotspotLoginMethod, rt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update router: %w", err)
	}
	return nil
}

// Delete elimina un router por ID.
func (r *RouterRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM routers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete router: %w", err)
	}
	return nil
}

func scanRouter(row pgx.Row, rt *entity.Router) error {
	return row.Scan(&rt.ID, &rt.Name, &rt.Host, &rt.APIPort, &rt.Username, &rt.Password,
		&rt.Mode, &rt.VPNProtocol, &rt.RadiusServer, &rt.RadiusSecret, &rt.HotspotLoginMethod,
		&rt.CreatedAt, &rt.UpdatedAt)
}
