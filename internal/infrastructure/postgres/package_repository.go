package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

var _ repository.PackageRepository = (*PackageRepo)(nil)

// PackageRepo implementación de PackageRepository (usable con pool o tx).
type PackageRepo struct {
	q Querier
}

// NewPackageRepository construye el adaptador.
func NewPackageRepository(q Querier) *PackageRepo {
	return &PackageRepo{q: q}
}

const packageColumns = `id, name, connection_type, download_kbps, upload_kbps, price,
	duration_minutes, duration_hours, duration_days, data_cap_mb, static_ip, router_id,
	created_at, updated_at`

// Create persiste un paquete.
func (r *PackageRepo) Create(ctx context.Context, p *entity.Package) error {
	query := `
		INSERT INTO packages (` + packageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.ConnectionType, p.DownloadKbps, p.UploadKbps, p.Price,
		p.DurationMinutes, p.DurationHours, p.DurationDays, p.DataCapMB, p.StaticIP, p.RouterID,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert package: %w", err)
	}
	return nil
}

// GetByID obtiene un paquete por ID.
func (r *PackageRepo) GetByID(ctx context.Context, id string) (*entity.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`
	var p entity.Package
	if err := scanPackage(r.q.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	return &p, nil
}

// ListByConnectionType lista paquetes por tipo; con tipo vacío lista todos.
func (r *PackageRepo) ListByConnectionType(ctx context.Context, connectionType string, limit, offset int) ([]*entity.Package, error) {
	query := `
		SELECT ` + packageColumns + ` FROM packages
		WHERE ($1 = '' OR connection_type = $1)
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, connectionType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return collectPackages(rows)
}

// ListByRouter lista los paquetes servidos por un router.
func (r *PackageRepo) ListByRouter(ctx context.Context, routerID string) ([]*entity.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE router_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, routerID)
	if err != nil {
		return nil, fmt.Errorf("list packages by router: %w", err)
	}
	return collectPackages(rows)
}

// Update actualiza un paquete.
func (r *PackageRepo) Update(ctx context.Context, p *entity.Package) error {
	query := `
		UPDATE packages SET name = $2, connection_type = $3, download_kbps = $4, upload_kbps = $5,
			price = $6, duration_minutes = $7, duration_hours = $8, duration_days = $9,
			data_cap_mb = $10, static_ip = $11, router_id = $12, updated_at = $13
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.ConnectionType, p.DownloadKbps, p.UploadKbps, p.Price,
		p.DurationMinutes, p.DurationHours, p.DurationDays, p.DataCapMB, p.StaticIP, p.RouterID,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	return nil
}

// Delete elimina un paquete por ID.
func (r *PackageRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	return nil
}

func scanPackage(row pgx.Row, p *entity.Package) error {
	return row.Scan(&p.ID, &p.Name, &p.ConnectionType, &p.DownloadKbps, &p.UploadKbps, &p.Price,
		&p.DurationMinutes, &p.DurationHours, &p.DurationDays, &p.DataCapMB, &p.StaticIP, &p.RouterID,
		&p.CreatedAt, &p.UpdatedAt)
}

func collectPackages(rows pgx.Rows) ([]*entity.Package, error) {
	defer rows.Close()
	var list []*entity.Package
	for rows.Next() {
		var p entity.Package
		if err := scanPackage(rows, &p); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
