package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, name, email, phone, address, password_hash, data_usage_mb, created_at, updated_at`

// Create persiste un nuevo abonado. El email se guarda en minúsculas.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, strings.ToLower(c.Email), c.Phone, c.Address, c.PasswordHash,
		c.DataUsageMB, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un abonado por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get customer")
}

// GetByEmail obtiene un abonado por email (case-insensitive).
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = lower($1)`
	return r.scanOne(r.q.QueryRow(ctx, query, email), "get customer by email")
}

// List lista abonados con paginación.
func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza los datos de contacto de un abonado.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers SET name = $2, email = lower($3), phone = $4, address = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.Address, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// UpdateDataUsage fija el consumo acumulado reportado por el accounting.
func (r *CustomerRepo) UpdateDataUsage(ctx context.Context, id string, usageMB float64) error {
	_, err := r.q.Exec(ctx,
		`UPDATE customers SET data_usage_mb = $2, updated_at = now() WHERE id = $1`,
		id, usageMB,
	)
	if err != nil {
		return fmt.Errorf("update data usage: %w", err)
	}
	return nil
}

func (r *CustomerRepo) scanOne(row pgx.Row, op string) (*entity.Customer, error) {
	var c entity.Customer
	if err := scanCustomer(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

func scanCustomer(row pgx.Row, c *entity.Customer) error {
	return row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PasswordHash,
		&c.DataUsageMB, &c.CreatedAt, &c.UpdatedAt)
}
