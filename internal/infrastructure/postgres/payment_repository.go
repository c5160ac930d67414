package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

var (
	_ repository.PaymentRepository = (*PaymentRepo)(nil)
	_ repository.InvoiceRepository = (*InvoiceRepo)(nil)
)

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `id, customer_id, invoice_id, amount, transaction_id, method, status, created_at, updated_at`

// Create persiste un intento de pago. transaction_id es único: un duplicado
// devuelve ErrDuplicate.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CustomerID, p.InvoiceID, p.Amount, p.TransactionID, p.Method, p.Status,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene un pago por ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get payment")
}

// GetByTransactionID busca el pago por la clave de correlación de la pasarela.
func (r *PaymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, transactionID), "get payment by transaction")
}

// Update actualiza el estado de un pago.
func (r *PaymentRepo) Update(ctx context.Context, p *entity.Payment) error {
	query := `UPDATE payments SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, p.ID, p.Status, p.UpdatedAt); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) scanOne(row pgx.Row, op string) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(&p.ID, &p.CustomerID, &p.InvoiceID, &p.Amount, &p.TransactionID,
		&p.Method, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, customer_id, package_id, subscription_id, amount, status, paid_at, created_at, updated_at`

// Create persiste una factura. subscription_id viaja como NULL mientras esté
// vacío (la marca de idempotencia de la conversión de pago).
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CustomerID, inv.PackageID, inv.SubscriptionID, inv.Amount, inv.Status,
		inv.PaidAt, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `
		SELECT id, customer_id, package_id, COALESCE(subscription_id::text, ''), amount, status,
			paid_at, created_at, updated_at
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.CustomerID, &inv.PackageID, &inv.SubscriptionID, &inv.Amount, &inv.Status,
		&inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// ListByCustomer lista facturas de un abonado.
func (r *InvoiceRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT id, customer_id, package_id, COALESCE(subscription_id::text, ''), amount, status,
			paid_at, created_at, updated_at
		FROM invoices WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		err := rows.Scan(&inv.ID, &inv.CustomerID, &inv.PackageID, &inv.SubscriptionID,
			&inv.Amount, &inv.Status, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// Update actualiza estado, pago y suscripción asociada de una factura.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices SET subscription_id = NULLIF($2, '')::uuid, status = $3, paid_at = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, inv.ID, inv.SubscriptionID, inv.Status, inv.PaidAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}
