package repository

import (
	"context"

	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para Payment.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
}

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
}
