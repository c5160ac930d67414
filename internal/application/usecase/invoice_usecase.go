package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

// InvoiceUseCase cobro por compra o renovación de un paquete: crea la factura
// y el intento de pago, e inicia el cobro en la pasarela cuando el método lo
// requiere. La conversión a suscripción ocurre después, cuando llega el
// callback de la pasarela (provisioning.Lifecycle.HandlePaymentEvent).
type InvoiceUseCase struct {
	invoices  repository.InvoiceRepository
	payments  repository.PaymentRepository
	customers repository.CustomerRepository
	pkgs      repository.PackageRepository
	gateway   provisioning.PaymentInitiator
	log       *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	invoices repository.InvoiceRepository,
	payments repository.PaymentRepository,
	customers repository.CustomerRepository,
	pkgs repository.PackageRepository,
	gateway provisioning.PaymentInitiator,
	log *logger.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoices:  invoices,
		payments:  payments,
		customers: customers,
		pkgs:      pkgs,
		gateway:   gateway,
		log:       log,
	}
}

// Create emite una factura PENDING por el precio vigente del paquete y abre el
// intento de pago. Con MOBILE_MONEY inicia el cobro en la pasarela; si la
// pasarela rechaza la iniciación, factura y pago quedan FAILED.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.CustomerID == "" || in.PackageID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !validMethod(in.Method) {
		return nil, fmt.Errorf("método de pago %q: %w", in.Method, domain.ErrInvalidInput)
	}
	customer, err := uc.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("abonado %s: %w", in.CustomerID, domain.ErrNotFound)
	}
	pkg, err := uc.pkgs.GetByID(ctx, in.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, fmt.Errorf("paquete %s: %w", in.PackageID, domain.ErrNotFound)
	}

	now := time.Now()
	invoice := &entity.Invoice{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		PackageID:  pkg.ID,
		Amount:     pkg.Price,
		Status:     entity.InvoicePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}

	payment := &entity.Payment{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		InvoiceID:  invoice.ID,
		Amount:     invoice.Amount,
		Method:     in.Method,
		Status:     entity.PaymentPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	switch in.Method {
	case entity.MethodMobileMoney:
		txID, err := uc.gateway.InitiatePayment(ctx, customer.Phone, invoice.Amount, invoice.ID, customer.ID)
		if err != nil {
			uc.log.Warn().Err(err).Str("invoice_id", invoice.ID).Msg("iniciación de cobro rechazada")
			invoice.Status = entity.InvoiceFailed
			invoice.UpdatedAt = time.Now()
			if uerr := uc.invoices.Update(ctx, invoice); uerr != nil {
				return nil, uerr
			}
			payment.Status = entity.PaymentFailed
			payment.TransactionID = "failed_" + payment.ID
			if cerr := uc.payments.Create(ctx, payment); cerr != nil {
				return nil, cerr
			}
			return toInvoiceResponse(invoice, payment), nil
		}
		payment.TransactionID = txID
	default:
		// Transferencia/efectivo: correlación manual, queda por verificar.
		payment.TransactionID = "manual_" + payment.ID
		payment.Status = entity.PaymentAwaitingVerification
	}

	if err := uc.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, payment), nil
}

// GetByID busca una factura.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return toInvoiceResponse(invoice, nil), nil
}

// ListByCustomer lista las facturas de un abonado.
func (uc *InvoiceUseCase) ListByCustomer(ctx context.Context, customerID string, page dto.PageRequest) ([]*dto.InvoiceResponse, error) {
	page.DefaultPage()
	invoices, err := uc.invoices.ListByCustomer(ctx, customerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = toInvoiceResponse(inv, nil)
	}
	return out, nil
}

func validMethod(m string) bool {
	switch m {
	case entity.MethodMobileMoney, entity.MethodBankTransfer, entity.MethodCash:
		return true
	}
	return false
}

func toInvoiceResponse(inv *entity.Invoice, p *entity.Payment) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		PackageID:  inv.PackageID,
		Amount:     inv.Amount.StringFixed(2),
		Status:     inv.Status,
	}
	if p != nil {
		resp.TransactionID = p.TransactionID
	}
	return resp
}
