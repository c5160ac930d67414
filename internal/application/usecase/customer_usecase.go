package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
	"github.com/tu-usuario/wisp-core/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// CustomerUseCase gestión de abonados.
type CustomerUseCase struct {
	customers repository.CustomerRepository
	messenger provisioning.Messenger
	log       *logger.Logger
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(customers repository.CustomerRepository, messenger provisioning.Messenger, log *logger.Logger) *CustomerUseCase {
	return &CustomerUseCase{customers: customers, messenger: messenger, log: log}
}

// GetOrCreate busca el abonado por email (en minúsculas); si no existe lo da
// de alta y envía el mensaje de bienvenida. El autoservicio usa esta ruta: el
// mismo email siempre resuelve al mismo abonado.
func (uc *CustomerUseCase) GetOrCreate(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if in.Email == "" || in.Phone == "" {
		return nil, domain.ErrInvalidInput
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := uc.customers.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return toCustomerResponse(existing), nil
	}

	var hash string
	if in.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(h)
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        email,
		Phone:        in.Phone,
		Address:      in.Address,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.customers.Create(ctx, customer); err != nil {
		// Alta concurrente del mismo email: el unique de la DB gana y se
		// devuelve la fila existente.
		if err == domain.ErrDuplicate {
			if again, err2 := uc.customers.GetByEmail(ctx, email); err2 == nil && again != nil {
				return toCustomerResponse(again), nil
			}
		}
		return nil, err
	}

	uc.welcome(ctx, customer)
	return toCustomerResponse(customer), nil
}

// GetByID busca un abonado por id.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	customer, err := uc.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return toCustomerResponse(customer), nil
}

// List lista abonados paginados.
func (uc *CustomerUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.CustomerResponse, error) {
	page.DefaultPage()
	customers, err := uc.customers.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = toCustomerResponse(c)
	}
	return out, nil
}

// welcome envía el SMS de bienvenida; la falla no bloquea el alta.
func (uc *CustomerUseCase) welcome(ctx context.Context, c *entity.Customer) {
	if uc.messenger == nil || c.Phone == "" {
		return
	}
	msg := fmt.Sprintf("Bienvenido %s. Tu cuenta quedó registrada.", c.Name)
	if err := uc.messenger.Send(ctx, c.Phone, msg); err != nil {
		uc.log.Warn().Err(err).Str("customer_id", c.ID).Msg("SMS de bienvenida falló")
	}
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		DataUsageMB: c.DataUsageMB,
		CreatedAt:   c.CreatedAt,
	}
}
