package vouchers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

// Largo y política de los vouchers emitidos por la vía de pago.
const (
	mintCodeLength = 8
	mintAttempts   = 10
)

// Minter emite vouchers individuales para el flujo de pago (hotspot con login
// por voucher). Solo depende del repositorio; el caso de uso completo del
// libro de vouchers vive en UseCase.
type Minter struct {
	vouchers repository.VoucherRepository
	now      func() time.Time
}

// NewMinter construye el emisor.
func NewMinter(vouchers repository.VoucherRepository) *Minter {
	return &Minter{vouchers: vouchers, now: time.Now}
}

// Mint genera y persiste un voucher único del paquete. Presupuesto acotado de
// intentos; si el espacio de códigos no da, falla con ErrCodeSpaceExhausted.
func (m *Minter) Mint(ctx context.Context, packageID string) (*entity.Voucher, error) {
	for i := 0; i < mintAttempts; i++ {
		code, err := randomCode(mintCodeLength, CharsetUppercase)
		if err != nil {
			return nil, err
		}
		existing, err := m.vouchers.ExistingCodes(ctx, []string{code})
		if err != nil {
			return nil, err
		}
		if _, taken := existing[code]; taken {
			continue
		}
		v := &entity.Voucher{
			ID:        uuid.New().String(),
			Code:      code,
			PackageID: packageID,
			BatchID:   "",
			IsActive:  true,
			CreatedAt: m.now(),
		}
		if err := m.vouchers.CreateBatch(ctx, []*entity.Voucher{v}); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, domain.ErrCodeSpaceExhausted
}
