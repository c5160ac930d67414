package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

// VoucherRepository define el puerto de persistencia para Voucher.
//
// Redeem es el check-and-set atómico del canje: marca el voucher como usado
// solo si sigue activo y sin canjear, y devuelve la fila afectada. Si ningún
// voucher cumple la condición retorna domain.ErrVoucherNotRedeemable; bajo N
// canjes concurrentes del mismo código exactamente uno recibe la fila.
type VoucherRepository interface {
	CreateBatch(ctx context.Context, vouchers []*entity.Voucher) error
	GetByCode(ctx context.Context, code string) (*entity.Voucher, error)
	ExistingCodes(ctx context.Context, codes []string) (map[string]struct{}, error)
	Redeem(ctx context.Context, code string, at time.Time) (*entity.Voucher, error)
	ListByBatch(ctx context.Context, batchID string) ([]*entity.Voucher, error)
}
