package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
)

var _ repository.VoucherRepository = (*VoucherRepo)(nil)

// VoucherRepo implementación de VoucherRepository (usable con pool o tx).
type VoucherRepo struct {
	q Querier
}

// NewVoucherRepository construye el adaptador.
func NewVoucherRepository(q Querier) *VoucherRepo {
	return &VoucherRepo{q: q}
}

const voucherColumns = `id, code, package_id, batch_id, is_active, redeemed_at, created_at`

// CreateBatch inserta el lote completo en una sola sentencia multi-values.
func (r *VoucherRepo) CreateBatch(ctx context.Context, vouchers []*entity.Voucher) error {
	if len(vouchers) == 0 {
		return nil
	}
	query := `INSERT INTO vouchers (` + voucherColumns + `) VALUES `
	args := make([]any, 0, len(vouchers)*7)
	for i, v := range vouchers {
		if i > 0 {
			query += ", "
		}
		base := i * 7
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, v.ID, v.Code, v.PackageID, v.BatchID, v.IsActive, v.RedeemedAt, v.CreatedAt)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert voucher batch: %w", err)
	}
	return nil
}

// GetByCode busca un voucher por código, case-insensitive.
func (r *VoucherRepo) GetByCode(ctx context.Context, code string) (*entity.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE lower(code) = lower($1)`
	var v entity.Voucher
	if err := scanVoucher(r.q.QueryRow(ctx, query, code), &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	return &v, nil
}

// ExistingCodes devuelve cuáles de los códigos dados ya están persistidos.
func (r *VoucherRepo) ExistingCodes(ctx context.Context, codes []string) (map[string]struct{}, error) {
	if len(codes) == 0 {
		return map[string]struct{}{}, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT code FROM vouchers WHERE lower(code) = ANY (SELECT lower(unnest($1::text[])))`,
		codes,
	)
	if err != nil {
		return nil, fmt.Errorf("check existing codes: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		out[code] = struct{}{}
	}
	return out, rows.Err()
}

// Redeem marca el voucher como usado con un UPDATE condicional. La condición
// is_active AND redeemed_at IS NULL garantiza exactamente un ganador bajo
// canjes concurrentes: el que no afecta fila recibe ErrVoucherNotRedeemable.
func (r *VoucherRepo) Redeem(ctx context.Context, code string, at time.Time) (*entity.Voucher, error) {
	query := `
		UPDATE vouchers SET is_active = FALSE, redeemed_at = $2
		WHERE lower(code) = lower($1) AND is_active AND redeemed_at IS NULL
		RETURNING ` + voucherColumns
	var v entity.Voucher
	if err := scanVoucher(r.q.QueryRow(ctx, query, code, at), &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVoucherNotRedeemable
		}
		return nil, fmt.Errorf("redeem voucher: %w", err)
	}
	return &v, nil
}

// ListByBatch lista los vouchers de un lote de generación.
func (r *VoucherRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE batch_id = $1 ORDER BY code`
	rows, err := r.q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Voucher
	for rows.Next() {
		var v entity.Voucher
		if err := scanVoucher(rows, &v); err != nil {
			return nil, fmt.Errorf("scan voucher: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

func scanVoucher(row pgx.Row, v *entity.Voucher) error {
	return row.Scan(&v.ID, &v.Code, &v.PackageID, &v.BatchID, &v.IsActive, &v.RedeemedAt, &v.CreatedAt)
}
