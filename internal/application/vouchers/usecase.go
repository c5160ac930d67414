// Package vouchers implementa el libro de vouchers: generación de lotes de
// códigos únicos, canje atómico de un solo uso y lote imprimible.
package vouchers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/wisp-core/internal/application/dto"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/domain"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

// CardRenderer puerto de generación del PDF de tarjetas de un lote.
type CardRenderer interface {
	RenderCards(pkg *entity.Package, batch []*entity.Voucher) ([]byte, error)
}

// UseCase casos de uso del libro de vouchers.
type UseCase struct {
	vouchers  repository.VoucherRepository
	pkgs      repository.PackageRepository
	audit     repository.AuditLogRepository
	lifecycle *provisioning.Lifecycle
	renderer  CardRenderer
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	vouchers repository.VoucherRepository,
	pkgs repository.PackageRepository,
	audit repository.AuditLogRepository,
	lifecycle *provisioning.Lifecycle,
	renderer CardRenderer,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		vouchers:  vouchers,
		pkgs:      pkgs,
		audit:     audit,
		lifecycle: lifecycle,
		renderer:  renderer,
		log:       log,
		now:       time.Now,
	}
}

// Generate produce count códigos únicos globales del paquete indicado.
// El presupuesto de intentos es 10x el pedido: si el espacio de códigos está
// tan saturado que no alcanza, falla con ErrCodeSpaceExhausted en vez de
// devolver un lote corto en silencio.
func (uc *UseCase) Generate(ctx context.Context, in dto.GenerateVouchersRequest) (*dto.GenerateVouchersResponse, error) {
	if in.Count <= 0 || in.Count > 10000 || in.Length < 4 || in.Length > 32 {
		return nil, domain.ErrInvalidInput
	}
	if _, ok := charsets[in.Charset]; !ok {
		return nil, domain.ErrInvalidInput
	}
	pkg, err := uc.pkgs.GetByID(ctx, in.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, domain.ErrNotFound
	}

	codes, err := uc.uniqueCodes(ctx, in.Count, in.Length, in.Charset, in.Prefix)
	if err != nil {
		return nil, err
	}

	batchID := uuid.New().String()
	now := uc.now()
	batch := make([]*entity.Voucher, len(codes))
	for i, code := range codes {
		batch[i] = &entity.Voucher{
			ID:        uuid.New().String(),
			Code:      code,
			PackageID: pkg.ID,
			BatchID:   batchID,
			IsActive:  true,
			CreatedAt: now,
		}
	}
	if err := uc.vouchers.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	uc.appendAudit(ctx, entity.ActionVoucherBatchGenerated, "voucher", batchID, "",
		"count="+itoa(len(codes))+" package="+pkg.ID)
	return &dto.GenerateVouchersResponse{BatchID: batchID, Codes: codes}, nil
}

// uniqueCodes genera códigos candidatos y los filtra contra los persistidos
// hasta completar count, con presupuesto acotado de intentos.
func (uc *UseCase) uniqueCodes(ctx context.Context, count, length int, charset, prefix string) ([]string, error) {
	budget := 10 * count
	attempts := 0
	seen := make(map[string]struct{}, count)
	codes := make([]string, 0, count)

	for len(codes) < count {
		if attempts >= budget {
			return nil, domain.ErrCodeSpaceExhausted
		}
		candidates := make([]string, 0, count-len(codes))
		for len(candidates) < count-len(codes) && attempts < budget {
			attempts++
			raw, err := randomCode(length, charset)
			if err != nil {
				return nil, err
			}
			full := prefix + raw
			if _, dup := seen[full]; dup {
				continue
			}
			seen[full] = struct{}{}
			candidates = append(candidates, full)
		}
		existing, err := uc.vouchers.ExistingCodes(ctx, candidates)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			if _, taken := existing[c]; taken {
				continue
			}
			codes = append(codes, c)
		}
	}
	return codes, nil
}

// Redeem canjea un código por una suscripción. El canje en sí es un UPDATE
// condicional: bajo N intentos concurrentes del mismo código exactamente uno
// gana y los demás reciben ErrVoucherNotRedeemable.
//
// Si el aprovisionamiento posterior falla, el canje NO se revierte: un
// voucher reclamado queda consumido y la recuperación de la sincronización de
// red corre por cuenta del reconciliador. Se privilegia "el cliente conserva
// el acceso que pagó" sobre la consistencia inmediata con el equipo.
func (uc *UseCase) Redeem(ctx context.Context, in dto.RedeemVoucherRequest) (*dto.RedeemVoucherResponse, error) {
	if in.Code == "" || in.CustomerID == "" {
		return nil, domain.ErrInvalidInput
	}

	// Lookup case-insensitive previo: distingue "no canjeable" de "de otro
	// paquete" antes de consumir nada.
	v, err := uc.vouchers.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if v == nil || !v.Redeemable() {
		return nil, domain.ErrVoucherNotRedeemable
	}
	if in.PackageID != "" && in.PackageID != v.PackageID {
		return nil, domain.ErrPackageMismatch
	}

	redeemed, err := uc.vouchers.Redeem(ctx, in.Code, uc.now())
	if err != nil {
		return nil, err
	}
	uc.appendAudit(ctx, entity.ActionVoucherRedeemed, "voucher", redeemed.ID, in.CustomerID, "code="+redeemed.Code)

	sub, err := uc.lifecycle.CreateFromVoucher(ctx, redeemed, in.CustomerID)
	if err != nil {
		// Voucher ya consumido; se reporta la falla sin desandar el canje.
		uc.log.Error().Err(err).Str("code", redeemed.Code).Msg("canje sin suscripción; requiere intervención")
		return nil, err
	}

	return &dto.RedeemVoucherResponse{
		SubscriptionID: sub.ID,
		Username:       sub.Username,
		Password:       sub.Password,
		EndTime:        sub.EndTime,
	}, nil
}

// CardsPDF genera la hoja imprimible de tarjetas de un lote.
func (uc *UseCase) CardsPDF(ctx context.Context, batchID string) ([]byte, error) {
	if uc.renderer == nil {
		return nil, domain.ErrInvalidInput
	}
	batch, err := uc.vouchers.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, domain.ErrNotFound
	}
	pkg, err := uc.pkgs.GetByID(ctx, batch[0].PackageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, domain.ErrNotFound
	}
	return uc.renderer.RenderCards(pkg, batch)
}

func (uc *UseCase) appendAudit(ctx context.Context, action, entityType, entityID, actor, detail string) {
	entry := &entity.AuditLog{
		ID:         uuid.New().String(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Detail:     detail,
		CreatedAt:  uc.now(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		uc.log.Error().Err(err).Str("action", action).Msg("no se pudo escribir la bitácora")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
