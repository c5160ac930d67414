// Package radius sincronizador de credenciales sobre las tablas SQL de
// FreeRADIUS (radcheck, radreply, radusergroup). Esta aplicación solo
// escribe; el servidor FreeRADIUS las lee al autenticar.
package radius

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/internal/domain/repository"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

var (
	_ provisioning.NetworkSyncer  = (*Syncer)(nil)
	_ provisioning.RadiusResyncer = (*Syncer)(nil)
)

// Syncer escribe las credenciales en las tablas FreeRADIUS. El upsert por
// username es borrar-e-insertar dentro de una transacción: más simple que
// reconciliar atributo por atributo e igual de idempotente.
type Syncer struct {
	pool  *pgxpool.Pool
	audit repository.AuditLogRepository
	log   *logger.Logger
	now   func() time.Time
}

// NewSyncer construye el sincronizador RADIUS.
func NewSyncer(pool *pgxpool.Pool, audit repository.AuditLogRepository, log *logger.Logger) *Syncer {
	return &Syncer{pool: pool, audit: audit, log: log, now: time.Now}
}

// Provision reescribe las filas del username de la suscripción.
func (s *Syncer) Provision(ctx context.Context, t provisioning.Target) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := deleteUser(ctx, tx, t.Subscription.Username); err != nil {
			return err
		}
		return insertUser(ctx, tx, t)
	})
}

// Deprovision borra todas las filas del username. Ausente es éxito.
func (s *Syncer) Deprovision(ctx context.Context, t provisioning.Target) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return deleteUser(ctx, tx, t.Subscription.Username)
	})
}

// Resync replanteo total: trunca las tres tablas y las repuebla con el
// conjunto vigente de suscripciones activas, todo en una transacción (el
// servidor RADIUS nunca ve las tablas vacías). Destructivo a propósito para
// no acumular filas huérfanas; el llamador serializa con el lock de escritor
// único. Corridas consecutivas con el mismo conjunto producen el mismo
// contenido.
func (s *Syncer) Resync(ctx context.Context, targets []provisioning.Target) error {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE radcheck, radreply, radusergroup`); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
		for _, t := range targets {
			if err := insertUser(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.appendAudit(ctx, entity.ActionRadiusResyncFailed, err.Error())
		return err
	}
	s.appendAudit(ctx, entity.ActionRadiusResync, "count="+strconv.Itoa(len(targets)))
	return nil
}

func (s *Syncer) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Syncer) appendAudit(ctx context.Context, action, detail string) {
	entry := &entity.AuditLog{
		ID:         uuid.New().String(),
		Action:     action,
		EntityType: "router",
		EntityID:   "radius",
		Detail:     detail,
		CreatedAt:  s.now(),
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("action", action).Msg("no se pudo escribir la bitácora")
	}
}

func deleteUser(ctx context.Context, tx pgx.Tx, username string) error {
	for _, table := range []string{"radcheck", "radreply", "radusergroup"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE username = $1`, username); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

// insertUser escribe las filas RADIUS de una suscripción: la credencial en
// radcheck y los atributos de respuesta Mikrotik en radreply.
func insertUser(ctx context.Context, tx pgx.Tx, t provisioning.Target) error {
	username := t.Subscription.Username

	_, err := tx.Exec(ctx,
		`INSERT INTO radcheck (username, attribute, op, value) VALUES ($1, 'Cleartext-Password', ':=', $2)`,
		username, t.Subscription.Password,
	)
	if err != nil {
		return fmt.Errorf("insert radcheck: %w", err)
	}

	replies := [][2]string{
		{"Mikrotik-Rate-Limit", fmt.Sprintf("%dk/%dk", t.Package.UploadKbps, t.Package.DownloadKbps)},
	}
	if t.Package.StaticIP != "" {
		replies = append(replies, [2]string{"Framed-IP-Address", t.Package.StaticIP})
	}
	if t.Package.DataCapMB > 0 {
		replies = append(replies, [2]string{"Max-Octets", strconv.FormatInt(t.Package.DataCapMB*1024*1024, 10)})
	}
	for _, attr := range replies {
		_, err := tx.Exec(ctx,
			`INSERT INTO radreply (username, attribute, op, value) VALUES ($1, $2, '=', $3)`,
			username, attr[0], attr[1],
		)
		if err != nil {
			return fmt.Errorf("insert radreply: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO radusergroup (username, groupname, priority) VALUES ($1, $2, 1)`,
		username, "wisp-"+t.Package.ID,
	)
	if err != nil {
		return fmt.Errorf("insert radusergroup: %w", err)
	}
	return nil
}
