// Package redislock lock distribuido mínimo sobre Redis (SET NX + token),
// para serializar secciones críticas entre instancias del reconciliador.
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/domain"
)

var _ provisioning.Locker = (*Locker)(nil)

// releaseScript libera solo si el token coincide: un proceso que se pasó del
// TTL no puede soltar el lock que ya tomó otro.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

// Locker lock de escritor único con TTL. Sin espera: si el lock está tomado
// se devuelve ErrLockHeld de inmediato (el ciclo siguiente del scheduler
// reintenta solo).
type Locker struct {
	client *redis.Client
}

// NewLocker construye el locker.
func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// WithLock ejecuta fn con el lock tomado. El TTL protege contra procesos
// muertos con el lock en la mano; fn debe terminar antes del TTL.
func (l *Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return fmt.Errorf("adquirir lock %s: %w", key, err)
	}
	if !ok {
		return domain.ErrLockHeld
	}
	defer func() {
		// Liberación best-effort: si falla, el TTL limpia.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}()

	return fn(ctx)
}
