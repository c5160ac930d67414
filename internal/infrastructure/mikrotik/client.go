// Package mikrotik sincronizador de credenciales sobre la API binaria de
// RouterOS, para routers en modo API y (vía túnel) en modo VPN.
package mikrotik

import (
	"context"
	"fmt"
	"time"

	"github.com/go-routeros/routeros/v3"
	"github.com/sethvargo/go-retry"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

// DialConfig parámetros de conexión a la API de RouterOS.
type DialConfig struct {
	// Timeout presupuesto total por operación de sincronización (10-15s en
	// producción; los equipos de acceso cuelgan más de lo que fallan).
	Timeout time.Duration
	// Retries reintentos de dial con backoff constante antes de rendirse.
	Retries uint64
}

// Dialer abre sesiones API contra routers MikroTik con reintentos.
type Dialer struct {
	cfg DialConfig
}

// NewDialer construye el dialer.
func NewDialer(cfg DialConfig) *Dialer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retries == 0 {
		cfg.Retries = 2
	}
	return &Dialer{cfg: cfg}
}

// Open conecta con la API del router. El contexto que devuelve carga el
// timeout de la operación; el llamador debe ejecutar cancel y Close.
func (d *Dialer) Open(ctx context.Context, r *entity.Router) (*routeros.Client, context.Context, context.CancelFunc, error) {
	opCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)

	addr := fmt.Sprintf("%s:%d", r.Host, r.APIPort)
	var client *routeros.Client
	err := retry.Do(opCtx, retry.WithMaxRetries(d.cfg.Retries, retry.NewConstant(time.Second)), func(ctx context.Context) error {
		c, err := routeros.DialContext(ctx, addr, r.Username, r.Password)
		if err != nil {
			return retry.RetryableError(err)
		}
		client = c
		return nil
	})
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return client, opCtx, cancel, nil
}
