package mikrotik

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

// TunnelManager garantiza que el túnel hacia un router VPN esté levantado.
// EnsureTunnel debe ser idempotente: con el túnel ya arriba retorna sin hacer
// nada. La implementación concreta depende del protocolo (IPsec/L2TP,
// OpenVPN, WireGuard, PPTP) y suele delegar en el stack del host.
type TunnelManager interface {
	EnsureTunnel(ctx context.Context, router *entity.Router) error
}

var _ provisioning.NetworkSyncer = (*TunneledSyncer)(nil)

// TunneledSyncer decora el sincronizador API asegurando el túnel primero.
// A diferencia de la sincronización (que degrada a warning), un túnel caído
// es falla dura: sin túnel no hay ruta al router y reintentar los comandos
// API solo quema el timeout.
type TunneledSyncer struct {
	inner   *Syncer
	tunnels TunnelManager
	log     *logger.Logger
}

// NewTunneledSyncer construye el decorador.
func NewTunneledSyncer(inner *Syncer, tunnels TunnelManager, log *logger.Logger) *TunneledSyncer {
	return &TunneledSyncer{inner: inner, tunnels: tunnels, log: log}
}

// Provision levanta el túnel y delega.
func (s *TunneledSyncer) Provision(ctx context.Context, t provisioning.Target) error {
	if err := s.ensure(ctx, t.Router); err != nil {
		return err
	}
	return s.inner.Provision(ctx, t)
}

// Deprovision levanta el túnel y delega.
func (s *TunneledSyncer) Deprovision(ctx context.Context, t provisioning.Target) error {
	if err := s.ensure(ctx, t.Router); err != nil {
		return err
	}
	return s.inner.Deprovision(ctx, t)
}

// CollectUsage levanta el túnel y lee el accounting.
func (s *TunneledSyncer) CollectUsage(ctx context.Context, router *entity.Router) (map[string]float64, error) {
	if err := s.ensure(ctx, router); err != nil {
		return nil, err
	}
	return s.inner.CollectUsage(ctx, router)
}

func (s *TunneledSyncer) ensure(ctx context.Context, router *entity.Router) error {
	if s.tunnels == nil {
		return fmt.Errorf("router %s en modo VPN sin gestor de túneles", router.ID)
	}
	if err := s.tunnels.EnsureTunnel(ctx, router); err != nil {
		return fmt.Errorf("túnel %s hacia %s: %w", router.VPNProtocol, router.Host, err)
	}
	return nil
}

// ProbeTunnelManager asume los túneles administrados por el host (systemd,
// strongSwan, wg-quick) y solo verifica que haya ruta: un dial TCP corto al
// puerto API a través del túnel. Si no responde, el túnel está caído.
type ProbeTunnelManager struct {
	Timeout time.Duration
}

// EnsureTunnel prueba conectividad al router por la ruta del túnel.
func (p *ProbeTunnelManager) EnsureTunnel(ctx context.Context, router *entity.Router) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", router.Host, router.APIPort))
	if err != nil {
		return err
	}
	return conn.Close()
}
