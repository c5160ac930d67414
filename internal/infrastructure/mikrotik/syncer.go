package mikrotik

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-routeros/routeros/v3"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/internal/domain/billing"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

var (
	_ provisioning.NetworkSyncer = (*Syncer)(nil)
	_ provisioning.UsageSource   = (*Syncer)(nil)
)

// Syncer aplica credenciales y límites en routers MikroTik por la API. Todas
// las operaciones son upserts (buscar por nombre, set o add), de modo que
// re-aplicar una suscripción ya aprovisionada es un no-op seguro.
type Syncer struct {
	dialer *Dialer
	log    *logger.Logger
}

// NewSyncer construye el sincronizador API.
func NewSyncer(dialer *Dialer, log *logger.Logger) *Syncer {
	return &Syncer{dialer: dialer, log: log}
}

// Provision empuja la credencial de la suscripción según su tipo de conexión.
func (s *Syncer) Provision(ctx context.Context, t provisioning.Target) error {
	client, opCtx, cancel, err := s.dialer.Open(ctx, t.Router)
	if err != nil {
		return err
	}
	defer cancel()
	defer client.Close()

	switch t.Subscription.ConnectionType {
	case entity.ConnectionHotspot:
		return s.provisionHotspot(opCtx, client, t)
	case entity.ConnectionPPPoE:
		return s.provisionPPP(opCtx, client, t, "pppoe")
	case entity.ConnectionVPN:
		return s.provisionPPP(opCtx, client, t, pppServiceFor(t.Router.VPNProtocol))
	case entity.ConnectionStatic:
		return s.provisionStatic(opCtx, client, t)
	default:
		return fmt.Errorf("tipo de conexión %q no aprovisionable", t.Subscription.ConnectionType)
	}
}

// Deprovision retira la credencial y tumba la sesión activa si la hay.
func (s *Syncer) Deprovision(ctx context.Context, t provisioning.Target) error {
	client, opCtx, cancel, err := s.dialer.Open(ctx, t.Router)
	if err != nil {
		return err
	}
	defer cancel()
	defer client.Close()

	username := t.Subscription.Username
	switch t.Subscription.ConnectionType {
	case entity.ConnectionHotspot:
		if err := removeByName(opCtx, client, "/ip/hotspot/user", username); err != nil {
			return err
		}
		// La sesión activa no cae sola al borrar el usuario.
		return removeActive(opCtx, client, "/ip/hotspot/active", "?user="+username)
	case entity.ConnectionPPPoE, entity.ConnectionVPN:
		if err := removeByName(opCtx, client, "/ppp/secret", username); err != nil {
			return err
		}
		return removeActive(opCtx, client, "/ppp/active", "?name="+username)
	case entity.ConnectionStatic:
		return removeByName(opCtx, client, "/queue/simple", username)
	default:
		return nil
	}
}

func (s *Syncer) provisionHotspot(ctx context.Context, client *routeros.Client, t provisioning.Target) error {
	profile, err := s.ensureProfile(ctx, client, "/ip/hotspot/user/profile", t.Package)
	if err != nil {
		return err
	}
	attrs := map[string]string{
		"password": t.Subscription.Password,
		"profile":  profile,
		"comment":  "wisp:" + t.Subscription.ID,
	}
	if uptime := formatUptime(t.Package); uptime != "" {
		attrs["limit-uptime"] = uptime
	}
	if t.Package.DataCapMB > 0 {
		attrs["limit-bytes-total"] = strconv.FormatInt(t.Package.DataCapMB*1024*1024, 10)
	}
	return upsertByName(ctx, client, "/ip/hotspot/user", t.Subscription.Username, attrs)
}

func (s *Syncer) provisionPPP(ctx context.Context, client *routeros.Client, t provisioning.Target, service string) error {
	profile, err := s.ensureProfile(ctx, client, "/ppp/profile", t.Package)
	if err != nil {
		return err
	}
	attrs := map[string]string{
		"password": t.Subscription.Password,
		"service":  service,
		"profile":  profile,
		"comment":  "wisp:" + t.Subscription.ID,
	}
	if t.Package.StaticIP != "" {
		attrs["remote-address"] = t.Package.StaticIP
	}
	return upsertByName(ctx, client, "/ppp/secret", t.Subscription.Username, attrs)
}

// provisionStatic limita el ancho de banda de la IP fija con una simple queue
// a nombre del username de la suscripción.
func (s *Syncer) provisionStatic(ctx context.Context, client *routeros.Client, t provisioning.Target) error {
	if t.Package.StaticIP == "" {
		return fmt.Errorf("plan STATIC sin IP fija (paquete %s)", t.Package.ID)
	}
	return upsertByName(ctx, client, "/queue/simple", t.Subscription.Username, map[string]string{
		"target":    t.Package.StaticIP + "/32",
		"max-limit": rateLimit(t.Package),
		"comment":   "wisp:" + t.Subscription.ID,
	})
}

// ensureProfile garantiza el perfil de velocidades del paquete y devuelve su
// nombre. Un perfil por paquete: cambiarle la velocidad a un plan actualiza a
// todos sus abonados en el siguiente resync.
func (s *Syncer) ensureProfile(ctx context.Context, client *routeros.Client, path string, pkg *entity.Package) (string, error) {
	name := "wisp-" + pkg.ID
	err := upsertByName(ctx, client, path, name, map[string]string{
		"rate-limit": rateLimit(pkg),
	})
	if err != nil {
		return "", fmt.Errorf("perfil %s: %w", name, err)
	}
	return name, nil
}

// CollectUsage lee el accounting del router: bytes por username de usuarios
// hotspot y simple queues, convertidos a MB.
func (s *Syncer) CollectUsage(ctx context.Context, router *entity.Router) (map[string]float64, error) {
	client, opCtx, cancel, err := s.dialer.Open(ctx, router)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer client.Close()

	usage := make(map[string]float64)

	reply, err := client.RunContext(opCtx, "/ip/hotspot/user/print", "=.proplist=name,bytes-in,bytes-out")
	if err == nil {
		for _, re := range reply.Re {
			in, _ := strconv.ParseFloat(re.Map["bytes-in"], 64)
			out, _ := strconv.ParseFloat(re.Map["bytes-out"], 64)
			if name := re.Map["name"]; name != "" {
				usage[name] = (in + out) / (1024 * 1024)
			}
		}
	}

	reply, err = client.RunContext(opCtx, "/queue/simple/print", "=.proplist=name,bytes")
	if err == nil {
		for _, re := range reply.Re {
			name := re.Map["name"]
			if name == "" || strings.HasPrefix(name, "wisp-") {
				continue
			}
			// bytes viene como "subida/bajada".
			var total float64
			for _, part := range strings.Split(re.Map["bytes"], "/") {
				n, _ := strconv.ParseFloat(part, 64)
				total += n
			}
			if _, seen := usage[name]; !seen && total > 0 {
				usage[name] = total / (1024 * 1024)
			}
		}
	}
	return usage, nil
}

// ---- helpers API ----

// findID busca el .id de un ítem por su campo name.
func findID(ctx context.Context, client *routeros.Client, path, name string) (string, error) {
	reply, err := client.RunContext(ctx, path+"/print", "?name="+name, "=.proplist=.id")
	if err != nil {
		return "", fmt.Errorf("%s/print: %w", path, err)
	}
	if len(reply.Re) == 0 {
		return "", nil
	}
	return reply.Re[0].Map[".id"], nil
}

// upsertByName aplica attrs al ítem con ese name, creándolo si no existe.
func upsertByName(ctx context.Context, client *routeros.Client, path, name string, attrs map[string]string) error {
	id, err := findID(ctx, client, path, name)
	if err != nil {
		return err
	}
	words := make([]string, 0, len(attrs)+2)
	if id == "" {
		words = append(words, path+"/add", "=name="+name)
	} else {
		words = append(words, path+"/set", "=.id="+id)
	}
	for k, v := range attrs {
		words = append(words, "="+k+"="+v)
	}
	if _, err := client.RunContext(ctx, words...); err != nil {
		return fmt.Errorf("%s upsert %s: %w", path, name, err)
	}
	return nil
}

// removeByName elimina el ítem si existe; ausente es éxito (idempotencia).
func removeByName(ctx context.Context, client *routeros.Client, path, name string) error {
	id, err := findID(ctx, client, path, name)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	if _, err := client.RunContext(ctx, path+"/remove", "=.id="+id); err != nil {
		return fmt.Errorf("%s remove %s: %w", path, name, err)
	}
	return nil
}

// removeActive tumba las sesiones activas que matcheen el filtro dado.
func removeActive(ctx context.Context, client *routeros.Client, path, filter string) error {
	reply, err := client.RunContext(ctx, path+"/print", filter, "=.proplist=.id")
	if err != nil {
		return fmt.Errorf("%s/print: %w", path, err)
	}
	for _, re := range reply.Re {
		if id := re.Map[".id"]; id != "" {
			if _, err := client.RunContext(ctx, path+"/remove", "=.id="+id); err != nil {
				return fmt.Errorf("%s remove: %w", path, err)
			}
		}
	}
	return nil
}

// rateLimit arma el límite MikroTik "subida/bajada" en kbps.
func rateLimit(pkg *entity.Package) string {
	return fmt.Sprintf("%dk/%dk", pkg.UploadKbps, pkg.DownloadKbps)
}

// formatUptime convierte la duración del paquete al formato de RouterOS
// (p.ej. "3h", "7d", "1d2h30m").
func formatUptime(pkg *entity.Package) string {
	d := billing.PackageDuration(pkg)
	if d <= 0 {
		return ""
	}
	var b strings.Builder
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		fmt.Fprintf(&b, "%dd", days)
	}
	if hours > 0 {
		fmt.Fprintf(&b, "%dh", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dm", minutes)
	}
	return b.String()
}

func pppServiceFor(vpnProtocol string) string {
	switch vpnProtocol {
	case entity.VPNProtoOpenVPN:
		return "ovpn"
	case entity.VPNProtoPPTP:
		return "pptp"
	case entity.VPNProtoIPsecL2TP:
		return "l2tp"
	default:
		return "any"
	}
}
