package plugins

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
	"github.com/tu-usuario/wisp-core/pkg/logger"
)

var (
	_ provisioning.Messenger = (*LogMessenger)(nil)
	_ provisioning.Messenger = (*HTTPSMSMessenger)(nil)
)

// LogMessenger implementación por defecto: escribe el mensaje al log. Útil en
// desarrollo y como fallback cuando no hay gateway SMS configurado.
type LogMessenger struct {
	Log *logger.Logger
}

// Send registra el mensaje en el log.
func (m *LogMessenger) Send(_ context.Context, to, message string) error {
	m.Log.Info().Str("to", to).Str("message", message).Msg("sms (log)")
	return nil
}

// HTTPSMSMessenger envía SMS a través de un gateway HTTP genérico
// (POST JSON con bearer token).
type HTTPSMSMessenger struct {
	URL    string
	Token  string
	Client *http.Client
}

// NewHTTPSMSMessenger construye el cliente del gateway.
func NewHTTPSMSMessenger(url, token string) *HTTPSMSMessenger {
	return &HTTPSMSMessenger{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send publica el mensaje en el gateway.
func (m *HTTPSMSMessenger) Send(ctx context.Context, to, message string) error {
	body, err := json.Marshal(map[string]string{"to": to, "message": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.Token)

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway: status %d", resp.StatusCode)
	}
	return nil
}
