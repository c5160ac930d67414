package plugins

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/wisp-core/internal/application/provisioning"
)

var _ provisioning.PaymentInitiator = (*HTTPPaymentGateway)(nil)

// HTTPPaymentGateway inicia cobros de dinero móvil contra una pasarela HTTP
// genérica. El resultado final del cobro llega después, por el callback
// público de pagos; aquí solo se abre la transacción.
type HTTPPaymentGateway struct {
	URL    string
	Token  string
	Client *http.Client
}

// NewHTTPPaymentGateway construye el cliente de la pasarela.
func NewHTTPPaymentGateway(url, token string) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		URL:    url,
		Token:  token,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

type initiateRequest struct {
	Phone      string `json:"phone"`
	Amount     string `json:"amount"`
	InvoiceID  string `json:"invoice_id"`
	CustomerID string `json:"customer_id"`
}

type initiateResponse struct {
	TransactionID string `json:"transaction_id"`
}

// InitiatePayment abre el cobro y devuelve el transaction id con el que la
// pasarela correlacionará el callback.
func (g *HTTPPaymentGateway) InitiatePayment(ctx context.Context, phone string, amount decimal.Decimal, invoiceID, customerID string) (string, error) {
	body, err := json.Marshal(initiateRequest{
		Phone:      phone,
		Amount:     amount.StringFixed(2),
		InvoiceID:  invoiceID,
		CustomerID: customerID,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.Token)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("payment gateway: status %d", resp.StatusCode)
	}
	var out initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("payment gateway: decodificar respuesta: %w", err)
	}
	if out.TransactionID == "" {
		return "", fmt.Errorf("payment gateway: respuesta sin transaction_id")
	}
	return out.TransactionID, nil
}
