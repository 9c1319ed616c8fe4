package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kelasku/kelasku-api/pkg/config"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

// Gateway is the narrow payment contract consumed by the purchase workflow.
// Amounts cross this boundary in the gateway's minor unit (paise).
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*Order, error)
	VerifySignature(orderRef, paymentRef, signature string) bool
}

// Order is the gateway-side order reference returned at creation time.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the Razorpay Orders API over HTTP basic auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
	logger     *zap.Logger
}

// NewClient constructs a gateway client from payment configuration.
func NewClient(cfg config.PaymentConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		logger:     logger,
	}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type gatewayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers an order with the gateway and returns its reference.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*Order, error) {
	if amountMinor <= 0 {
		return nil, appErrors.Clone(appErrors.ErrGateway, "order amount must be positive")
	}

	payload, err := json.Marshal(createOrderRequest{Amount: amountMinor, Currency: currency, Receipt: receipt, Notes: notes})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "failed to encode order payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "failed to build order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "order request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var gwErr gatewayErrorResponse
		if decErr := json.NewDecoder(resp.Body).Decode(&gwErr); decErr == nil && gwErr.Error.Description != "" {
			c.logger.Warn("gateway rejected order",
				zap.Int("status", resp.StatusCode),
				zap.String("code", gwErr.Error.Code),
				zap.String("description", gwErr.Error.Description))
			return nil, appErrors.Clone(appErrors.ErrGateway, fmt.Sprintf("gateway rejected order: %s", gwErr.Error.Description))
		}
		return nil, appErrors.Clone(appErrors.ErrGateway, fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "failed to decode order response")
	}
	return &order, nil
}

// VerifySignature checks the callback signature for an order/payment pair.
// The gateway signs "orderRef|paymentRef" with the key secret (HMAC-SHA256, hex).
func (c *Client) VerifySignature(orderRef, paymentRef, signature string) bool {
	if orderRef == "" || paymentRef == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	_, _ = mac.Write([]byte(orderRef + "|" + paymentRef))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
