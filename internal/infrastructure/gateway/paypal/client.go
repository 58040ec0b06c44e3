// Package paypal реализует ports.PaymentGateway поверх PayPal Orders v2 API.
//
// Двухфазный протокол пополнения:
//  1. CreateOrder (intent=CAPTURE) выдаёт approval-ссылку; деньги не тронуты.
//  2. CaptureOrder после одобрения; кошелёк кредитуется только при
//     статусе COMPLETED, и суммой, которую шлюз фактически списал.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mypark/parkwallet/internal/application/ports"
	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// Compile-time check
var _ ports.PaymentGateway = (*Client)(nil)

const (
	serviceName  = "paypal"
	currencyCode = "MYR"

	// Токен живёт ~9 часов; обновляем с запасом до истечения.
	tokenExpiryMargin = 60 * time.Second
)

// Config - настройки подключения к PayPal.
type Config struct {
	BaseURL      string // https://api-m.sandbox.paypal.com или live
	ClientID     string
	ClientSecret string
	ReturnURL    string // Куда PayPal вернёт пользователя после одобрения
	CancelURL    string
	Timeout      time.Duration
}

// Client - HTTP-клиент PayPal Orders v2 с кэшированием OAuth-токена.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient создаёт клиент PayPal.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ============================================
// OAuth
// ============================================

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// token возвращает действующий access-токен, обновляя его при необходимости.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpiryMargin)) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", domainErrors.NewExternalServiceError(serviceName, "failed to build token request", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domainErrors.NewExternalServiceError(serviceName, "token request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domainErrors.NewExternalServiceError(serviceName,
			fmt.Sprintf("token request returned %d", resp.StatusCode), readAPIError(resp.Body))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", domainErrors.NewExternalServiceError(serviceName, "failed to decode token response", err)
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// ============================================
// Orders v2
// ============================================

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount   orderAmount `json:"amount"`
	Payments *struct {
		Captures []struct {
			Amount orderAmount `json:"amount"`
		} `json:"captures"`
	} `json:"payments,omitempty"`
}

type orderLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type orderResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Links         []orderLink    `json:"links"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

// CreateOrder создаёт ордер на пополнение на заданную сумму.
func (c *Client) CreateOrder(ctx context.Context, amount valueobjects.Money) (*ports.GatewayOrder, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"amount": orderAmount{
					CurrencyCode: currencyCode,
					Value:        amount.Decimal(),
				},
				"description":         "ParkWallet top-up",
				"shipping_preference": "NO_SHIPPING",
			},
		},
		"application_context": map[string]string{
			"return_url": c.cfg.ReturnURL,
			"cancel_url": c.cfg.CancelURL,
		},
	}

	var order orderResponse
	if err := c.post(ctx, "/v2/checkout/orders", body, &order); err != nil {
		return nil, err
	}

	approvalURL := ""
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approvalURL = link.Href
			break
		}
	}
	if order.ID == "" || approvalURL == "" {
		return nil, domainErrors.NewExternalServiceError(serviceName, "order response missing id or approval link", nil)
	}

	return &ports.GatewayOrder{
		OrderID:     order.ID,
		ApprovalURL: approvalURL,
	}, nil
}

// CaptureOrder подтверждает одобренный ордер.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*ports.GatewayCapture, error) {
	var order orderResponse
	if err := c.post(ctx, "/v2/checkout/orders/"+url.PathEscape(orderID)+"/capture", nil, &order); err != nil {
		return nil, err
	}

	if order.Status != "COMPLETED" {
		return &ports.GatewayCapture{OrderID: orderID, Completed: false}, nil
	}

	// Сумма берётся из фактического capture, не из запрошенной: шлюз
	// является источником истины о том, сколько денег реально пришло.
	captured := capturedValue(order)
	if captured == "" {
		return nil, domainErrors.NewExternalServiceError(serviceName, "capture response missing amount", nil)
	}

	amount, err := valueobjects.NewMoney(captured)
	if err != nil {
		return nil, domainErrors.NewExternalServiceError(serviceName,
			fmt.Sprintf("capture returned unparsable amount %q", captured), err)
	}

	return &ports.GatewayCapture{
		OrderID:   orderID,
		Completed: true,
		Amount:    amount,
	}, nil
}

func capturedValue(order orderResponse) string {
	if len(order.PurchaseUnits) == 0 {
		return ""
	}
	unit := order.PurchaseUnits[0]
	if unit.Payments == nil || len(unit.Payments.Captures) == 0 {
		return ""
	}
	return unit.Payments.Captures[0].Amount.Value
}

// post выполняет авторизованный POST и декодирует ответ.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	accessToken, err := c.token(ctx)
	if err != nil {
		return err
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return domainErrors.NewExternalServiceError(serviceName, "failed to encode request", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, payload)
	if err != nil {
		return domainErrors.NewExternalServiceError(serviceName, "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainErrors.NewExternalServiceError(serviceName, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domainErrors.NewExternalServiceError(serviceName,
			fmt.Sprintf("%s returned %d", path, resp.StatusCode), readAPIError(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domainErrors.NewExternalServiceError(serviceName, "failed to decode response", err)
		}
	}

	return nil
}

// readAPIError вытаскивает тело ошибки для диагностики, обрезая до разумного.
func readAPIError(body io.Reader) error {
	raw, err := io.ReadAll(io.LimitReader(body, 2048))
	if err != nil || len(raw) == 0 {
		return nil
	}
	return fmt.Errorf("api error: %s", string(raw))
}
