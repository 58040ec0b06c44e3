// Package notify реализует ports.Notifier: SMS через Twilio REST и
// email через SMTP. Уведомления - best effort: ни один сбой провайдера
// не должен откатить бизнес-операцию.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
)

// TwilioConfig - параметры Twilio-аккаунта.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string // Номер отправителя в E.164
	BaseURL    string // Переопределяется в тестах; пусто = api.twilio.com
	Timeout    time.Duration
}

// TwilioSMS отправляет SMS через Twilio Messages API.
type TwilioSMS struct {
	cfg        TwilioConfig
	httpClient *http.Client
}

// NewTwilioSMS создаёт SMS-клиент.
func NewTwilioSMS(cfg TwilioConfig) *TwilioSMS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TwilioSMS{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send отправляет одно SMS.
func (t *TwilioSMS) Send(ctx context.Context, toPhone, body string) error {
	form := url.Values{}
	form.Set("From", t.cfg.From)
	form.Set("To", toPhone)
	form.Set("Body", body)

	endpoint := t.cfg.BaseURL + "/2010-04-01/Accounts/" + t.cfg.AccountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domainErrors.NewExternalServiceError("twilio", "failed to build request", err)
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return domainErrors.NewExternalServiceError("twilio", "send failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domainErrors.NewExternalServiceError("twilio",
			fmt.Sprintf("send returned %d: %s", resp.StatusCode, string(raw)), nil)
	}

	return nil
}
