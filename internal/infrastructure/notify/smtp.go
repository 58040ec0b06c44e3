// Package notify - SMTP-почта.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
)

// SMTPConfig - параметры SMTP-сервера.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer отправляет email через plain SMTP с AUTH.
type SMTPMailer struct {
	cfg SMTPConfig
	// send подменяется в тестах; по умолчанию smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer создаёт mailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// Send отправляет одно письмо.
func (m *SMTPMailer) Send(ctx context.Context, toEmail, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", toEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{toEmail}, []byte(msg.String())); err != nil {
		return domainErrors.NewExternalServiceError("smtp", "send failed", err)
	}

	return nil
}
