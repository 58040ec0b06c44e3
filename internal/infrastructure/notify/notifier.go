// Package notify - составной Notifier.
package notify

import (
	"context"
	"log/slog"

	"github.com/mypark/parkwallet/internal/application/ports"
)

// Compile-time check
var _ ports.Notifier = (*Notifier)(nil)

// SMSSender - канал SMS. nil = SMS отключены.
type SMSSender interface {
	Send(ctx context.Context, toPhone, body string) error
}

// EmailSender - канал email. nil = email отключён.
type EmailSender interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// Notifier рассылает уведомление по всем заполненным каналам.
//
// Ошибки провайдеров логируются и не пробрасываются: выписанный saman
// или завершённая сессия не должны откатываться из-за лежащего SMS-шлюза.
type Notifier struct {
	sms    SMSSender
	email  EmailSender
	logger *slog.Logger
}

// NewNotifier создаёт notifier. Любой из каналов может быть nil.
func NewNotifier(sms SMSSender, email EmailSender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{sms: sms, email: email, logger: logger}
}

// Notify отправляет сообщение по всем заполненным каналам.
func (n *Notifier) Notify(ctx context.Context, notification ports.Notification) {
	if n.sms != nil && notification.Phone != "" {
		if err := n.sms.Send(ctx, notification.Phone, notification.Body); err != nil {
			n.logger.WarnContext(ctx, "sms notification failed",
				slog.String("phone", notification.Phone),
				slog.String("error", err.Error()),
			)
		}
	}

	if n.email != nil && notification.Email != "" {
		if err := n.email.Send(ctx, notification.Email, notification.Subject, notification.Body); err != nil {
			n.logger.WarnContext(ctx, "email notification failed",
				slog.String("email", notification.Email),
				slog.String("error", err.Error()),
			)
		}
	}
}
