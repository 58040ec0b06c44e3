// Package ports - PaymentGateway абстрагирует внешний платёжный шлюз.
//
// Двухфазный протокол пополнения:
//  1. CreateOrder - шлюз создаёт ордер, пользователь одобряет оплату
//     по approval-ссылке; кошелёк не тронут.
//  2. CaptureOrder - после одобрения шлюз списывает деньги; только
//     успешный capture приводит к кредиту кошелька.
package ports

import (
	"context"

	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// GatewayOrder - результат создания ордера в шлюзе.
type GatewayOrder struct {
	OrderID     string // Идентификатор ордера, присвоенный шлюзом
	ApprovalURL string // Ссылка, по которой пользователь одобряет оплату
}

// GatewayCapture - результат подтверждения ордера.
type GatewayCapture struct {
	OrderID   string
	Completed bool               // true только при статусе COMPLETED
	Amount    valueobjects.Money // Фактически списанная сумма
}

// PaymentGateway определяет контракт платёжного шлюза (PayPal Orders v2).
//
// Шлюз - внешняя система: любой сетевой сбой оборачивается в
// ExternalServiceError, бюджет времени задаётся через ctx.
type PaymentGateway interface {
	// CreateOrder создаёт ордер на пополнение на заданную сумму.
	CreateOrder(ctx context.Context, amount valueobjects.Money) (*GatewayOrder, error)

	// CaptureOrder подтверждает одобренный ордер.
	// Completed=false означает, что пользователь не завершил оплату;
	// кошелёк в этом случае кредитовать нельзя.
	CaptureOrder(ctx context.Context, orderID string) (*GatewayCapture, error)
}
