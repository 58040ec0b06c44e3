// Package dtos - Wallet DTOs: пополнение через шлюз и журнал транзакций.
package dtos

import "time"

// ============================================
// Commands (Write операции)
// ============================================

// InitiateTopUpCommand - команда для создания ордера на пополнение.
type InitiateTopUpCommand struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Amount string `json:"amount" validate:"required"` // Decimal string: "10.00"
}

// CaptureTopUpCommand - команда для подтверждения одобренного ордера.
// Идемпотентна: повторный capture того же ордера возвращает исходную
// транзакцию и не трогает кошелёк.
type CaptureTopUpCommand struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	OrderID string `json:"order_id" validate:"required"`
}

// ============================================
// Queries (Read операции)
// ============================================

// GetWalletQuery - запрос баланса кошелька.
type GetWalletQuery struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// ListTransactionsQuery - запрос журнала пользователя.
// From/To задают включительный диапазон дат ("2006-01-02", UTC);
// пустая граница не ограничивает выборку.
type ListTransactionsQuery struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	From   string `json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To     string `json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Offset int    `json:"offset" validate:"min=0"`
	Limit  int    `json:"limit" validate:"min=1,max=100"`
}

// ============================================
// Response DTOs
// ============================================

// WalletDTO - баланс кошелька.
type WalletDTO struct {
	UserID   string `json:"user_id"`
	Balance  string `json:"balance"` // Decimal string: "10.00"
	Currency string `json:"currency"`
}

// TopUpInitiatedDTO - результат создания ордера.
// Кошелёк ещё не пополнен; пользователь идёт по approval-ссылке.
type TopUpInitiatedDTO struct {
	OrderID     string `json:"order_id"`
	ApprovalURL string `json:"approval_url"`
	Amount      string `json:"amount"`
}

// TopUpCapturedDTO - результат подтверждения ордера.
type TopUpCapturedDTO struct {
	Transaction TransactionDTO `json:"transaction"`
	Balance     string         `json:"balance"`
	// AlreadyCaptured=true означает, что это был повторный capture:
	// возвращена исходная транзакция, кошелёк не изменился.
	AlreadyCaptured bool `json:"already_captured"`
}

// TransactionDTO - одна запись журнала кошелька.
type TransactionDTO struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`     // "Top Up", "Parking", "Saman"
	Direction  string    `json:"direction"` // "in" / "out"
	Amount     string    `json:"amount"`
	Note       string    `json:"note"`
	OrderID    string    `json:"order_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TransactionListDTO - страница журнала.
type TransactionListDTO struct {
	Transactions []TransactionDTO `json:"transactions"`
	Offset       int              `json:"offset"`
	Limit        int              `json:"limit"`
}
