// Package dtos - Saman DTOs: выписка и оплата штрафов.
package dtos

import "time"

// ============================================
// Commands (Write операции)
// ============================================

// IssueSamanCommand - команда для выписки штрафа (warden/admin only).
// Машина идентифицируется тройкой, как её видит warden на улице.
// Пустой Price означает фиксированный тариф по умолчанию.
type IssueSamanCommand struct {
	ActorID      string `json:"actor_id" validate:"required,uuid"`
	LicensePlate string `json:"license_plate" validate:"required"`
	Brand        string `json:"brand" validate:"required"`
	Color        string `json:"color" validate:"required"`
	AuthorityID  string `json:"authority_id" validate:"required,uuid"`
	Offense      string `json:"offense" validate:"required,min=3,max=500"`
	Price        string `json:"price,omitempty"` // Decimal string, опционально
}

// PaySamanCommand - команда для оплаты штрафа из кошелька.
type PaySamanCommand struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	SamanID string `json:"saman_id" validate:"required,uuid"`
}

// ============================================
// Queries (Read операции)
// ============================================

// GetSamanQuery - запрос штрафа по ID.
type GetSamanQuery struct {
	SamanID string `json:"saman_id" validate:"required,uuid"`
}

// FineHistoryQuery - история штрафов по всем машинам пользователя.
type FineHistoryQuery struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Offset int    `json:"offset" validate:"min=0"`
	Limit  int    `json:"limit" validate:"min=1,max=100"`
}

// ============================================
// Response DTOs
// ============================================

// SamanDTO - представление штрафа для API.
type SamanDTO struct {
	ID          string    `json:"id"`
	Offense     string    `json:"offense"`
	Price       string    `json:"price"`
	Status      string    `json:"status"` // "unpaid" / "paid"
	VehicleID   string    `json:"vehicle_id"`
	AuthorityID string    `json:"authority_id"`
	IssuedAt    time.Time `json:"issued_at"`
}

// SamanPaidDTO - результат оплаты: штраф + списание.
type SamanPaidDTO struct {
	Saman       SamanDTO       `json:"saman"`
	Transaction TransactionDTO `json:"transaction"`
	Balance     string         `json:"balance"`
}

// SamanListDTO - страница штрафов.
type SamanListDTO struct {
	Samans []SamanDTO `json:"samans"`
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
}
