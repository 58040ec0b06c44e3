// Package dtos - Parking DTOs: сессии и их жизненный цикл.
package dtos

import "time"

// ============================================
// Commands (Write операции)
// ============================================

// StartSessionCommand - команда для старта парковочной сессии.
// Стоимость списывается с кошелька немедленно, в той же транзакции.
// StartingTime (RFC 3339) задаёт начало сессии; пустое значение - now.
type StartSessionCommand struct {
	UserID          string `json:"user_id" validate:"required,uuid"`
	VehicleID       string `json:"vehicle_id" validate:"required,uuid"`
	AuthorityID     string `json:"authority_id" validate:"required,uuid"`
	StartingTime    string `json:"starting_time" validate:"omitempty"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1,max=1440"`
	Price           string `json:"price" validate:"required"` // Decimal string: "6.50"
}

// ExtendSessionCommand - команда для продления ongoing-сессии.
type ExtendSessionCommand struct {
	UserID            string `json:"user_id" validate:"required,uuid"`
	SessionID         string `json:"session_id" validate:"required,uuid"`
	AdditionalMinutes int    `json:"additional_minutes" validate:"required,min=1,max=1440"`
	Price             string `json:"price" validate:"required"`
}

// TerminateSessionCommand - команда для досрочного завершения.
// Повторное завершение - no-op, не ошибка.
type TerminateSessionCommand struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	SessionID string `json:"session_id" validate:"required,uuid"`
}

// ============================================
// Queries (Read операции)
// ============================================

// GetSessionQuery - запрос сессии по ID.
type GetSessionQuery struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

// ListSessionsQuery - запрос сессий пользователя.
// Status фильтрует список; пустое значение - все сессии.
type ListSessionsQuery struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Status string `json:"status" validate:"omitempty,session_status"`
	Offset int    `json:"offset" validate:"min=0"`
	Limit  int    `json:"limit" validate:"min=1,max=100"`
}

// ============================================
// Response DTOs
// ============================================

// SessionDTO - представление сессии для API.
// EndTime всегда равен StartingTime + Duration.
type SessionDTO struct {
	ID              string    `json:"id"`
	VehicleID       string    `json:"vehicle_id"`
	AuthorityID     string    `json:"authority_id"`
	CreatorID       string    `json:"creator_id"`
	Status          string    `json:"status"` // "ongoing" / "complete"
	StartingTime    time.Time `json:"starting_time"`
	DurationMinutes int       `json:"duration_minutes"`
	EndTime         time.Time `json:"end_time"`
}

// SessionStartedDTO - результат старта: сессия + списание.
type SessionStartedDTO struct {
	Session     SessionDTO     `json:"session"`
	Transaction TransactionDTO `json:"transaction"`
	Balance     string         `json:"balance"`
}

// SessionListDTO - страница сессий пользователя.
type SessionListDTO struct {
	Sessions []SessionDTO `json:"sessions"`
	Offset   int          `json:"offset"`
	Limit    int          `json:"limit"`
}
