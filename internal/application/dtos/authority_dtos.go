// Package dtos - LocalAuthority DTOs и отчёты по доходам.
package dtos

import "time"

// ============================================
// Commands (Write операции)
// ============================================

// CreateAuthorityCommand - команда для регистрации authority (admin-only).
type CreateAuthorityCommand struct {
	ActorID  string `json:"actor_id" validate:"required,uuid"`
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Nickname string `json:"nickname,omitempty" validate:"omitempty,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Area     string `json:"area,omitempty"`
	State    string `json:"state,omitempty"`
}

// UpdateAuthorityCommand - команда для обновления реквизитов.
type UpdateAuthorityCommand struct {
	ActorID     string `json:"actor_id" validate:"required,uuid"`
	AuthorityID string `json:"authority_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Nickname    string `json:"nickname,omitempty" validate:"omitempty,max=30"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Area        string `json:"area,omitempty"`
	State       string `json:"state,omitempty"`
}

// ResetIncomeCommand - payout-checkpoint: обнуляет running income.
type ResetIncomeCommand struct {
	ActorID     string `json:"actor_id" validate:"required,uuid"`
	AuthorityID string `json:"authority_id" validate:"required,uuid"`
}

// DeleteAuthorityCommand - команда для удаления authority (admin-only).
type DeleteAuthorityCommand struct {
	ActorID     string `json:"actor_id" validate:"required,uuid"`
	AuthorityID string `json:"authority_id" validate:"required,uuid"`
}

// ============================================
// Queries (Read операции)
// ============================================

// GetAuthorityQuery - запрос authority по ID.
type GetAuthorityQuery struct {
	AuthorityID string `json:"authority_id" validate:"required,uuid"`
}

// ListAuthoritiesQuery - запрос списка authorities.
type ListAuthoritiesQuery struct {
	Offset int `json:"offset" validate:"min=0"`
	Limit  int `json:"limit" validate:"min=1,max=100"`
}

// DailyIncomeQuery - доход authority за календарные сутки.
// Date в формате "2006-01-02"; сутки считаются в UTC.
type DailyIncomeQuery struct {
	AuthorityID string `json:"authority_id" validate:"required,uuid"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

// IncomeReportQuery - платформенный отчёт по кредитам ("in") с
// группировкой по календарным суткам UTC. Границы включительны и
// опциональны.
type IncomeReportQuery struct {
	From string `json:"from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ============================================
// Response DTOs
// ============================================

// AuthorityDTO - представление authority для API.
type AuthorityDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Nickname    string    `json:"nickname,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Area        string    `json:"area,omitempty"`
	State       string    `json:"state,omitempty"`
	Income      string    `json:"income"`       // Running total, decimal string
	TotalIncome string    `json:"total_income"` // Lifetime total
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuthorityListDTO - список authorities.
type AuthorityListDTO struct {
	Authorities []AuthorityDTO `json:"authorities"`
	Offset      int            `json:"offset"`
	Limit       int            `json:"limit"`
}

// DailyIncomeDTO - отчёт по доходу за сутки.
type DailyIncomeDTO struct {
	AuthorityID string `json:"authority_id"`
	Date        string `json:"date"`
	Income      string `json:"income"`
}

// IncomeByDayDTO - одна строка платформенного отчёта.
type IncomeByDayDTO struct {
	Date  string `json:"date"` // "2006-01-02"
	Total string `json:"total"`
}

// IncomeReportDTO - платформенный отчёт по кредитам.
type IncomeReportDTO struct {
	Entries []IncomeByDayDTO `json:"entries"`
}
