// Package dtos определяет Data Transfer Objects для передачи данных между слоями.
//
// Почему нужны DTOs? (не использовать domain entities напрямую)
// 1. Разделение concerns: Domain entities могут меняться независимо от API
// 2. Безопасность: Не раскрываем внутренние поля (password hashes)
// 3. Версионирование: Разные версии API могут использовать разные DTOs
//
// Pattern: Data Transfer Object
package dtos

import "time"

// ============================================
// Commands (Write операции - изменяют состояние)
// ============================================

// RegisterUserCommand - команда для регистрации пользователя.
type RegisterUserCommand struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"required,e164"`
}

// AuthenticateCommand - команда для входа.
type AuthenticateCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileCommand - команда для обновления профиля.
type UpdateProfileCommand struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Name   string `json:"name" validate:"required,min=2,max=100"`
	Phone  string `json:"phone" validate:"required,e164"`
}

// AssignRoleCommand - команда для назначения роли (admin-only).
type AssignRoleCommand struct {
	ActorID string `json:"actor_id" validate:"required,uuid"`
	UserID  string `json:"user_id" validate:"required,uuid"`
	Role    string `json:"role" validate:"required,oneof=user admin traffic_warden"`
}

// SetDefaultVehicleCommand - команда для выбора машины по умолчанию.
type SetDefaultVehicleCommand struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	VehicleID string `json:"vehicle_id" validate:"required,uuid"`
}

// ============================================
// Queries (Read операции)
// ============================================

// GetUserQuery - запрос пользователя по ID.
type GetUserQuery struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// ListUsersQuery - запрос списка пользователей.
type ListUsersQuery struct {
	Offset int `json:"offset" validate:"min=0"`
	Limit  int `json:"limit" validate:"min=1,max=100"`
}

// ============================================
// Response DTOs
// ============================================

// UserDTO - представление пользователя для API.
// Кошелёк отдаётся как decimal-строка, minor units наружу не утекают.
type UserDTO struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Role             string    `json:"role"`
	WalletBalance    string    `json:"wallet_balance"` // Decimal string: "10.00"
	DefaultVehicleID *string   `json:"default_vehicle_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserListDTO - результат для списка пользователей.
type UserListDTO struct {
	Users  []UserDTO `json:"users"`
	Offset int       `json:"offset"`
	Limit  int       `json:"limit"`
}

// AuthResultDTO - результат успешного входа.
type AuthResultDTO struct {
	Token     string    `json:"token"` // JWT bearer token
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}
