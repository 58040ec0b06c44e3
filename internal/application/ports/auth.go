// Package ports - аутентификация: пароли и bearer-токены.
package ports

import (
	"time"

	"github.com/mypark/parkwallet/internal/domain/entities"
)

// PasswordHasher определяет контракт для хэширования паролей.
// Реализация - bcrypt; plaintext-пароль нигде не сохраняется.
type PasswordHasher interface {
	// Hash возвращает хэш пароля.
	Hash(password string) (string, error)

	// Compare сверяет пароль с хэшем. Возвращает error при несовпадении.
	Compare(hash, password string) error
}

// TokenClaims - данные, зашитые в access-токен.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// TokenService определяет контракт для выпуска и проверки JWT.
type TokenService interface {
	// Generate выпускает подписанный токен для пользователя.
	Generate(user *entities.User) (token string, expiresAt time.Time, err error)

	// Validate проверяет подпись и срок действия токена.
	Validate(token string) (*TokenClaims, error)
}
