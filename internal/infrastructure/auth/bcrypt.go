// Package auth реализует ports.PasswordHasher и ports.TokenService.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mypark/parkwallet/internal/application/ports"
)

// Compile-time check
var _ ports.PasswordHasher = (*BcryptHasher)(nil)

// BcryptHasher хэширует пароли через bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher создаёт hasher с заданной стоимостью.
// cost <= 0 означает bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash возвращает bcrypt-хэш пароля.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare сверяет пароль с хэшем.
func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
