// Package user - Authenticate: вход по email/паролю, выдача JWT.
package user

import (
	"context"

	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/errors"
)

// AuthenticateUseCase проверяет учётные данные и выпускает токен.
//
// Неизвестный email и неверный пароль сводятся к одному
// ErrInvalidCredentials: ответ не должен раскрывать, существует ли
// аккаунт.
type AuthenticateUseCase struct {
	userRepo ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
}

// NewAuthenticateUseCase создаёт новый use case.
func NewAuthenticateUseCase(userRepo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService) *AuthenticateUseCase {
	return &AuthenticateUseCase{userRepo: userRepo, hasher: hasher, tokens: tokens}
}

// Execute выполняет вход.
func (uc *AuthenticateUseCase) Execute(ctx context.Context, cmd dtos.AuthenticateCommand) (*dtos.AuthResultDTO, error) {
	user, err := uc.userRepo.FindByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := uc.hasher.Compare(user.PasswordHash(), cmd.Password); err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	token, expiresAt, err := uc.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	return &dtos.AuthResultDTO{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dtos.ToUserDTO(user),
	}, nil
}
