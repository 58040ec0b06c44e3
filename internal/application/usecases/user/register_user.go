// Package user - use cases регистрации, входа и управления профилем.
package user

import (
	"context"

	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	"github.com/mypark/parkwallet/internal/domain/errors"
)

// RegisterUserUseCase регистрирует нового пользователя.
//
// Новый пользователь получает роль "user" и пустой кошелёк; plaintext
// пароль живёт ровно до вызова hasher'а.
type RegisterUserUseCase struct {
	userRepo ports.UserRepository
	hasher   ports.PasswordHasher
	uow      ports.UnitOfWork
}

// NewRegisterUserUseCase создаёт новый use case.
func NewRegisterUserUseCase(userRepo ports.UserRepository, hasher ports.PasswordHasher, uow ports.UnitOfWork) *RegisterUserUseCase {
	return &RegisterUserUseCase{userRepo: userRepo, hasher: hasher, uow: uow}
}

// Execute регистрирует пользователя.
func (uc *RegisterUserUseCase) Execute(ctx context.Context, cmd dtos.RegisterUserCommand) (*dtos.UserDTO, error) {
	exists, err := uc.userRepo.ExistsByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewConflict("User", "email is already registered")
	}

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	user, err := entities.NewUser(cmd.Name, cmd.Email, hash, cmd.Phone)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		return uc.userRepo.Save(txCtx, user)
	})
	if err != nil {
		return nil, err
	}

	dto := dtos.ToUserDTO(user)
	return &dto, nil
}
