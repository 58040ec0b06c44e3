// Package user - запросы: пользователь по ID, список пользователей.
package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GetUserUseCase возвращает пользователя по ID.
type GetUserUseCase struct {
	userRepo ports.UserRepository
}

// NewGetUserUseCase создаёт новый use case.
func NewGetUserUseCase(userRepo ports.UserRepository) *GetUserUseCase {
	return &GetUserUseCase{userRepo: userRepo}
}

// Execute возвращает пользователя.
func (uc *GetUserUseCase) Execute(ctx context.Context, query dtos.GetUserQuery) (*dtos.UserDTO, error) {
	userID, err := uuid.Parse(query.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dto := dtos.ToUserDTO(user)
	return &dto, nil
}

// ListUsersUseCase возвращает страницу пользователей. Admin-only
// на уровне HTTP-роутера.
type ListUsersUseCase struct {
	userRepo ports.UserRepository
}

// NewListUsersUseCase создаёт новый use case.
func NewListUsersUseCase(userRepo ports.UserRepository) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo}
}

// Execute возвращает список пользователей.
func (uc *ListUsersUseCase) Execute(ctx context.Context, query dtos.ListUsersQuery) (*dtos.UserListDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	users, err := uc.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	return &dtos.UserListDTO{
		Users:  dtos.ToUserDTOList(users),
		Offset: offset,
		Limit:  limit,
	}, nil
}
