// Package user - профиль: обновление, роль, машина по умолчанию.
package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	"github.com/mypark/parkwallet/internal/domain/errors"
)

// UpdateProfileUseCase обновляет имя и телефон пользователя.
type UpdateProfileUseCase struct {
	userRepo ports.UserRepository
	uow      ports.UnitOfWork
}

// NewUpdateProfileUseCase создаёт новый use case.
func NewUpdateProfileUseCase(userRepo ports.UserRepository, uow ports.UnitOfWork) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{userRepo: userRepo, uow: uow}
}

// Execute обновляет профиль.
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, cmd dtos.UpdateProfileCommand) (*dtos.UserDTO, error) {
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	var result *dtos.UserDTO
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		user, err := uc.userRepo.FindByID(txCtx, userID)
		if err != nil {
			return err
		}
		if err := user.UpdateProfile(cmd.Name, cmd.Phone); err != nil {
			return err
		}
		if err := uc.userRepo.Save(txCtx, user); err != nil {
			return err
		}
		dto := dtos.ToUserDTO(user)
		result = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AssignRoleUseCase меняет роль пользователя. Только admin.
type AssignRoleUseCase struct {
	userRepo ports.UserRepository
	uow      ports.UnitOfWork
}

// NewAssignRoleUseCase создаёт новый use case.
func NewAssignRoleUseCase(userRepo ports.UserRepository, uow ports.UnitOfWork) *AssignRoleUseCase {
	return &AssignRoleUseCase{userRepo: userRepo, uow: uow}
}

// Execute назначает роль.
func (uc *AssignRoleUseCase) Execute(ctx context.Context, cmd dtos.AssignRoleCommand) (*dtos.UserDTO, error) {
	actorID, err := uuid.Parse(cmd.ActorID)
	if err != nil {
		return nil, errors.ValidationError{Field: "actor_id", Message: "invalid UUID"}
	}
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	actor, err := uc.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role() != entities.RoleAdmin {
		return nil, errors.ErrNotAuthorized
	}

	var result *dtos.UserDTO
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		user, err := uc.userRepo.FindByID(txCtx, userID)
		if err != nil {
			return err
		}
		if err := user.AssignRole(entities.Role(cmd.Role)); err != nil {
			return err
		}
		if err := uc.userRepo.Save(txCtx, user); err != nil {
			return err
		}
		dto := dtos.ToUserDTO(user)
		result = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetDefaultVehicleUseCase выбирает машину по умолчанию.
// Машина должна принадлежать пользователю.
type SetDefaultVehicleUseCase struct {
	userRepo    ports.UserRepository
	vehicleRepo ports.VehicleRepository
	uow         ports.UnitOfWork
}

// NewSetDefaultVehicleUseCase создаёт новый use case.
func NewSetDefaultVehicleUseCase(userRepo ports.UserRepository, vehicleRepo ports.VehicleRepository, uow ports.UnitOfWork) *SetDefaultVehicleUseCase {
	return &SetDefaultVehicleUseCase{userRepo: userRepo, vehicleRepo: vehicleRepo, uow: uow}
}

// Execute выбирает машину по умолчанию.
func (uc *SetDefaultVehicleUseCase) Execute(ctx context.Context, cmd dtos.SetDefaultVehicleCommand) (*dtos.UserDTO, error) {
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}
	vehicleID, err := uuid.Parse(cmd.VehicleID)
	if err != nil {
		return nil, errors.ValidationError{Field: "vehicle_id", Message: "invalid UUID"}
	}

	var result *dtos.UserDTO
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		vehicle, err := uc.vehicleRepo.FindByID(txCtx, vehicleID)
		if err != nil {
			return err
		}
		if !vehicle.IsOwnedBy(userID) {
			return errors.ErrVehicleNotFound
		}

		user, err := uc.userRepo.FindByID(txCtx, userID)
		if err != nil {
			return err
		}
		user.SetDefaultVehicle(vehicleID)
		if err := uc.userRepo.Save(txCtx, user); err != nil {
			return err
		}
		dto := dtos.ToUserDTO(user)
		result = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
