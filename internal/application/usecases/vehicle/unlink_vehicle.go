// Package vehicle - UnlinkVehicle: отвязка с ограниченным числом попыток.
package vehicle

import (
	"context"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/events"
)

// unlinkRetryAttempts - жёсткий потолок попыток отвязки. Сброс машины
// «по умолчанию» пишет строку пользователя под CAS; параллельная правка
// профиля роняет её, и транзакция повторяется. После исчерпания попыток
// возвращаем последний конфликт, а не крутимся вечно.
const unlinkRetryAttempts = 3

// UnlinkVehicleUseCase отвязывает автомобиль от пользователя.
//
// Автомобиль переживает отвязку: остальные совладельцы и история
// штрафов остаются. Если отвязанная машина была у пользователя
// «по умолчанию», выбор сбрасывается в той же транзакции.
type UnlinkVehicleUseCase struct {
	userRepo    ports.UserRepository
	vehicleRepo ports.VehicleRepository
	outbox      ports.OutboxRepository
	uow         ports.UnitOfWork
}

// NewUnlinkVehicleUseCase создаёт новый use case.
func NewUnlinkVehicleUseCase(
	userRepo ports.UserRepository,
	vehicleRepo ports.VehicleRepository,
	outbox ports.OutboxRepository,
	uow ports.UnitOfWork,
) *UnlinkVehicleUseCase {
	return &UnlinkVehicleUseCase{
		userRepo:    userRepo,
		vehicleRepo: vehicleRepo,
		outbox:      outbox,
		uow:         uow,
	}
}

// Execute отвязывает автомобиль.
func (uc *UnlinkVehicleUseCase) Execute(ctx context.Context, cmd dtos.UnlinkVehicleCommand) error {
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}
	vehicleID, err := uuid.Parse(cmd.VehicleID)
	if err != nil {
		return errors.ValidationError{Field: "vehicle_id", Message: "invalid UUID"}
	}

	return uc.uow.ExecuteWithRetry(ctx, unlinkRetryAttempts, func(txCtx context.Context) error {
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

		vehicle.RemoveOwner(userID)
		if err := uc.vehicleRepo.Save(txCtx, vehicle); err != nil {
			return err
		}

		if defaultID := user.DefaultVehicleID(); defaultID != nil && *defaultID == vehicleID {
			user.ClearDefaultVehicle()
			if err := uc.userRepo.Save(txCtx, user); err != nil {
				return err
			}
		}

		return uc.outbox.Save(txCtx, events.NewVehicleUnlinked(vehicleID, userID, vehicle.Plate().Number()))
	})
}
