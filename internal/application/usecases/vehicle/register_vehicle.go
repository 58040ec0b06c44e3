// Package vehicle - use cases регистрации и отвязки автомобилей.
//
// Дедупликация: автомобиль логически идентифицируется тройкой
// (plate, brand, color). Повторная регистрация существующей тройки
// добавляет пользователя во владельцы, а не создаёт дубликат.
package vehicle

import (
	"context"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/events"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// RegisterVehicleUseCase привязывает автомобиль к пользователю.
//
// Сценарий:
// 1. Канонизировать тройку
// 2. Найти существующий автомобиль по тройке; если нет - создать
// 3. Добавить пользователя во владельцы (идемпотентно)
// 4. Сохранить обе стороны связи в одной транзакции
type RegisterVehicleUseCase struct {
	userRepo    ports.UserRepository
	vehicleRepo ports.VehicleRepository
	outbox      ports.OutboxRepository
	uow         ports.UnitOfWork
}

// NewRegisterVehicleUseCase создаёт новый use case.
func NewRegisterVehicleUseCase(
	userRepo ports.UserRepository,
	vehicleRepo ports.VehicleRepository,
	outbox ports.OutboxRepository,
	uow ports.UnitOfWork,
) *RegisterVehicleUseCase {
	return &RegisterVehicleUseCase{
		userRepo:    userRepo,
		vehicleRepo: vehicleRepo,
		outbox:      outbox,
		uow:         uow,
	}
}

// Execute регистрирует автомобиль.
func (uc *RegisterVehicleUseCase) Execute(ctx context.Context, cmd dtos.RegisterVehicleCommand) (*dtos.VehicleDTO, error) {
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	plate, err := valueobjects.NewPlate(cmd.LicensePlate, cmd.Brand, cmd.Color)
	if err != nil {
		return nil, err
	}

	var result *dtos.VehicleDTO
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		if _, err := uc.userRepo.FindByID(txCtx, userID); err != nil {
			return err
		}

		vehicle, err := uc.vehicleRepo.FindByPlate(txCtx, plate)
		switch {
		case err == nil:
			// Тройка уже зарегистрирована - добавляем совладельца.
			if vehicle.AddOwner(userID) {
				if err := uc.vehicleRepo.Save(txCtx, vehicle); err != nil {
					return err
				}
				event := events.NewVehicleLinked(vehicle.ID(), userID, plate.Number())
				if err := uc.outbox.Save(txCtx, event); err != nil {
					return err
				}
			}
		case errors.IsNotFound(err):
			vehicle, err = entities.NewVehicle(plate, userID)
			if err != nil {
				return err
			}
			if err := uc.vehicleRepo.Save(txCtx, vehicle); err != nil {
				return err
			}
			event := events.NewVehicleLinked(vehicle.ID(), userID, plate.Number())
			if err := uc.outbox.Save(txCtx, event); err != nil {
				return err
			}
		default:
			return err
		}

		dto := dtos.ToVehicleDTO(vehicle)
		result = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
