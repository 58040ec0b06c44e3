// Package vehicle - запросы: список машин и enforcement-проверка.
package vehicle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// ListVehiclesUseCase возвращает автомобили пользователя.
type ListVehiclesUseCase struct {
	vehicleRepo ports.VehicleRepository
}

// NewListVehiclesUseCase создаёт новый use case.
func NewListVehiclesUseCase(vehicleRepo ports.VehicleRepository) *ListVehiclesUseCase {
	return &ListVehiclesUseCase{vehicleRepo: vehicleRepo}
}

// Execute возвращает список машин.
func (uc *ListVehiclesUseCase) Execute(ctx context.Context, query dtos.ListVehiclesQuery) (*dtos.VehicleListDTO, error) {
	userID, err := uuid.Parse(query.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	vehicles, err := uc.vehicleRepo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dtos.VehicleListDTO{Vehicles: dtos.ToVehicleDTOList(vehicles)}, nil
}

// enforcementCacheTTL - короткий TTL: статус меняется каждым
// start/extend/terminate, и кэш дополнительно инвалидируется ими.
const enforcementCacheTTL = 30 * time.Second

// LookupVehicleUseCase - горячий enforcement-путь warden'а: найти
// машину по тройке и ответить, накрыта ли она действующей сессией.
//
// Redis стоит перед БД как read-through кэш. Любая ошибка кэша
// деградирует в прямой запрос: enforcement не должен зависеть от Redis.
type LookupVehicleUseCase struct {
	vehicleRepo ports.VehicleRepository
	sessionRepo ports.ParkingSessionRepository
	cache       ports.EnforcementCache
}

// NewLookupVehicleUseCase создаёт новый use case.
func NewLookupVehicleUseCase(
	vehicleRepo ports.VehicleRepository,
	sessionRepo ports.ParkingSessionRepository,
	cache ports.EnforcementCache,
) *LookupVehicleUseCase {
	return &LookupVehicleUseCase{
		vehicleRepo: vehicleRepo,
		sessionRepo: sessionRepo,
		cache:       cache,
	}
}

// Execute выполняет enforcement-проверку.
func (uc *LookupVehicleUseCase) Execute(ctx context.Context, query dtos.LookupVehicleQuery) (*dtos.EnforcementDTO, error) {
	plate, err := valueobjects.NewPlate(query.LicensePlate, query.Brand, query.Color)
	if err != nil {
		return nil, err
	}

	vehicle, err := uc.vehicleRepo.FindByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}

	result := &dtos.EnforcementDTO{Vehicle: dtos.ToVehicleDTO(vehicle)}

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, plate.String()); err == nil && cached != nil {
			result.Covered = cached.Covered
			if cached.Covered {
				endsAt := cached.EndsAt
				result.EndsAt = &endsAt
			}
			return result, nil
		}
	}

	session, err := uc.sessionRepo.FindOngoingByVehicle(ctx, vehicle.ID())
	switch {
	case err == nil:
		endsAt := session.EndTime()
		result.Covered = true
		result.EndsAt = &endsAt
	case errors.IsNotFound(err):
		// Не накрыта - тоже валидный ответ.
	default:
		return nil, err
	}

	if uc.cache != nil {
		status := &ports.EnforcementStatus{VehicleID: vehicle.ID().String(), Covered: result.Covered}
		if result.EndsAt != nil {
			status.EndsAt = *result.EndsAt
		}
		_ = uc.cache.Set(ctx, plate.String(), status, enforcementCacheTTL)
	}

	return result, nil
}
