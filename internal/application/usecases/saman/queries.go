// Package saman - запросы: штраф по ID и fine history пользователя.
package saman

import (
	"context"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/errors"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// GetSamanUseCase возвращает штраф по ID.
type GetSamanUseCase struct {
	samanRepo ports.SamanRepository
}

// NewGetSamanUseCase создаёт новый use case.
func NewGetSamanUseCase(samanRepo ports.SamanRepository) *GetSamanUseCase {
	return &GetSamanUseCase{samanRepo: samanRepo}
}

// Execute возвращает штраф.
func (uc *GetSamanUseCase) Execute(ctx context.Context, query dtos.GetSamanQuery) (*dtos.SamanDTO, error) {
	samanID, err := uuid.Parse(query.SamanID)
	if err != nil {
		return nil, errors.ValidationError{Field: "saman_id", Message: "invalid UUID"}
	}

	saman, err := uc.samanRepo.FindByID(ctx, samanID)
	if err != nil {
		return nil, err
	}

	dto := dtos.ToSamanDTO(saman)
	return &dto, nil
}

// FineHistoryUseCase - штрафы по всем машинам пользователя, новые
// первыми. Включая машины, которыми пользователь владеет совместно.
type FineHistoryUseCase struct {
	vehicleRepo ports.VehicleRepository
	samanRepo   ports.SamanRepository
}

// NewFineHistoryUseCase создаёт новый use case.
func NewFineHistoryUseCase(vehicleRepo ports.VehicleRepository, samanRepo ports.SamanRepository) *FineHistoryUseCase {
	return &FineHistoryUseCase{vehicleRepo: vehicleRepo, samanRepo: samanRepo}
}

// Execute возвращает историю штрафов.
func (uc *FineHistoryUseCase) Execute(ctx context.Context, query dtos.FineHistoryQuery) (*dtos.SamanListDTO, error) {
	userID, err := uuid.Parse(query.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	vehicles, err := uc.vehicleRepo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &dtos.SamanListDTO{Samans: []dtos.SamanDTO{}, Offset: offset, Limit: limit}
	if len(vehicles) == 0 {
		// Нет машин - пустая история, не ошибка.
		return result, nil
	}

	vehicleIDs := make([]uuid.UUID, 0, len(vehicles))
	for _, vehicle := range vehicles {
		vehicleIDs = append(vehicleIDs, vehicle.ID())
	}

	samans, err := uc.samanRepo.FindByVehicles(ctx, vehicleIDs, offset, limit)
	if err != nil {
		return nil, err
	}

	result.Samans = dtos.ToSamanDTOList(samans)
	return result, nil
}
