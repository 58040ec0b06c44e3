// Package parking - read-only запросы по сессиям.
package parking

import (
	"context"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	"github.com/mypark/parkwallet/internal/domain/errors"
)

// GetSessionUseCase возвращает сессию по ID.
type GetSessionUseCase struct {
	sessionRepo ports.ParkingSessionRepository
}

// NewGetSessionUseCase создаёт новый use case.
func NewGetSessionUseCase(sessionRepo ports.ParkingSessionRepository) *GetSessionUseCase {
	return &GetSessionUseCase{sessionRepo: sessionRepo}
}

// Execute возвращает сессию.
func (uc *GetSessionUseCase) Execute(ctx context.Context, query dtos.GetSessionQuery) (*dtos.SessionDTO, error) {
	sessionID, err := uuid.Parse(query.SessionID)
	if err != nil {
		return nil, errors.ValidationError{Field: "session_id", Message: "invalid UUID"}
	}

	session, err := uc.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	dto := dtos.ToSessionDTO(session)
	return &dto, nil
}

// ListSessionsUseCase возвращает сессии пользователя, новые первыми.
type ListSessionsUseCase struct {
	sessionRepo ports.ParkingSessionRepository
}

// NewListSessionsUseCase создаёт новый use case.
func NewListSessionsUseCase(sessionRepo ports.ParkingSessionRepository) *ListSessionsUseCase {
	return &ListSessionsUseCase{sessionRepo: sessionRepo}
}

// Execute возвращает страницу сессий.
func (uc *ListSessionsUseCase) Execute(ctx context.Context, query dtos.ListSessionsQuery) (*dtos.SessionListDTO, error) {
	userID, err := uuid.Parse(query.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	status := entities.SessionStatus(query.Status)
	if status != "" && !status.IsValid() {
		return nil, errors.ValidationError{Field: "status", Message: "must be ongoing or complete"}
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	sessions, err := uc.sessionRepo.FindByCreator(ctx, userID, status, query.Offset, limit)
	if err != nil {
		return nil, err
	}

	return &dtos.SessionListDTO{
		Sessions: dtos.ToSessionDTOList(sessions),
		Offset:   query.Offset,
		Limit:    limit,
	}, nil
}
