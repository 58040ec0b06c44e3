// Package parking - TerminateSession: досрочное завершение без возврата
// средств, и ExpireSessions: фоновый sweep просроченных сессий.
package parking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/events"
)

// TerminateSessionUseCase завершает сессию по запросу владельца.
//
// Идемпотентность: завершение уже завершённой сессии - no-op с
// успешным ответом, не ошибка. Пользователь, дважды нажавший кнопку,
// и sweep, успевший раньше, не должны видеть конфликт.
type TerminateSessionUseCase struct {
	vehicleRepo ports.VehicleRepository
	sessionRepo ports.ParkingSessionRepository
	outbox      ports.OutboxRepository
	cache       ports.EnforcementCache
	uow         ports.UnitOfWork
}

// NewTerminateSessionUseCase создаёт новый use case.
func NewTerminateSessionUseCase(
	vehicleRepo ports.VehicleRepository,
	sessionRepo ports.ParkingSessionRepository,
	outbox ports.OutboxRepository,
	cache ports.EnforcementCache,
	uow ports.UnitOfWork,
) *TerminateSessionUseCase {
	return &TerminateSessionUseCase{
		vehicleRepo: vehicleRepo,
		sessionRepo: sessionRepo,
		outbox:      outbox,
		cache:       cache,
		uow:         uow,
	}
}

// Execute завершает сессию.
func (uc *TerminateSessionUseCase) Execute(ctx context.Context, cmd dtos.TerminateSessionCommand) (*dtos.SessionDTO, error) {
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}
	sessionID, err := uuid.Parse(cmd.SessionID)
	if err != nil {
		return nil, errors.ValidationError{Field: "session_id", Message: "invalid UUID"}
	}

	var result *dtos.SessionDTO
	var plateKey string

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		session, err := uc.sessionRepo.FindByID(txCtx, sessionID)
		if err != nil {
			return err
		}
		if session.CreatorID() != userID {
			return errors.ErrNotAuthorized
		}

		wasOngoing := session.IsOngoing()
		session.Terminate()

		if wasOngoing {
			if err := uc.sessionRepo.Save(txCtx, session); err != nil {
				return err
			}
			if err := uc.outbox.Save(txCtx, events.NewSessionTerminated(session.ID(), userID)); err != nil {
				return err
			}
			if vehicle, err := uc.vehicleRepo.FindByID(txCtx, session.VehicleID()); err == nil {
				plateKey = vehicle.Plate().String()
			}
		}

		dto := dtos.ToSessionDTO(session)
		result = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.cache != nil && plateKey != "" {
		_ = uc.cache.Invalidate(ctx, plateKey)
	}

	return result, nil
}

// ExpireSessionsUseCase - фоновый sweep: переводит ongoing-сессии с
// истёкшим end_time в complete. Запускается периодически из cmd/api.
type ExpireSessionsUseCase struct {
	sessionRepo ports.ParkingSessionRepository
	outbox      ports.OutboxRepository
	uow         ports.UnitOfWork
}

// NewExpireSessionsUseCase создаёт новый use case.
func NewExpireSessionsUseCase(
	sessionRepo ports.ParkingSessionRepository,
	outbox ports.OutboxRepository,
	uow ports.UnitOfWork,
) *ExpireSessionsUseCase {
	return &ExpireSessionsUseCase{
		sessionRepo: sessionRepo,
		outbox:      outbox,
		uow:         uow,
	}
}

// Execute завершает просроченные сессии, возвращает их количество.
func (uc *ExpireSessionsUseCase) Execute(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	expired := 0
	err := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		sessions, err := uc.sessionRepo.FindExpired(txCtx, time.Now().UTC(), batchSize)
		if err != nil {
			return err
		}

		for _, session := range sessions {
			session.Terminate()
			if err := uc.sessionRepo.Save(txCtx, session); err != nil {
				return err
			}
			if err := uc.outbox.Save(txCtx, events.NewSessionTerminated(session.ID(), session.CreatorID())); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
