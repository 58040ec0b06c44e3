// Package parking - use cases жизненного цикла парковочных сессий.
//
// Списание за парковку - главный конкурентный путь платформы: два
// устройства одного пользователя могут стартовать сессии одновременно.
// Гарантия no-overspend держится на optimistic locking по
// wallet_version + ExecuteWithRetry: проигравшая попытка перечитывает
// кошелёк и либо проходит, либо честно получает InsufficientFunds.
package parking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/events"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// debitRetryAttempts - сколько раз повторяем проигранный CAS по кошельку.
const debitRetryAttempts = 3

// StartSessionUseCase стартует сессию и сразу списывает её стоимость.
//
// Одна транзакция: debit кошелька, создание ongoing-сессии, запись
// "Parking" в журнал, income += price у authority, событие в outbox.
type StartSessionUseCase struct {
	userRepo      ports.UserRepository
	vehicleRepo   ports.VehicleRepository
	sessionRepo   ports.ParkingSessionRepository
	txRepo        ports.TransactionRepository
	authorityRepo ports.AuthorityRepository
	outbox        ports.OutboxRepository
	cache         ports.EnforcementCache
	uow           ports.UnitOfWork
}

// NewStartSessionUseCase создаёт новый use case.
func NewStartSessionUseCase(
	userRepo ports.UserRepository,
	vehicleRepo ports.VehicleRepository,
	sessionRepo ports.ParkingSessionRepository,
	txRepo ports.TransactionRepository,
	authorityRepo ports.AuthorityRepository,
	outbox ports.OutboxRepository,
	cache ports.EnforcementCache,
	uow ports.UnitOfWork,
) *StartSessionUseCase {
	return &StartSessionUseCase{
		userRepo:      userRepo,
		vehicleRepo:   vehicleRepo,
		sessionRepo:   sessionRepo,
		txRepo:        txRepo,
		authorityRepo: authorityRepo,
		outbox:        outbox,
		cache:         cache,
		uow:           uow,
	}
}

// Execute стартует сессию.
func (uc *StartSessionUseCase) Execute(ctx context.Context, cmd dtos.StartSessionCommand) (*dtos.SessionStartedDTO, error) {
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}
	vehicleID, err := uuid.Parse(cmd.VehicleID)
	if err != nil {
		return nil, errors.ValidationError{Field: "vehicle_id", Message: "invalid UUID"}
	}
	authorityID, err := uuid.Parse(cmd.AuthorityID)
	if err != nil {
		return nil, errors.ValidationError{Field: "authority_id", Message: "invalid UUID"}
	}

	price, err := valueobjects.NewMoney(cmd.Price)
	if err != nil {
		return nil, errors.ValidationError{Field: "price", Message: fmt.Sprintf("invalid price: %v", err)}
	}
	if !price.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	startingTime := time.Now().UTC()
	if cmd.StartingTime != "" {
		parsed, err := time.Parse(time.RFC3339, cmd.StartingTime)
		if err != nil {
			return nil, errors.ValidationError{Field: "starting_time", Message: "invalid timestamp, expected RFC 3339"}
		}
		startingTime = parsed.UTC()
	}

	var result *dtos.SessionStartedDTO
	var plateKey string

	err = uc.uow.ExecuteWithRetry(ctx, debitRetryAttempts, func(txCtx context.Context) error {
		user, err := uc.userRepo.FindByID(txCtx, userID)
		if err != nil {
			return err
		}

		vehicle, err := uc.vehicleRepo.FindByID(txCtx, vehicleID)
		if err != nil {
			return err
		}
		if !vehicle.IsOwnedBy(userID) {
			return errors.ErrNotAuthorized
		}
		plateKey = vehicle.Plate().String()

		authority, err := uc.authorityRepo.FindByID(txCtx, authorityID)
		if err != nil {
			return err
		}

		// Не более одной активной сессии на автомобиль.
		if existing, err := uc.sessionRepo.FindOngoingByVehicle(txCtx, vehicleID); err == nil && existing != nil {
			return errors.NewConflict("ParkingSession", "vehicle already has an ongoing session")
		} else if err != nil && !errors.IsNotFound(err) {
			return err
		}

		if err := user.Debit(price); err != nil {
			return err
		}

		session, err := entities.NewParkingSession(startingTime, cmd.DurationMinutes, authorityID, vehicleID, userID)
		if err != nil {
			return err
		}

		transaction, err := entities.NewTransaction(userID, entities.TransactionLabelParking, price, entities.DirectionOut, "")
		if err != nil {
			return err
		}
		if err := transaction.AttachAuthority(authorityID); err != nil {
			return err
		}

		if err := authority.AccrueIncome(price); err != nil {
			return err
		}

		// Save кошелька - это CAS по wallet_version; проигрыш гонки
		// вернёт transient conflict, и ExecuteWithRetry заведёт новую
		// попытку поверх свежего баланса.
		if err := uc.userRepo.Save(txCtx, user); err != nil {
			return err
		}
		if err := uc.sessionRepo.Save(txCtx, session); err != nil {
			return err
		}
		if err := uc.txRepo.Save(txCtx, transaction); err != nil {
			return err
		}
		if err := uc.authorityRepo.Save(txCtx, authority); err != nil {
			return err
		}

		started := events.NewSessionStarted(session.ID(), userID, vehicleID, session.EndTime())
		debited := events.NewWalletDebited(userID, transaction.ID(), string(entities.TransactionLabelParking), price, user.WalletBalance())
		if err := uc.outbox.Save(txCtx, started); err != nil {
			return err
		}
		if err := uc.outbox.Save(txCtx, debited); err != nil {
			return err
		}

		result = &dtos.SessionStartedDTO{
			Session:     dtos.ToSessionDTO(session),
			Transaction: dtos.ToTransactionDTO(transaction),
			Balance:     user.WalletBalance().Decimal(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Кэш - вне транзакции: его потеря не ломает консистентность.
	if uc.cache != nil && plateKey != "" {
		_ = uc.cache.Invalidate(ctx, plateKey)
	}

	return result, nil
}
