// Package parking - ExtendSession: платное продление ongoing-сессии.
package parking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/events"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// ExtendSessionUseCase продлевает сессию и списывает доплату.
//
// Завершённую сессию продлить нельзя: SessionNotOngoing, и ни кошелёк,
// ни сессия не меняются (транзакция откатывается целиком).
type ExtendSessionUseCase struct {
	userRepo      ports.UserRepository
	vehicleRepo   ports.VehicleRepository
	sessionRepo   ports.ParkingSessionRepository
	txRepo        ports.TransactionRepository
	authorityRepo ports.AuthorityRepository
	outbox        ports.OutboxRepository
	cache         ports.EnforcementCache
	uow           ports.UnitOfWork
}

// NewExtendSessionUseCase создаёт новый use case.
func NewExtendSessionUseCase(
	userRepo ports.UserRepository,
	vehicleRepo ports.VehicleRepository,
	sessionRepo ports.ParkingSessionRepository,
	txRepo ports.TransactionRepository,
	authorityRepo ports.AuthorityRepository,
	outbox ports.OutboxRepository,
	cache ports.EnforcementCache,
	uow ports.UnitOfWork,
) *ExtendSessionUseCase {
	return &ExtendSessionUseCase{
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

// Execute продлевает сессию.
func (uc *ExtendSessionUseCase) Execute(ctx context.Context, cmd dtos.ExtendSessionCommand) (*dtos.SessionStartedDTO, error) {
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}
	sessionID, err := uuid.Parse(cmd.SessionID)
	if err != nil {
		return nil, errors.ValidationError{Field: "session_id", Message: "invalid UUID"}
	}

	price, err := valueobjects.NewMoney(cmd.Price)
	if err != nil {
		return nil, errors.ValidationError{Field: "price", Message: fmt.Sprintf("invalid price: %v", err)}
	}
	if !price.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	var result *dtos.SessionStartedDTO
	var plateKey string

	err = uc.uow.ExecuteWithRetry(ctx, debitRetryAttempts, func(txCtx context.Context) error {
		session, err := uc.sessionRepo.FindByID(txCtx, sessionID)
		if err != nil {
			return err
		}
		if session.CreatorID() != userID {
			return errors.ErrNotAuthorized
		}

		user, err := uc.userRepo.FindByID(txCtx, userID)
		if err != nil {
			return err
		}

		authority, err := uc.authorityRepo.FindByID(txCtx, session.AuthorityID())
		if err != nil {
			return err
		}

		// Проверка статуса - в entity: завершённая сессия вернёт
		// SessionNotOngoing до того, как кошелёк будет тронут.
		if err := session.Extend(cmd.AdditionalMinutes); err != nil {
			return err
		}

		if err := user.Debit(price); err != nil {
			return err
		}

		transaction, err := entities.NewTransaction(userID, entities.TransactionLabelParking, price, entities.DirectionOut, "")
		if err != nil {
			return err
		}
		if err := transaction.AttachAuthority(session.AuthorityID()); err != nil {
			return err
		}

		if err := authority.AccrueIncome(price); err != nil {
			return err
		}

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

		if vehicle, err := uc.vehicleRepo.FindByID(txCtx, session.VehicleID()); err == nil {
			plateKey = vehicle.Plate().String()
		}

		extended := events.NewSessionExtended(session.ID(), userID, session.EndTime())
		debited := events.NewWalletDebited(userID, transaction.ID(), string(entities.TransactionLabelParking), price, user.WalletBalance())
		if err := uc.outbox.Save(txCtx, extended); err != nil {
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

	if uc.cache != nil && plateKey != "" {
		_ = uc.cache.Invalidate(ctx, plateKey)
	}

	return result, nil
}
