// Package saman - PaySaman: оплата штрафа из кошелька.
package saman

import (
	"context"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/events"
)

// payRetryAttempts - потолок повторов при проигранном CAS по кошельку.
const payRetryAttempts = 3

// PaySamanUseCase оплачивает штраф из кошелька совладельца.
//
// Одна транзакция: debit кошелька, переход saman в paid, запись
// "Saman" в журнал, income += fee у authority, событие в outbox.
// Повторная оплата того же штрафа отклоняется до каких-либо списаний.
type PaySamanUseCase struct {
	userRepo      ports.UserRepository
	vehicleRepo   ports.VehicleRepository
	samanRepo     ports.SamanRepository
	txRepo        ports.TransactionRepository
	authorityRepo ports.AuthorityRepository
	outbox        ports.OutboxRepository
	uow           ports.UnitOfWork
}

// NewPaySamanUseCase создаёт новый use case.
func NewPaySamanUseCase(
	userRepo ports.UserRepository,
	vehicleRepo ports.VehicleRepository,
	samanRepo ports.SamanRepository,
	txRepo ports.TransactionRepository,
	authorityRepo ports.AuthorityRepository,
	outbox ports.OutboxRepository,
	uow ports.UnitOfWork,
) *PaySamanUseCase {
	return &PaySamanUseCase{
		userRepo:      userRepo,
		vehicleRepo:   vehicleRepo,
		samanRepo:     samanRepo,
		txRepo:        txRepo,
		authorityRepo: authorityRepo,
		outbox:        outbox,
		uow:           uow,
	}
}

// Execute оплачивает штраф.
func (uc *PaySamanUseCase) Execute(ctx context.Context, cmd dtos.PaySamanCommand) (*dtos.SamanPaidDTO, error) {
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}
	samanID, err := uuid.Parse(cmd.SamanID)
	if err != nil {
		return nil, errors.ValidationError{Field: "saman_id", Message: "invalid UUID"}
	}

	var result *dtos.SamanPaidDTO

	err = uc.uow.ExecuteWithRetry(ctx, payRetryAttempts, func(txCtx context.Context) error {
		saman, err := uc.samanRepo.FindByID(txCtx, samanID)
		if err != nil {
			return err
		}

		vehicle, err := uc.vehicleRepo.FindByID(txCtx, saman.VehicleID())
		if err != nil {
			return err
		}
		// Платить может любой совладелец машины, на которую выписан штраф.
		if !vehicle.IsOwnedBy(userID) {
			return errors.ErrNotAuthorized
		}

		user, err := uc.userRepo.FindByID(txCtx, userID)
		if err != nil {
			return err
		}

		authority, err := uc.authorityRepo.FindByID(txCtx, saman.AuthorityID())
		if err != nil {
			return err
		}

		// Сначала переход unpaid -> paid: повторная оплата режется
		// до того, как тронули кошелёк.
		if err := saman.MarkPaid(); err != nil {
			return err
		}

		if err := user.Debit(saman.Price()); err != nil {
			return err
		}

		transaction, err := entities.NewTransaction(userID, entities.TransactionLabelSaman, saman.Price(), entities.DirectionOut, saman.Offense())
		if err != nil {
			return err
		}
		if err := transaction.AttachAuthority(saman.AuthorityID()); err != nil {
			return err
		}

		if err := authority.AccrueIncome(saman.Price()); err != nil {
			return err
		}

		// CAS по wallet_version; проигрыш гонки перезапустит попытку.
		if err := uc.userRepo.Save(txCtx, user); err != nil {
			return err
		}
		if err := uc.samanRepo.Save(txCtx, saman); err != nil {
			return err
		}
		if err := uc.txRepo.Save(txCtx, transaction); err != nil {
			return err
		}
		if err := uc.authorityRepo.Save(txCtx, authority); err != nil {
			return err
		}

		event := events.NewSamanPaid(saman.ID(), userID, saman.AuthorityID(), saman.Price())
		if err := uc.outbox.Save(txCtx, event); err != nil {
			return err
		}

		result = &dtos.SamanPaidDTO{
			Saman:       dtos.ToSamanDTO(saman),
			Transaction: dtos.ToTransactionDTO(transaction),
			Balance:     user.WalletBalance().Decimal(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
