// Package wallet - CaptureTopUp: фаза 2 пополнения.
package wallet

import (
	"context"
	"fmt"

	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/events"
)

// CaptureTopUpUseCase подтверждает одобренный ордер и кредитует кошелёк.
//
// Сценарий:
// 1. Найти pending-ордер; если он уже captured - вернуть исходную
//    транзакцию без изменений (идемпотентность)
// 2. Выполнить capture в шлюзе; незавершённая оплата - ошибка
// 3. В одной транзакции: кредитовать кошелёк, записать транзакцию с
//    order_id, пометить ордер captured, положить событие в outbox
//
// Idempotency:
// Якорь - уникальный order_id на транзакциях. Повторный capture находит
// существующую транзакцию и не трогает кошелёк, сколько бы раз
// пользователь ни жал кнопку или шлюз ни ретраил callback.
type CaptureTopUpUseCase struct {
	userRepo  ports.UserRepository
	txRepo    ports.TransactionRepository
	orderRepo ports.PaymentOrderRepository
	gateway   ports.PaymentGateway
	outbox    ports.OutboxRepository
	uow       ports.UnitOfWork
}

// NewCaptureTopUpUseCase создаёт новый use case.
func NewCaptureTopUpUseCase(
	userRepo ports.UserRepository,
	txRepo ports.TransactionRepository,
	orderRepo ports.PaymentOrderRepository,
	gateway ports.PaymentGateway,
	outbox ports.OutboxRepository,
	uow ports.UnitOfWork,
) *CaptureTopUpUseCase {
	return &CaptureTopUpUseCase{
		userRepo:  userRepo,
		txRepo:    txRepo,
		orderRepo: orderRepo,
		gateway:   gateway,
		outbox:    outbox,
		uow:       uow,
	}
}

// Execute подтверждает ордер.
func (uc *CaptureTopUpUseCase) Execute(ctx context.Context, cmd dtos.CaptureTopUpCommand) (*dtos.TopUpCapturedDTO, error) {
	order, err := uc.orderRepo.FindByOrderID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if order.UserID().String() != cmd.UserID {
		return nil, errors.ErrNotAuthorized
	}

	// Повторный capture: возвращаем исходную транзакцию как есть.
	if order.IsCaptured() {
		return uc.replayResult(ctx, order)
	}

	// Внешний вызов до БД-транзакции. Если после удачного capture у
	// шлюза упадёт наша транзакция, следующий вызов Execute повторит
	// capture: шлюз отвечает COMPLETED идемпотентно.
	capture, err := uc.gateway.CaptureOrder(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !capture.Completed {
		return nil, errors.ErrPaymentIncomplete
	}
	if !capture.Amount.IsPositive() {
		return nil, errors.ErrAmountMissing
	}

	var result *dtos.TopUpCapturedDTO
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		// Перечитываем ордер под транзакцией: конкурентный capture мог
		// успеть раньше нас.
		order, err := uc.orderRepo.FindByOrderID(txCtx, cmd.OrderID)
		if err != nil {
			return err
		}
		if order.IsCaptured() {
			existing, err := uc.txRepo.FindByOrderID(txCtx, order.OrderID())
			if err != nil {
				return err
			}
			user, err := uc.userRepo.FindByID(txCtx, order.UserID())
			if err != nil {
				return err
			}
			result = &dtos.TopUpCapturedDTO{
				Transaction:     dtos.ToTransactionDTO(existing),
				Balance:         user.WalletBalance().Decimal(),
				AlreadyCaptured: true,
			}
			return nil
		}

		user, err := uc.userRepo.FindByID(txCtx, order.UserID())
		if err != nil {
			return err
		}

		// Кредитуем фактически списанную шлюзом сумму.
		if err := user.Credit(capture.Amount); err != nil {
			return err
		}

		transaction, err := entities.NewTransaction(
			user.ID(),
			entities.TransactionLabelTopUp,
			capture.Amount,
			entities.DirectionIn,
			"",
		)
		if err != nil {
			return fmt.Errorf("failed to create transaction entity: %w", err)
		}
		if err := transaction.AttachOrder(order.OrderID()); err != nil {
			return err
		}

		if err := order.MarkCaptured(capture.Amount); err != nil {
			return err
		}

		if err := uc.userRepo.Save(txCtx, user); err != nil {
			return err
		}
		if err := uc.txRepo.Save(txCtx, transaction); err != nil {
			return err
		}
		if err := uc.orderRepo.Save(txCtx, order); err != nil {
			return err
		}

		event := events.NewTopUpCaptured(user.ID(), order.OrderID(), capture.Amount, user.WalletBalance())
		if err := uc.outbox.Save(txCtx, event); err != nil {
			return err
		}

		result = &dtos.TopUpCapturedDTO{
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

// replayResult возвращает результат уже состоявшегося capture.
func (uc *CaptureTopUpUseCase) replayResult(ctx context.Context, order *entities.PaymentOrder) (*dtos.TopUpCapturedDTO, error) {
	existing, err := uc.txRepo.FindByOrderID(ctx, order.OrderID())
	if err != nil {
		return nil, err
	}
	user, err := uc.userRepo.FindByID(ctx, order.UserID())
	if err != nil {
		return nil, err
	}
	return &dtos.TopUpCapturedDTO{
		Transaction:     dtos.ToTransactionDTO(existing),
		Balance:         user.WalletBalance().Decimal(),
		AlreadyCaptured: true,
	}, nil
}
