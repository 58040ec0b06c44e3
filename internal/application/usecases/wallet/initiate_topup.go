// Package wallet - use cases для кошелька: двухфазное пополнение через
// платёжный шлюз и чтение журнала.
//
// Фаза 1 (этот файл): создать ордер в шлюзе и запомнить его как pending.
// Кошелёк не тронут - деньги появятся только после capture.
package wallet

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

// InitiateTopUpUseCase создаёт ордер на пополнение.
//
// Сценарий:
// 1. Проверить, что пользователь существует
// 2. Создать ордер в шлюзе (вне БД-транзакции - внешний вызов)
// 3. Сохранить PaymentOrder со статусом created
// 4. Вернуть approval-ссылку
type InitiateTopUpUseCase struct {
	userRepo  ports.UserRepository
	orderRepo ports.PaymentOrderRepository
	gateway   ports.PaymentGateway
	outbox    ports.OutboxRepository
	uow       ports.UnitOfWork
}

// NewInitiateTopUpUseCase создаёт новый use case.
func NewInitiateTopUpUseCase(
	userRepo ports.UserRepository,
	orderRepo ports.PaymentOrderRepository,
	gateway ports.PaymentGateway,
	outbox ports.OutboxRepository,
	uow ports.UnitOfWork,
) *InitiateTopUpUseCase {
	return &InitiateTopUpUseCase{
		userRepo:  userRepo,
		orderRepo: orderRepo,
		gateway:   gateway,
		outbox:    outbox,
		uow:       uow,
	}
}

// Execute создаёт ордер на пополнение.
func (uc *InitiateTopUpUseCase) Execute(ctx context.Context, cmd dtos.InitiateTopUpCommand) (*dtos.TopUpInitiatedDTO, error) {
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	amount, err := valueobjects.NewMoney(cmd.Amount)
	if err != nil {
		return nil, errors.ValidationError{Field: "amount", Message: fmt.Sprintf("invalid amount: %v", err)}
	}
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	// Внешний вызов до открытия БД-транзакции: держать соединение БД
	// на время сетевого похода в шлюз нельзя.
	gwOrder, err := uc.gateway.CreateOrder(ctx, amount)
	if err != nil {
		return nil, err
	}

	order, err := entities.NewPaymentOrder(gwOrder.OrderID, userID, amount)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		if err := uc.orderRepo.Save(txCtx, order); err != nil {
			return fmt.Errorf("failed to save payment order: %w", err)
		}
		return uc.outbox.Save(txCtx, events.NewTopUpInitiated(userID, order.OrderID(), amount))
	})
	if err != nil {
		return nil, err
	}

	return &dtos.TopUpInitiatedDTO{
		OrderID:     gwOrder.OrderID,
		ApprovalURL: gwOrder.ApprovalURL,
		Amount:      amount.Decimal(),
	}, nil
}
