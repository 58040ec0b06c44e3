// Package saman - use cases выписки и оплаты штрафов.
//
// Штраф (saman) выписывается на автомобиль по тройке
// (plate, brand, color), а не на конкретного пользователя:
// ответственность несут все совладельцы, оплатить может любой из них.
package saman

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

// IssueSamanUseCase выписывает штраф на автомобиль.
//
// Только warden или admin. Машина ищется по канонизированной тройке;
// незарегистрированная тройка - это ошибка выписки, а не повод завести
// машину-призрак. Владельцы уведомляются после коммита, best-effort.
type IssueSamanUseCase struct {
	userRepo      ports.UserRepository
	vehicleRepo   ports.VehicleRepository
	samanRepo     ports.SamanRepository
	authorityRepo ports.AuthorityRepository
	outbox        ports.OutboxRepository
	notifier      ports.Notifier
	uow           ports.UnitOfWork
}

// NewIssueSamanUseCase создаёт новый use case.
func NewIssueSamanUseCase(
	userRepo ports.UserRepository,
	vehicleRepo ports.VehicleRepository,
	samanRepo ports.SamanRepository,
	authorityRepo ports.AuthorityRepository,
	outbox ports.OutboxRepository,
	notifier ports.Notifier,
	uow ports.UnitOfWork,
) *IssueSamanUseCase {
	return &IssueSamanUseCase{
		userRepo:      userRepo,
		vehicleRepo:   vehicleRepo,
		samanRepo:     samanRepo,
		authorityRepo: authorityRepo,
		outbox:        outbox,
		notifier:      notifier,
		uow:           uow,
	}
}

// Execute выписывает штраф.
func (uc *IssueSamanUseCase) Execute(ctx context.Context, cmd dtos.IssueSamanCommand) (*dtos.SamanDTO, error) {
	actorID, err := uuid.Parse(cmd.ActorID)
	if err != nil {
		return nil, errors.ValidationError{Field: "actor_id", Message: "invalid UUID"}
	}
	authorityID, err := uuid.Parse(cmd.AuthorityID)
	if err != nil {
		return nil, errors.ValidationError{Field: "authority_id", Message: "invalid UUID"}
	}

	plate, err := valueobjects.NewPlate(cmd.LicensePlate, cmd.Brand, cmd.Color)
	if err != nil {
		return nil, err
	}

	// Пустая цена - штраф по фиксированному тарифу.
	price := valueobjects.Zero()
	if cmd.Price != "" {
		price, err = valueobjects.NewMoney(cmd.Price)
		if err != nil {
			return nil, errors.ValidationError{Field: "price", Message: fmt.Sprintf("invalid price: %v", err)}
		}
	}

	actor, err := uc.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role().CanIssueSaman() {
		return nil, errors.ErrNotAuthorized
	}

	var result *dtos.SamanDTO
	var vehicleID uuid.UUID

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		vehicle, err := uc.vehicleRepo.FindByPlate(txCtx, plate)
		if err != nil {
			return err
		}
		vehicleID = vehicle.ID()

		if _, err := uc.authorityRepo.FindByID(txCtx, authorityID); err != nil {
			return err
		}

		saman, err := entities.NewSaman(cmd.Offense, time.Now().UTC(), price, vehicle.ID(), authorityID, actorID)
		if err != nil {
			return err
		}

		if err := uc.samanRepo.Save(txCtx, saman); err != nil {
			return err
		}

		event := events.NewSamanIssued(saman.ID(), vehicle.ID(), authorityID, saman.Offense(), saman.Price())
		if err := uc.outbox.Save(txCtx, event); err != nil {
			return err
		}

		dto := dtos.ToSamanDTO(saman)
		result = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifyOwners(ctx, vehicleID, result)

	return result, nil
}

// notifyOwners шлёт SMS/email каждому владельцу. Ошибки нотификации
// не влияют на результат выписки: штраф уже в журнале.
func (uc *IssueSamanUseCase) notifyOwners(ctx context.Context, vehicleID uuid.UUID, saman *dtos.SamanDTO) {
	if uc.notifier == nil {
		return
	}

	owners, err := uc.userRepo.FindOwnersOf(ctx, vehicleID)
	if err != nil {
		return
	}

	body := fmt.Sprintf("Saman issued: %s. Amount: RM%s. Pay via your wallet to avoid further action.", saman.Offense, saman.Price)
	for _, owner := range owners {
		uc.notifier.Notify(ctx, ports.Notification{
			Phone:   owner.Phone(),
			Email:   owner.Email(),
			Subject: "Parking fine issued",
			Body:    body,
		})
	}
}
