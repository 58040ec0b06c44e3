// Package authority - use cases управления местными властями.
//
// Все write-операции admin-only: authority - это справочник платформы,
// а не пользовательские данные.
package authority

import (
	"context"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	"github.com/mypark/parkwallet/internal/domain/errors"
)

// adminGate проверяет, что actor существует и является админом.
func adminGate(ctx context.Context, userRepo ports.UserRepository, actorID string) error {
	id, err := uuid.Parse(actorID)
	if err != nil {
		return errors.ValidationError{Field: "actor_id", Message: "invalid UUID"}
	}
	actor, err := userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role() != entities.RoleAdmin {
		return errors.ErrNotAuthorized
	}
	return nil
}

// CreateAuthorityUseCase регистрирует новую authority.
type CreateAuthorityUseCase struct {
	userRepo      ports.UserRepository
	authorityRepo ports.AuthorityRepository
	uow           ports.UnitOfWork
}

// NewCreateAuthorityUseCase создаёт новый use case.
func NewCreateAuthorityUseCase(userRepo ports.UserRepository, authorityRepo ports.AuthorityRepository, uow ports.UnitOfWork) *CreateAuthorityUseCase {
	return &CreateAuthorityUseCase{userRepo: userRepo, authorityRepo: authorityRepo, uow: uow}
}

// Execute регистрирует authority.
func (uc *CreateAuthorityUseCase) Execute(ctx context.Context, cmd dtos.CreateAuthorityCommand) (*dtos.AuthorityDTO, error) {
	if err := adminGate(ctx, uc.userRepo, cmd.ActorID); err != nil {
		return nil, err
	}

	if existing, err := uc.authorityRepo.FindByEmail(ctx, cmd.Email); err == nil && existing != nil {
		return nil, errors.NewConflict("LocalAuthority", "email is already registered")
	} else if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}

	authority, err := entities.NewLocalAuthority(cmd.Name, cmd.Nickname, cmd.Email, cmd.Phone, cmd.Area, cmd.State)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		return uc.authorityRepo.Save(txCtx, authority)
	})
	if err != nil {
		return nil, err
	}

	dto := dtos.ToAuthorityDTO(authority)
	return &dto, nil
}

// UpdateAuthorityUseCase обновляет реквизиты authority.
type UpdateAuthorityUseCase struct {
	userRepo      ports.UserRepository
	authorityRepo ports.AuthorityRepository
	uow           ports.UnitOfWork
}

// NewUpdateAuthorityUseCase создаёт новый use case.
func NewUpdateAuthorityUseCase(userRepo ports.UserRepository, authorityRepo ports.AuthorityRepository, uow ports.UnitOfWork) *UpdateAuthorityUseCase {
	return &UpdateAuthorityUseCase{userRepo: userRepo, authorityRepo: authorityRepo, uow: uow}
}

// Execute обновляет authority.
func (uc *UpdateAuthorityUseCase) Execute(ctx context.Context, cmd dtos.UpdateAuthorityCommand) (*dtos.AuthorityDTO, error) {
	if err := adminGate(ctx, uc.userRepo, cmd.ActorID); err != nil {
		return nil, err
	}
	authorityID, err := uuid.Parse(cmd.AuthorityID)
	if err != nil {
		return nil, errors.ValidationError{Field: "authority_id", Message: "invalid UUID"}
	}

	var result *dtos.AuthorityDTO
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		authority, err := uc.authorityRepo.FindByID(txCtx, authorityID)
		if err != nil {
			return err
		}
		if err := authority.UpdateDetails(cmd.Name, cmd.Nickname, cmd.Email, cmd.Phone, cmd.Area, cmd.State); err != nil {
			return err
		}
		if err := uc.authorityRepo.Save(txCtx, authority); err != nil {
			return err
		}
		dto := dtos.ToAuthorityDTO(authority)
		result = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResetIncomeUseCase - payout-checkpoint: running income в ноль,
// lifetime total не трогаем.
type ResetIncomeUseCase struct {
	userRepo      ports.UserRepository
	authorityRepo ports.AuthorityRepository
	uow           ports.UnitOfWork
}

// NewResetIncomeUseCase создаёт новый use case.
func NewResetIncomeUseCase(userRepo ports.UserRepository, authorityRepo ports.AuthorityRepository, uow ports.UnitOfWork) *ResetIncomeUseCase {
	return &ResetIncomeUseCase{userRepo: userRepo, authorityRepo: authorityRepo, uow: uow}
}

// Execute обнуляет running income.
func (uc *ResetIncomeUseCase) Execute(ctx context.Context, cmd dtos.ResetIncomeCommand) (*dtos.AuthorityDTO, error) {
	if err := adminGate(ctx, uc.userRepo, cmd.ActorID); err != nil {
		return nil, err
	}
	authorityID, err := uuid.Parse(cmd.AuthorityID)
	if err != nil {
		return nil, errors.ValidationError{Field: "authority_id", Message: "invalid UUID"}
	}

	var result *dtos.AuthorityDTO
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		authority, err := uc.authorityRepo.FindByID(txCtx, authorityID)
		if err != nil {
			return err
		}
		authority.ResetIncome()
		if err := uc.authorityRepo.Save(txCtx, authority); err != nil {
			return err
		}
		dto := dtos.ToAuthorityDTO(authority)
		result = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAuthorityUseCase удаляет authority. Исторические транзакции
// и штрафы остаются в журнале.
type DeleteAuthorityUseCase struct {
	userRepo      ports.UserRepository
	authorityRepo ports.AuthorityRepository
	uow           ports.UnitOfWork
}

// NewDeleteAuthorityUseCase создаёт новый use case.
func NewDeleteAuthorityUseCase(userRepo ports.UserRepository, authorityRepo ports.AuthorityRepository, uow ports.UnitOfWork) *DeleteAuthorityUseCase {
	return &DeleteAuthorityUseCase{userRepo: userRepo, authorityRepo: authorityRepo, uow: uow}
}

// Execute удаляет authority.
func (uc *DeleteAuthorityUseCase) Execute(ctx context.Context, cmd dtos.DeleteAuthorityCommand) error {
	if err := adminGate(ctx, uc.userRepo, cmd.ActorID); err != nil {
		return err
	}
	authorityID, err := uuid.Parse(cmd.AuthorityID)
	if err != nil {
		return errors.ValidationError{Field: "authority_id", Message: "invalid UUID"}
	}

	return uc.uow.Execute(ctx, func(txCtx context.Context) error {
		if _, err := uc.authorityRepo.FindByID(txCtx, authorityID); err != nil {
			return err
		}
		return uc.authorityRepo.Delete(txCtx, authorityID)
	})
}
