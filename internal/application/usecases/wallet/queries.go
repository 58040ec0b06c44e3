// Package wallet - read-only запросы: баланс и журнал.
package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// GetWalletUseCase возвращает текущий баланс кошелька.
type GetWalletUseCase struct {
	userRepo ports.UserRepository
}

// NewGetWalletUseCase создаёт новый use case.
func NewGetWalletUseCase(userRepo ports.UserRepository) *GetWalletUseCase {
	return &GetWalletUseCase{userRepo: userRepo}
}

// Execute возвращает баланс.
func (uc *GetWalletUseCase) Execute(ctx context.Context, query dtos.GetWalletQuery) (*dtos.WalletDTO, error) {
	userID, err := uuid.Parse(query.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	user, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dtos.WalletDTO{
		UserID:   user.ID().String(),
		Balance:  user.WalletBalance().Decimal(),
		Currency: valueobjects.CurrencyCode,
	}, nil
}

// ListTransactionsUseCase возвращает страницу журнала, новые первыми.
type ListTransactionsUseCase struct {
	userRepo ports.UserRepository
	txRepo   ports.TransactionRepository
}

// NewListTransactionsUseCase создаёт новый use case.
func NewListTransactionsUseCase(userRepo ports.UserRepository, txRepo ports.TransactionRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{userRepo: userRepo, txRepo: txRepo}
}

// Execute возвращает журнал пользователя.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, query dtos.ListTransactionsQuery) (*dtos.TransactionListDTO, error) {
	userID, err := uuid.Parse(query.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "user_id", Message: "invalid UUID"}
	}

	if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	filter, err := parseRangeFilter(query.From, query.To)
	if err != nil {
		return nil, err
	}

	transactions, err := uc.txRepo.FindByUser(ctx, userID, filter, query.Offset, limit)
	if err != nil {
		return nil, err
	}

	return &dtos.TransactionListDTO{
		Transactions: dtos.ToTransactionDTOList(transactions),
		Offset:       query.Offset,
		Limit:        limit,
	}, nil
}

// parseRangeFilter превращает включительные даты "2006-01-02" в
// полуинтервал [from, to+24h) в UTC. Порядок дат проверяется до
// расширения to: иначе to на день раньше from проскочил бы проверку.
func parseRangeFilter(from, to string) (ports.TransactionFilter, error) {
	var filter ports.TransactionFilter

	if from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, time.UTC)
		if err != nil {
			return filter, errors.ValidationError{Field: "from", Message: "invalid date, expected YYYY-MM-DD"}
		}
		filter.From = &t
	}

	if to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, time.UTC)
		if err != nil {
			return filter, errors.ValidationError{Field: "to", Message: "invalid date, expected YYYY-MM-DD"}
		}
		if filter.From != nil && t.Before(*filter.From) {
			return filter, errors.ValidationError{Field: "to", Message: "must not be before from"}
		}
		end := t.Add(24 * time.Hour)
		filter.To = &end
	}

	return filter, nil
}
