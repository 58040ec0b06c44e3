// Package authority - запросы: справочник authorities и отчёты.
package authority

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/errors"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GetAuthorityUseCase возвращает authority по ID.
type GetAuthorityUseCase struct {
	authorityRepo ports.AuthorityRepository
}

// NewGetAuthorityUseCase создаёт новый use case.
func NewGetAuthorityUseCase(authorityRepo ports.AuthorityRepository) *GetAuthorityUseCase {
	return &GetAuthorityUseCase{authorityRepo: authorityRepo}
}

// Execute возвращает authority.
func (uc *GetAuthorityUseCase) Execute(ctx context.Context, query dtos.GetAuthorityQuery) (*dtos.AuthorityDTO, error) {
	authorityID, err := uuid.Parse(query.AuthorityID)
	if err != nil {
		return nil, errors.ValidationError{Field: "authority_id", Message: "invalid UUID"}
	}

	authority, err := uc.authorityRepo.FindByID(ctx, authorityID)
	if err != nil {
		return nil, err
	}

	dto := dtos.ToAuthorityDTO(authority)
	return &dto, nil
}

// ListAuthoritiesUseCase возвращает страницу authorities.
type ListAuthoritiesUseCase struct {
	authorityRepo ports.AuthorityRepository
}

// NewListAuthoritiesUseCase создаёт новый use case.
func NewListAuthoritiesUseCase(authorityRepo ports.AuthorityRepository) *ListAuthoritiesUseCase {
	return &ListAuthoritiesUseCase{authorityRepo: authorityRepo}
}

// Execute возвращает список authorities.
func (uc *ListAuthoritiesUseCase) Execute(ctx context.Context, query dtos.ListAuthoritiesQuery) (*dtos.AuthorityListDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	authorities, err := uc.authorityRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	return &dtos.AuthorityListDTO{
		Authorities: dtos.ToAuthorityDTOList(authorities),
		Offset:      offset,
		Limit:       limit,
	}, nil
}

// DailyIncomeUseCase считает доход authority за календарные сутки UTC.
//
// Источник - журнал транзакций, а не running income: отчёт за прошлые
// даты не должен зависеть от payout-ресетов.
type DailyIncomeUseCase struct {
	authorityRepo ports.AuthorityRepository
	txRepo        ports.TransactionRepository
}

// NewDailyIncomeUseCase создаёт новый use case.
func NewDailyIncomeUseCase(authorityRepo ports.AuthorityRepository, txRepo ports.TransactionRepository) *DailyIncomeUseCase {
	return &DailyIncomeUseCase{authorityRepo: authorityRepo, txRepo: txRepo}
}

// Execute возвращает отчёт за сутки.
func (uc *DailyIncomeUseCase) Execute(ctx context.Context, query dtos.DailyIncomeQuery) (*dtos.DailyIncomeDTO, error) {
	authorityID, err := uuid.Parse(query.AuthorityID)
	if err != nil {
		return nil, errors.ValidationError{Field: "authority_id", Message: "invalid UUID"}
	}

	day, err := time.ParseInLocation("2006-01-02", query.Date, time.UTC)
	if err != nil {
		return nil, errors.ValidationError{Field: "date", Message: "expected YYYY-MM-DD"}
	}

	if _, err := uc.authorityRepo.FindByID(ctx, authorityID); err != nil {
		return nil, err
	}

	// Полуинтервал [00:00, 00:00 следующего дня).
	income, err := uc.txRepo.SumByAuthorityAndRange(ctx, authorityID, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	return &dtos.DailyIncomeDTO{
		AuthorityID: query.AuthorityID,
		Date:        query.Date,
		Income:      income.Decimal(),
	}, nil
}

// IncomeReportUseCase группирует все кредиты ("in") платформы по
// календарным суткам UTC. Суммы считаются в minor units и
// конвертируются единым money-кодеком на выходе.
type IncomeReportUseCase struct {
	txRepo ports.TransactionRepository
}

// NewIncomeReportUseCase создаёт новый use case.
func NewIncomeReportUseCase(txRepo ports.TransactionRepository) *IncomeReportUseCase {
	return &IncomeReportUseCase{txRepo: txRepo}
}

// Execute возвращает отчёт (date, total) по дням.
func (uc *IncomeReportUseCase) Execute(ctx context.Context, query dtos.IncomeReportQuery) (*dtos.IncomeReportDTO, error) {
	var filter ports.TransactionFilter

	if query.From != "" {
		from, err := time.ParseInLocation("2006-01-02", query.From, time.UTC)
		if err != nil {
			return nil, errors.ValidationError{Field: "from", Message: "expected YYYY-MM-DD"}
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.ParseInLocation("2006-01-02", query.To, time.UTC)
		if err != nil {
			return nil, errors.ValidationError{Field: "to", Message: "expected YYYY-MM-DD"}
		}
		// Порядок проверяем до расширения to включительной даты до +24h.
		if filter.From != nil && to.Before(*filter.From) {
			return nil, errors.ValidationError{Field: "to", Message: "must not be before from"}
		}
		end := to.Add(24 * time.Hour)
		filter.To = &end
	}

	credits, err := uc.txRepo.SumCreditsByDay(ctx, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]dtos.IncomeByDayDTO, 0, len(credits))
	for _, credit := range credits {
		entries = append(entries, dtos.IncomeByDayDTO{
			Date:  credit.Day.UTC().Format("2006-01-02"),
			Total: credit.Total.Decimal(),
		})
	}

	return &dtos.IncomeReportDTO{Entries: entries}, nil
}
