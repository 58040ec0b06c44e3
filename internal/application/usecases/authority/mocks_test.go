// Package authority - моки портов для unit-тестов.
package authority

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

type mockUserRepo struct {
	users map[uuid.UUID]*entities.User
}

func newMockUserRepo(users ...*entities.User) *mockUserRepo {
	repo := &mockUserRepo{users: make(map[uuid.UUID]*entities.User)}
	for _, user := range users {
		repo.users[user.ID()] = user
	}
	return repo
}

func (m *mockUserRepo) Save(ctx context.Context, user *entities.User) error {
	m.users[user.ID()] = user
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return nil, domainErrors.ErrUserNotFound
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (m *mockUserRepo) FindOwnersOf(ctx context.Context, vehicleID uuid.UUID) ([]*entities.User, error) {
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context, offset, limit int) ([]*entities.User, error) {
	return nil, nil
}

type mockAuthorityRepo struct {
	authorities map[uuid.UUID]*entities.LocalAuthority
	deleted     []uuid.UUID
}

func newMockAuthorityRepo(authorities ...*entities.LocalAuthority) *mockAuthorityRepo {
	repo := &mockAuthorityRepo{authorities: make(map[uuid.UUID]*entities.LocalAuthority)}
	for _, authority := range authorities {
		repo.authorities[authority.ID()] = authority
	}
	return repo
}

func (m *mockAuthorityRepo) Save(ctx context.Context, authority *entities.LocalAuthority) error {
	m.authorities[authority.ID()] = authority
	return nil
}

func (m *mockAuthorityRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.LocalAuthority, error) {
	authority, ok := m.authorities[id]
	if !ok {
		return nil, domainErrors.ErrAuthorityNotFound
	}
	return authority, nil
}

func (m *mockAuthorityRepo) FindByEmail(ctx context.Context, email string) (*entities.LocalAuthority, error) {
	for _, authority := range m.authorities {
		if authority.Email() == email {
			return authority, nil
		}
	}
	return nil, domainErrors.ErrAuthorityNotFound
}

func (m *mockAuthorityRepo) List(ctx context.Context, offset, limit int) ([]*entities.LocalAuthority, error) {
	var all []*entities.LocalAuthority
	for _, authority := range m.authorities {
		all = append(all, authority)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockAuthorityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.authorities, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// mockTransactionRepo отдаёт фиксированную сумму за любой интервал
// и запоминает, о каком интервале спрашивали.
type mockTransactionRepo struct {
	sum                 valueobjects.Money
	lastFrom            time.Time
	lastTo              time.Time
	sumCreditsByDayFunc func(ctx context.Context, filter ports.TransactionFilter) ([]ports.DailyCredit, error)
}

func (m *mockTransactionRepo) Save(ctx context.Context, tx *entities.Transaction) error {
	return nil
}

func (m *mockTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockTransactionRepo) FindByOrderID(ctx context.Context, orderID string) (*entities.Transaction, error) {
	return nil, domainErrors.ErrEntityNotFound
}

func (m *mockTransactionRepo) FindByUser(ctx context.Context, userID uuid.UUID, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, error) {
	return nil, nil
}

func (m *mockTransactionRepo) SumByAuthorityAndRange(ctx context.Context, authorityID uuid.UUID, from, to time.Time) (valueobjects.Money, error) {
	m.lastFrom = from
	m.lastTo = to
	return m.sum, nil
}

func (m *mockTransactionRepo) SumCreditsByDay(ctx context.Context, filter ports.TransactionFilter) ([]ports.DailyCredit, error) {
	if m.sumCreditsByDayFunc != nil {
		return m.sumCreditsByDayFunc(ctx, filter)
	}
	return nil, nil
}

type mockUnitOfWork struct{}

func (m *mockUnitOfWork) Execute(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (m *mockUnitOfWork) ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	return fn(ctx)
}

func (m *mockUnitOfWork) ExecuteWithRetry(ctx context.Context, maxAttempts int, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil || !domainErrors.IsRetryableConflict(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
