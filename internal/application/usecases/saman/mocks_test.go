// Package saman - моки портов для unit-тестов.
package saman

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/events"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// casUserStore имитирует таблицу users с optimistic locking:
// FindByID отдаёт клон, Save проходит только если версия
// ровно на единицу выше сохранённой.
type casUserStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*entities.User
	owners map[uuid.UUID][]uuid.UUID // vehicleID -> userIDs
}

func newCASUserStore(users ...*entities.User) *casUserStore {
	store := &casUserStore{
		users:  make(map[uuid.UUID]*entities.User),
		owners: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, user := range users {
		store.users[user.ID()] = user
	}
	return store
}

func cloneUser(u *entities.User) *entities.User {
	return entities.ReconstructUser(
		u.ID(), u.Name(), u.Email(), u.PasswordHash(), u.Phone(),
		u.Role(), u.WalletBalance(), u.WalletVersion(),
		u.DefaultVehicleID(), u.CreatedAt(), u.UpdatedAt(),
	)
}

func (s *casUserStore) Save(ctx context.Context, user *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID()]
	if ok && user.WalletVersion() != stored.WalletVersion()+1 {
		return domainErrors.NewTransientConflict("User", "wallet was modified concurrently")
	}
	s.users[user.ID()] = cloneUser(user)
	return nil
}

func (s *casUserStore) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *casUserStore) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return nil, domainErrors.ErrUserNotFound
}

func (s *casUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (s *casUserStore) FindOwnersOf(ctx context.Context, vehicleID uuid.UUID) ([]*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*entities.User
	for _, userID := range s.owners[vehicleID] {
		if user, ok := s.users[userID]; ok {
			result = append(result, cloneUser(user))
		}
	}
	return result, nil
}

func (s *casUserStore) List(ctx context.Context, offset, limit int) ([]*entities.User, error) {
	return nil, nil
}

func (s *casUserStore) balanceOf(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].WalletBalance().Decimal()
}

type mockVehicleRepo struct {
	vehicles map[uuid.UUID]*entities.Vehicle
}

func newMockVehicleRepo(vehicles ...*entities.Vehicle) *mockVehicleRepo {
	repo := &mockVehicleRepo{vehicles: make(map[uuid.UUID]*entities.Vehicle)}
	for _, vehicle := range vehicles {
		repo.vehicles[vehicle.ID()] = vehicle
	}
	return repo
}

func (m *mockVehicleRepo) Save(ctx context.Context, vehicle *entities.Vehicle) error {
	m.vehicles[vehicle.ID()] = vehicle
	return nil
}

func (m *mockVehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Vehicle, error) {
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, domainErrors.ErrVehicleNotFound
	}
	return vehicle, nil
}

func (m *mockVehicleRepo) FindByPlate(ctx context.Context, plate valueobjects.Plate) (*entities.Vehicle, error) {
	for _, vehicle := range m.vehicles {
		if vehicle.Plate() == plate {
			return vehicle, nil
		}
	}
	return nil, domainErrors.ErrVehicleNotFound
}

func (m *mockVehicleRepo) FindByOwner(ctx context.Context, userID uuid.UUID) ([]*entities.Vehicle, error) {
	var result []*entities.Vehicle
	for _, vehicle := range m.vehicles {
		if vehicle.IsOwnedBy(userID) {
			result = append(result, vehicle)
		}
	}
	return result, nil
}

type mockSamanRepo struct {
	mu     sync.Mutex
	samans map[uuid.UUID]*entities.Saman
}

func newMockSamanRepo(samans ...*entities.Saman) *mockSamanRepo {
	repo := &mockSamanRepo{samans: make(map[uuid.UUID]*entities.Saman)}
	for _, saman := range samans {
		repo.samans[saman.ID()] = saman
	}
	return repo
}

func cloneSaman(s *entities.Saman) *entities.Saman {
	return entities.ReconstructSaman(
		s.ID(), s.Offense(), s.IssuedAt(), s.Price(),
		s.VehicleID(), s.AuthorityID(), s.CreatorID(),
		s.Status(), s.CreatedAt(), s.UpdatedAt(),
	)
}

func (m *mockSamanRepo) Save(ctx context.Context, saman *entities.Saman) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samans[saman.ID()] = cloneSaman(saman)
	return nil
}

func (m *mockSamanRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Saman, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saman, ok := m.samans[id]
	if !ok {
		return nil, domainErrors.ErrSamanNotFound
	}
	return cloneSaman(saman), nil
}

func (m *mockSamanRepo) FindByVehicles(ctx context.Context, vehicleIDs []uuid.UUID, offset, limit int) ([]*entities.Saman, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(vehicleIDs))
	for _, id := range vehicleIDs {
		wanted[id] = true
	}
	var result []*entities.Saman
	for _, saman := range m.samans {
		if wanted[saman.VehicleID()] {
			result = append(result, cloneSaman(saman))
		}
	}
	return result, nil
}

func (m *mockSamanRepo) List(ctx context.Context, filter ports.SamanFilter, offset, limit int) ([]*entities.Saman, error) {
	return nil, nil
}

func (m *mockSamanRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samans)
}

type mockTransactionRepo struct {
	mu    sync.Mutex
	saved []*entities.Transaction
}

func (m *mockTransactionRepo) Save(ctx context.Context, tx *entities.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, tx)
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
	return valueobjects.Zero(), nil
}

func (m *mockTransactionRepo) SumCreditsByDay(ctx context.Context, filter ports.TransactionFilter) ([]ports.DailyCredit, error) {
	return nil, nil
}

func (m *mockTransactionRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

type mockAuthorityRepo struct {
	mu          sync.Mutex
	authorities map[uuid.UUID]*entities.LocalAuthority
}

func newMockAuthorityRepo(authorities ...*entities.LocalAuthority) *mockAuthorityRepo {
	repo := &mockAuthorityRepo{authorities: make(map[uuid.UUID]*entities.LocalAuthority)}
	for _, authority := range authorities {
		repo.authorities[authority.ID()] = authority
	}
	return repo
}

func cloneAuthority(a *entities.LocalAuthority) *entities.LocalAuthority {
	return entities.ReconstructLocalAuthority(
		a.ID(), a.Name(), a.Nickname(), a.Email(), a.Phone(), a.Area(), a.State(),
		a.Income(), a.TotalIncome(), a.Version(), a.CreatedAt(), a.UpdatedAt(),
	)
}

func (m *mockAuthorityRepo) Save(ctx context.Context, authority *entities.LocalAuthority) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authorities[authority.ID()] = cloneAuthority(authority)
	return nil
}

func (m *mockAuthorityRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.LocalAuthority, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	authority, ok := m.authorities[id]
	if !ok {
		return nil, domainErrors.ErrAuthorityNotFound
	}
	// Клон, как из настоящей БД: мутации не видны до Save.
	return cloneAuthority(authority), nil
}

func (m *mockAuthorityRepo) FindByEmail(ctx context.Context, email string) (*entities.LocalAuthority, error) {
	return nil, domainErrors.ErrAuthorityNotFound
}

func (m *mockAuthorityRepo) List(ctx context.Context, offset, limit int) ([]*entities.LocalAuthority, error) {
	return nil, nil
}

func (m *mockAuthorityRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockAuthorityRepo) incomeOf(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authorities[id].Income().Decimal()
}

type mockOutbox struct {
	mu    sync.Mutex
	saved []events.DomainEvent
}

func (m *mockOutbox) Save(ctx context.Context, event events.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, event)
	return nil
}

func (m *mockOutbox) FindUnpublished(ctx context.Context, limit int) ([]ports.OutboxEntry, error) {
	return nil, nil
}

func (m *mockOutbox) MarkPublished(ctx context.Context, eventID string) error { return nil }

func (m *mockOutbox) MarkFailed(ctx context.Context, eventID string, reason string) error {
	return nil
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (m *mockNotifier) Notify(ctx context.Context, n ports.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
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
