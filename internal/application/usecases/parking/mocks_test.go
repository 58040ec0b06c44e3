// Package parking - моки портов. casUserStore воспроизводит семантику
// optimistic locking настоящего репозитория: Save принимает entity
// только если её версия ровно на единицу новее сохранённой, иначе
// возвращает transient conflict.
package parking

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

// ============================================
// CAS-aware user store
// ============================================

type casUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entities.User
}

func newCASUserStore(users ...*entities.User) *casUserStore {
	store := &casUserStore{users: make(map[uuid.UUID]*entities.User)}
	for _, user := range users {
		store.users[user.ID()] = user
	}
	return store
}

func cloneUser(user *entities.User) *entities.User {
	return entities.ReconstructUser(
		user.ID(), user.Name(), user.Email(), user.PasswordHash(), user.Phone(),
		user.Role(), user.WalletBalance(), user.WalletVersion(),
		user.DefaultVehicleID(), user.CreatedAt(), user.UpdatedAt(),
	)
}

func (s *casUserStore) Save(ctx context.Context, user *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID()]
	if !ok {
		s.users[user.ID()] = cloneUser(user)
		return nil
	}
	if user.WalletVersion() != stored.WalletVersion()+1 {
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
	return nil, nil
}

func (s *casUserStore) List(ctx context.Context, offset, limit int) ([]*entities.User, error) {
	return nil, nil
}

// balanceOf - текущее сохранённое состояние кошелька.
func (s *casUserStore) balanceOf(id uuid.UUID) valueobjects.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].WalletBalance()
}

// ============================================
// Vehicle repository
// ============================================

type mockVehicleRepo struct {
	mu       sync.Mutex
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID()] = vehicle
	return nil
}

func (m *mockVehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, domainErrors.ErrVehicleNotFound
	}
	return vehicle, nil
}

func (m *mockVehicleRepo) FindByPlate(ctx context.Context, plate valueobjects.Plate) (*entities.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, vehicle := range m.vehicles {
		if vehicle.Plate() == plate {
			return vehicle, nil
		}
	}
	return nil, domainErrors.ErrVehicleNotFound
}

func (m *mockVehicleRepo) FindByOwner(ctx context.Context, userID uuid.UUID) ([]*entities.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entities.Vehicle
	for _, vehicle := range m.vehicles {
		if vehicle.IsOwnedBy(userID) {
			result = append(result, vehicle)
		}
	}
	return result, nil
}

// ============================================
// Session repository
// ============================================

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entities.ParkingSession
}

func newMockSessionRepo(sessions ...*entities.ParkingSession) *mockSessionRepo {
	repo := &mockSessionRepo{sessions: make(map[uuid.UUID]*entities.ParkingSession)}
	for _, session := range sessions {
		repo.sessions[session.ID()] = session
	}
	return repo
}

func (m *mockSessionRepo) Save(ctx context.Context, session *entities.ParkingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID()] = session
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.ParkingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domainErrors.ErrSessionNotFound
	}
	return session, nil
}

func (m *mockSessionRepo) FindOngoingByVehicle(ctx context.Context, vehicleID uuid.UUID) (*entities.ParkingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, session := range m.sessions {
		if session.VehicleID() == vehicleID && session.IsOngoing() {
			return session, nil
		}
	}
	return nil, domainErrors.ErrSessionNotFound
}

func (m *mockSessionRepo) FindByCreator(ctx context.Context, userID uuid.UUID, status entities.SessionStatus, offset, limit int) ([]*entities.ParkingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entities.ParkingSession
	for _, session := range m.sessions {
		if session.CreatorID() != userID {
			continue
		}
		if status != "" && session.Status() != status {
			continue
		}
		result = append(result, session)
	}
	return result, nil
}

func (m *mockSessionRepo) FindExpired(ctx context.Context, asOf time.Time, limit int) ([]*entities.ParkingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entities.ParkingSession
	for _, session := range m.sessions {
		if session.IsOngoing() && session.EndTime().Before(asOf) {
			result = append(result, session)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// ============================================
// Transaction / authority / outbox / cache
// ============================================

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
	return nil, domainErrors.ErrOrderNotFound
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

func (m *mockAuthorityRepo) Save(ctx context.Context, authority *entities.LocalAuthority) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authorities[authority.ID()] = authority
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
	return entities.ReconstructLocalAuthority(
		authority.ID(), authority.Name(), authority.Nickname(), authority.Email(),
		authority.Phone(), authority.Area(), authority.State(),
		authority.Income(), authority.TotalIncome(), authority.Version(),
		authority.CreatedAt(), authority.UpdatedAt(),
	), nil
}

func (m *mockAuthorityRepo) FindByEmail(ctx context.Context, email string) (*entities.LocalAuthority, error) {
	return nil, domainErrors.ErrAuthorityNotFound
}

func (m *mockAuthorityRepo) List(ctx context.Context, offset, limit int) ([]*entities.LocalAuthority, error) {
	return nil, nil
}

func (m *mockAuthorityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.authorities, id)
	return nil
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

type mockCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (m *mockCache) Get(ctx context.Context, plateKey string) (*ports.EnforcementStatus, error) {
	return nil, nil
}

func (m *mockCache) Set(ctx context.Context, plateKey string, status *ports.EnforcementStatus, ttl time.Duration) error {
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, plateKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, plateKey)
	return nil
}

// mockUnitOfWork выполняет fn без настоящей БД-транзакции. Retry-ветка
// повторяет семантику настоящего UnitOfWork: новая попытка только при
// retryable-конфликте.
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
