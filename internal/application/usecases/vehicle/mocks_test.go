// Package vehicle - моки портов для unit-тестов.
package vehicle

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

type mockUserRepo struct {
	mu    sync.Mutex
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID()] = user
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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

type mockVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*entities.Vehicle

	// failSavesWith заставляет Save возвращать ошибку первые
	// failSavesLeft вызовов - для retry-тестов.
	failSavesWith error
	failSavesLeft int
	saveCalls     int
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
	m.saveCalls++
	if m.failSavesLeft != 0 && m.failSavesWith != nil {
		if m.failSavesLeft > 0 {
			m.failSavesLeft--
		}
		return m.failSavesWith
	}
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
	return cloneVehicle(vehicle), nil
}

func (m *mockVehicleRepo) FindByPlate(ctx context.Context, plate valueobjects.Plate) (*entities.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, vehicle := range m.vehicles {
		if vehicle.Plate() == plate {
			return cloneVehicle(vehicle), nil
		}
	}
	return nil, domainErrors.ErrVehicleNotFound
}

// Клон, как из настоящей БД: мутации не видны до Save.
func cloneVehicle(v *entities.Vehicle) *entities.Vehicle {
	return entities.ReconstructVehicle(v.ID(), v.Plate(), v.OwnerIDs(), v.CreatedAt(), v.UpdatedAt())
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

func (m *mockVehicleRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vehicles)
}

type mockSessionRepo struct {
	ongoing map[uuid.UUID]*entities.ParkingSession
}

func newMockSessionRepo(sessions ...*entities.ParkingSession) *mockSessionRepo {
	repo := &mockSessionRepo{ongoing: make(map[uuid.UUID]*entities.ParkingSession)}
	for _, session := range sessions {
		repo.ongoing[session.VehicleID()] = session
	}
	return repo
}

func (m *mockSessionRepo) Save(ctx context.Context, session *entities.ParkingSession) error {
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.ParkingSession, error) {
	return nil, domainErrors.ErrSessionNotFound
}

func (m *mockSessionRepo) FindOngoingByVehicle(ctx context.Context, vehicleID uuid.UUID) (*entities.ParkingSession, error) {
	session, ok := m.ongoing[vehicleID]
	if !ok {
		return nil, domainErrors.ErrSessionNotFound
	}
	return session, nil
}

func (m *mockSessionRepo) FindByCreator(ctx context.Context, userID uuid.UUID, status entities.SessionStatus, offset, limit int) ([]*entities.ParkingSession, error) {
	return nil, nil
}

func (m *mockSessionRepo) FindExpired(ctx context.Context, asOf time.Time, limit int) ([]*entities.ParkingSession, error) {
	return nil, nil
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
	mu      sync.Mutex
	entries map[string]*ports.EnforcementStatus
	gets    int
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*ports.EnforcementStatus)}
}

func (m *mockCache) Get(ctx context.Context, plateKey string) (*ports.EnforcementStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	return m.entries[plateKey], nil
}

func (m *mockCache) Set(ctx context.Context, plateKey string, status *ports.EnforcementStatus, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.entries[plateKey] = status
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, plateKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, plateKey)
	return nil
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
