// Package user - моки портов для unit-тестов.
package user

import (
	"context"
	"fmt"
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
	for _, user := range m.users {
		if user.Email() == email {
			return user, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

func (m *mockUserRepo) FindOwnersOf(ctx context.Context, vehicleID uuid.UUID) ([]*entities.User, error) {
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context, offset, limit int) ([]*entities.User, error) {
	var all []*entities.User
	for _, user := range m.users {
		all = append(all, user)
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
	return nil, domainErrors.ErrVehicleNotFound
}

func (m *mockVehicleRepo) FindByOwner(ctx context.Context, userID uuid.UUID) ([]*entities.Vehicle, error) {
	return nil, nil
}

// fakeHasher - обратимый "хэш" для тестов: bcrypt здесь не нужен.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

type fakeTokenService struct{}

func (fakeTokenService) Generate(user *entities.User) (string, time.Time, error) {
	return "token-" + user.ID().String(), time.Now().UTC().Add(time.Hour), nil
}

func (fakeTokenService) Validate(token string) (*ports.TokenClaims, error) {
	return nil, fmt.Errorf("not implemented")
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
