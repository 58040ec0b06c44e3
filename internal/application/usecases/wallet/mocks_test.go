// Package wallet - hand-rolled моки портов для unit-тестов.
package wallet

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
	mu        sync.Mutex
	saveFunc  func(ctx context.Context, user *entities.User) error
	findFunc  func(ctx context.Context, id uuid.UUID) (*entities.User, error)
	saveCount int
}

func (m *mockUserRepo) Save(ctx context.Context, user *entities.User) error {
	m.mu.Lock()
	m.saveCount++
	m.mu.Unlock()
	if m.saveFunc != nil {
		return m.saveFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, id)
	}
	return nil, domainErrors.ErrUserNotFound
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

type mockTransactionRepo struct {
	saveFunc          func(ctx context.Context, tx *entities.Transaction) error
	findByOrderIDFunc func(ctx context.Context, orderID string) (*entities.Transaction, error)
	findByUserFunc    func(ctx context.Context, userID uuid.UUID, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, error)
}

func (m *mockTransactionRepo) Save(ctx context.Context, tx *entities.Transaction) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, tx)
	}
	return nil
}

func (m *mockTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	return nil, domainErrors.ErrOrderNotFound
}

func (m *mockTransactionRepo) FindByOrderID(ctx context.Context, orderID string) (*entities.Transaction, error) {
	if m.findByOrderIDFunc != nil {
		return m.findByOrderIDFunc(ctx, orderID)
	}
	return nil, domainErrors.ErrOrderNotFound
}

func (m *mockTransactionRepo) FindByUser(ctx context.Context, userID uuid.UUID, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID, filter, offset, limit)
	}
	return nil, nil
}

func (m *mockTransactionRepo) SumByAuthorityAndRange(ctx context.Context, authorityID uuid.UUID, from, to time.Time) (valueobjects.Money, error) {
	return valueobjects.Zero(), nil
}

func (m *mockTransactionRepo) SumCreditsByDay(ctx context.Context, filter ports.TransactionFilter) ([]ports.DailyCredit, error) {
	return nil, nil
}

type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*entities.PaymentOrder
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*entities.PaymentOrder)}
}

func (m *mockOrderRepo) Save(ctx context.Context, order *entities.PaymentOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.OrderID()] = order
	return nil
}

func (m *mockOrderRepo) FindByOrderID(ctx context.Context, orderID string) (*entities.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	return order, nil
}

type mockGateway struct {
	createFunc   func(ctx context.Context, amount valueobjects.Money) (*ports.GatewayOrder, error)
	captureFunc  func(ctx context.Context, orderID string) (*ports.GatewayCapture, error)
	captureCalls int
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount valueobjects.Money) (*ports.GatewayOrder, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, amount)
	}
	return &ports.GatewayOrder{OrderID: "ORDER-1", ApprovalURL: "https://paypal.test/approve/ORDER-1"}, nil
}

func (m *mockGateway) CaptureOrder(ctx context.Context, orderID string) (*ports.GatewayCapture, error) {
	m.captureCalls++
	if m.captureFunc != nil {
		return m.captureFunc(ctx, orderID)
	}
	return &ports.GatewayCapture{OrderID: orderID, Completed: true, Amount: valueobjects.MustMoney("10.00")}, nil
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

// mockUnitOfWork выполняет fn без настоящей БД-транзакции.
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
