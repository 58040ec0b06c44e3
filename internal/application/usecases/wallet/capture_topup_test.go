package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

func newCaptureFixture(t *testing.T) (*CaptureTopUpUseCase, *entities.User, *mockOrderRepo, *mockGateway, *mockTransactionRepo, *mockOutbox) {
	t.Helper()

	user, err := entities.NewUser("Aisyah", "aisyah@example.com", "$2a$10$hash", "+60123456789")
	if err != nil {
		t.Fatalf("NewUser failed: %v", err)
	}

	userRepo := &mockUserRepo{
		findFunc: func(ctx context.Context, id uuid.UUID) (*entities.User, error) {
			if id == user.ID() {
				return user, nil
			}
			return nil, domainErrors.ErrUserNotFound
		},
	}

	var savedTx *entities.Transaction
	txRepo := &mockTransactionRepo{}
	txRepo.saveFunc = func(ctx context.Context, tx *entities.Transaction) error {
		savedTx = tx
		return nil
	}
	txRepo.findByOrderIDFunc = func(ctx context.Context, orderID string) (*entities.Transaction, error) {
		if savedTx != nil && savedTx.OrderID() == orderID {
			return savedTx, nil
		}
		return nil, domainErrors.ErrOrderNotFound
	}

	orderRepo := newMockOrderRepo()
	gateway := &mockGateway{}
	outbox := &mockOutbox{}

	uc := NewCaptureTopUpUseCase(userRepo, txRepo, orderRepo, gateway, outbox, &mockUnitOfWork{})
	return uc, user, orderRepo, gateway, txRepo, outbox
}

// TestCaptureTopUp_Success тестирует успешный capture: кошелёк кредитован,
// транзакция несёт order_id, ордер помечен captured.
func TestCaptureTopUp_Success(t *testing.T) {
	uc, user, orderRepo, _, _, outbox := newCaptureFixture(t)

	order, err := entities.NewPaymentOrder("ORDER-1", user.ID(), valueobjects.MustMoney("10.00"))
	if err != nil {
		t.Fatalf("NewPaymentOrder failed: %v", err)
	}
	if err := orderRepo.Save(context.Background(), order); err != nil {
		t.Fatalf("Save order failed: %v", err)
	}

	result, err := uc.Execute(context.Background(), dtos.CaptureTopUpCommand{
		UserID:  user.ID().String(),
		OrderID: "ORDER-1",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.AlreadyCaptured {
		t.Error("First capture flagged as replay")
	}
	if result.Balance != "10.00" {
		t.Errorf("Balance = %s, want 10.00", result.Balance)
	}
	if result.Transaction.OrderID != "ORDER-1" {
		t.Errorf("Transaction order id = %q, want ORDER-1", result.Transaction.OrderID)
	}
	if user.WalletBalance().Decimal() != "10.00" {
		t.Errorf("Wallet = %s, want 10.00", user.WalletBalance().Decimal())
	}
	if !order.IsCaptured() {
		t.Error("Order should be captured")
	}
	if len(outbox.saved) != 1 {
		t.Errorf("Outbox events = %d, want 1", len(outbox.saved))
	}
}

// TestCaptureTopUp_Idempotent тестирует повторный capture того же ордера:
// кошелёк не меняется, возвращается исходная транзакция.
func TestCaptureTopUp_Idempotent(t *testing.T) {
	uc, user, orderRepo, gateway, _, _ := newCaptureFixture(t)

	order, _ := entities.NewPaymentOrder("ORDER-1", user.ID(), valueobjects.MustMoney("10.00"))
	_ = orderRepo.Save(context.Background(), order)

	cmd := dtos.CaptureTopUpCommand{UserID: user.ID().String(), OrderID: "ORDER-1"}

	first, err := uc.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("First capture failed: %v", err)
	}

	second, err := uc.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Second capture failed: %v", err)
	}

	if !second.AlreadyCaptured {
		t.Error("Second capture should report AlreadyCaptured")
	}
	if second.Transaction.ID != first.Transaction.ID {
		t.Error("Replay should return the original transaction")
	}
	if user.WalletBalance().Decimal() != "10.00" {
		t.Errorf("Wallet = %s after replay, want 10.00 (single credit)", user.WalletBalance().Decimal())
	}
	if gateway.captureCalls != 1 {
		t.Errorf("Gateway captures = %d, want 1 (replay skips the gateway)", gateway.captureCalls)
	}
}

// TestCaptureTopUp_PaymentIncomplete тестирует незавершённую оплату:
// кошелёк не кредитуется, ордер остаётся pending.
func TestCaptureTopUp_PaymentIncomplete(t *testing.T) {
	uc, user, orderRepo, gateway, _, _ := newCaptureFixture(t)

	order, _ := entities.NewPaymentOrder("ORDER-1", user.ID(), valueobjects.MustMoney("10.00"))
	_ = orderRepo.Save(context.Background(), order)

	gateway.captureFunc = func(ctx context.Context, orderID string) (*ports.GatewayCapture, error) {
		return &ports.GatewayCapture{OrderID: orderID, Completed: false}, nil
	}

	_, err := uc.Execute(context.Background(), dtos.CaptureTopUpCommand{
		UserID:  user.ID().String(),
		OrderID: "ORDER-1",
	})
	if err != domainErrors.ErrPaymentIncomplete {
		t.Fatalf("Execute error = %v, want ErrPaymentIncomplete", err)
	}
	if !user.WalletBalance().IsZero() {
		t.Errorf("Wallet = %s after incomplete payment, want 0.00", user.WalletBalance().Decimal())
	}
	if order.IsCaptured() {
		t.Error("Order must stay pending after incomplete payment")
	}
}

// TestCaptureTopUp_WrongUser тестирует чужой ордер.
func TestCaptureTopUp_WrongUser(t *testing.T) {
	uc, user, orderRepo, _, _, _ := newCaptureFixture(t)

	order, _ := entities.NewPaymentOrder("ORDER-1", user.ID(), valueobjects.MustMoney("10.00"))
	_ = orderRepo.Save(context.Background(), order)

	_, err := uc.Execute(context.Background(), dtos.CaptureTopUpCommand{
		UserID:  uuid.New().String(),
		OrderID: "ORDER-1",
	})
	if err != domainErrors.ErrNotAuthorized {
		t.Fatalf("Execute error = %v, want ErrNotAuthorized", err)
	}
}

// TestCaptureTopUp_UnknownOrder тестирует capture несуществующего ордера.
func TestCaptureTopUp_UnknownOrder(t *testing.T) {
	uc, user, _, _, _, _ := newCaptureFixture(t)

	_, err := uc.Execute(context.Background(), dtos.CaptureTopUpCommand{
		UserID:  user.ID().String(),
		OrderID: "NO-SUCH-ORDER",
	})
	if !domainErrors.IsNotFound(err) {
		t.Fatalf("Execute error = %v, want not-found", err)
	}
}
