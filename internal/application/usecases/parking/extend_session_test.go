package parking

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/domain/entities"
	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

type extendFixture struct {
	uc       *ExtendSessionUseCase
	user     *entities.User
	session  *entities.ParkingSession
	users    *casUserStore
	sessions *mockSessionRepo
	txRepo   *mockTransactionRepo
}

func newExtendFixture(t *testing.T, balance string) *extendFixture {
	t.Helper()

	user, err := entities.NewUser("Aisyah", "aisyah@example.com", "$2a$10$hash", "+60123456789")
	if err != nil {
		t.Fatalf("NewUser failed: %v", err)
	}
	if err := user.Credit(valueobjects.MustMoney(balance)); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	plate, _ := valueobjects.NewPlate("WXY1234", "Perodua", "red")
	vehicle, _ := entities.NewVehicle(plate, user.ID())

	authority, err := entities.NewLocalAuthority("MBJB", "MBJB", "admin@mbjb.gov.my", "+6072223344", "Johor Bahru", "Johor")
	if err != nil {
		t.Fatalf("NewLocalAuthority failed: %v", err)
	}

	session, err := entities.NewParkingSession(time.Now().UTC(), 60, authority.ID(), vehicle.ID(), user.ID())
	if err != nil {
		t.Fatalf("NewParkingSession failed: %v", err)
	}

	users := newCASUserStore(user)
	sessions := newMockSessionRepo(session)
	txRepo := &mockTransactionRepo{}

	uc := NewExtendSessionUseCase(
		users, newMockVehicleRepo(vehicle), sessions, txRepo,
		newMockAuthorityRepo(authority), &mockOutbox{}, &mockCache{}, &mockUnitOfWork{},
	)
	return &extendFixture{uc: uc, user: user, session: session, users: users, sessions: sessions, txRepo: txRepo}
}

// TestExtendSession_Success тестирует продление: +30 минут, доплата
// списана, end_time сдвинут ровно на доплаченное время.
func TestExtendSession_Success(t *testing.T) {
	f := newExtendFixture(t, "10.00")
	endBefore := f.session.EndTime()

	result, err := f.uc.Execute(context.Background(), dtos.ExtendSessionCommand{
		UserID:            f.user.ID().String(),
		SessionID:         f.session.ID().String(),
		AdditionalMinutes: 30,
		Price:             "3.25",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Session.DurationMinutes != 90 {
		t.Errorf("Duration = %d, want 90", result.Session.DurationMinutes)
	}
	if !result.Session.EndTime.Equal(endBefore.Add(30 * time.Minute)) {
		t.Errorf("EndTime = %v, want %v", result.Session.EndTime, endBefore.Add(30*time.Minute))
	}
	if result.Balance != "6.75" {
		t.Errorf("Balance = %s, want 6.75", result.Balance)
	}
}

// TestExtendSession_CompletedRejected тестирует продление завершённой
// сессии: SessionNotOngoing, кошелёк и сессия остаются нетронутыми.
func TestExtendSession_CompletedRejected(t *testing.T) {
	f := newExtendFixture(t, "10.00")
	f.session.Terminate()
	endBefore := f.session.EndTime()

	_, err := f.uc.Execute(context.Background(), dtos.ExtendSessionCommand{
		UserID:            f.user.ID().String(),
		SessionID:         f.session.ID().String(),
		AdditionalMinutes: 30,
		Price:             "3.25",
	})
	if !stderrors.Is(err, domainErrors.ErrSessionNotOngoing) {
		t.Fatalf("Execute error = %v, want ErrSessionNotOngoing", err)
	}

	if got := f.users.balanceOf(f.user.ID()); got.Decimal() != "10.00" {
		t.Errorf("Balance changed on rejected extension: %s", got.Decimal())
	}
	if !f.session.EndTime().Equal(endBefore) {
		t.Error("EndTime changed on rejected extension")
	}
	if f.txRepo.count() != 0 {
		t.Error("Rejected extension must not write to the ledger")
	}
}

// TestExtendSession_InsufficientFunds тестирует отказ по балансу:
// сессия не продлевается.
func TestExtendSession_InsufficientFunds(t *testing.T) {
	f := newExtendFixture(t, "1.00")

	_, err := f.uc.Execute(context.Background(), dtos.ExtendSessionCommand{
		UserID:            f.user.ID().String(),
		SessionID:         f.session.ID().String(),
		AdditionalMinutes: 30,
		Price:             "3.25",
	})
	if !stderrors.Is(err, domainErrors.ErrInsufficientFunds) {
		t.Fatalf("Execute error = %v, want ErrInsufficientFunds", err)
	}
}
