package parking

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/domain/entities"
	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

type startFixture struct {
	uc        *StartSessionUseCase
	user      *entities.User
	vehicle   *entities.Vehicle
	authority *entities.LocalAuthority
	users     *casUserStore
	sessions  *mockSessionRepo
	txRepo    *mockTransactionRepo
	auths     *mockAuthorityRepo
	cache     *mockCache
}

func newStartFixture(t *testing.T, balance string) *startFixture {
	t.Helper()

	user, err := entities.NewUser("Aisyah", "aisyah@example.com", "$2a$10$hash", "+60123456789")
	if err != nil {
		t.Fatalf("NewUser failed: %v", err)
	}
	if balance != "" {
		if err := user.Credit(valueobjects.MustMoney(balance)); err != nil {
			t.Fatalf("Credit failed: %v", err)
		}
	}

	plate, _ := valueobjects.NewPlate("WXY1234", "Perodua", "red")
	vehicle, err := entities.NewVehicle(plate, user.ID())
	if err != nil {
		t.Fatalf("NewVehicle failed: %v", err)
	}

	authority, err := entities.NewLocalAuthority("MBJB", "MBJB", "admin@mbjb.gov.my", "+6072223344", "Johor Bahru", "Johor")
	if err != nil {
		t.Fatalf("NewLocalAuthority failed: %v", err)
	}

	users := newCASUserStore(user)
	vehicles := newMockVehicleRepo(vehicle)
	sessions := newMockSessionRepo()
	txRepo := &mockTransactionRepo{}
	auths := newMockAuthorityRepo(authority)
	cache := &mockCache{}

	uc := NewStartSessionUseCase(users, vehicles, sessions, txRepo, auths, &mockOutbox{}, cache, &mockUnitOfWork{})
	return &startFixture{
		uc: uc, user: user, vehicle: vehicle, authority: authority,
		users: users, sessions: sessions, txRepo: txRepo, auths: auths, cache: cache,
	}
}

// TestStartSession_DebitsWalletAndAccruesIncome тестирует основной
// сценарий: пополнил на 10.00, час за 6.50, остаток 3.50, доход
// authority 6.50, в журнале "Parking"/out.
func TestStartSession_DebitsWalletAndAccruesIncome(t *testing.T) {
	f := newStartFixture(t, "10.00")

	result, err := f.uc.Execute(context.Background(), dtos.StartSessionCommand{
		UserID:          f.user.ID().String(),
		VehicleID:       f.vehicle.ID().String(),
		AuthorityID:     f.authority.ID().String(),
		DurationMinutes: 60,
		Price:           "6.50",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Balance != "3.50" {
		t.Errorf("Balance = %s, want 3.50", result.Balance)
	}
	if result.Transaction.Label != "Parking" || result.Transaction.Direction != "out" {
		t.Errorf("Transaction = %s/%s, want Parking/out", result.Transaction.Label, result.Transaction.Direction)
	}
	if result.Session.Status != "ongoing" {
		t.Errorf("Session status = %s, want ongoing", result.Session.Status)
	}
	if result.Session.DurationMinutes != 60 {
		t.Errorf("Duration = %d, want 60", result.Session.DurationMinutes)
	}

	if got := f.users.balanceOf(f.user.ID()); got.Decimal() != "3.50" {
		t.Errorf("Stored balance = %s, want 3.50", got.Decimal())
	}

	stored, _ := f.auths.FindByID(context.Background(), f.authority.ID())
	if stored.Income().Decimal() != "6.50" {
		t.Errorf("Authority income = %s, want 6.50", stored.Income().Decimal())
	}
	if stored.TotalIncome().Decimal() != "6.50" {
		t.Errorf("Authority total income = %s, want 6.50", stored.TotalIncome().Decimal())
	}

	if len(f.cache.invalidated) != 1 {
		t.Errorf("Cache invalidations = %d, want 1", len(f.cache.invalidated))
	}
}

// TestStartSession_InsufficientFunds тестирует отказ без каких-либо
// следов: ни сессии, ни записи в журнале.
func TestStartSession_InsufficientFunds(t *testing.T) {
	f := newStartFixture(t, "5.00")

	_, err := f.uc.Execute(context.Background(), dtos.StartSessionCommand{
		UserID:          f.user.ID().String(),
		VehicleID:       f.vehicle.ID().String(),
		AuthorityID:     f.authority.ID().String(),
		DurationMinutes: 60,
		Price:           "6.50",
	})
	if !stderrors.Is(err, domainErrors.ErrInsufficientFunds) {
		t.Fatalf("Execute error = %v, want ErrInsufficientFunds", err)
	}

	if got := f.users.balanceOf(f.user.ID()); got.Decimal() != "5.00" {
		t.Errorf("Balance changed on failed start: %s", got.Decimal())
	}
	if f.txRepo.count() != 0 {
		t.Error("Failed start must not write to the ledger")
	}
}

// TestStartSession_VehicleAlreadyParked тестирует правило «одна
// ongoing-сессия на автомобиль».
func TestStartSession_VehicleAlreadyParked(t *testing.T) {
	f := newStartFixture(t, "20.00")

	cmd := dtos.StartSessionCommand{
		UserID:          f.user.ID().String(),
		VehicleID:       f.vehicle.ID().String(),
		AuthorityID:     f.authority.ID().String(),
		DurationMinutes: 60,
		Price:           "6.50",
	}

	if _, err := f.uc.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("First start failed: %v", err)
	}

	_, err := f.uc.Execute(context.Background(), cmd)
	if !domainErrors.IsConflict(err) {
		t.Fatalf("Second start error = %v, want conflict", err)
	}
}

// TestStartSession_NotOwner тестирует старт на чужой машине.
func TestStartSession_NotOwner(t *testing.T) {
	f := newStartFixture(t, "10.00")

	stranger, _ := entities.NewUser("Stranger", "stranger@example.com", "$2a$10$hash", "+60199998888")
	_ = f.users.Save(context.Background(), stranger)

	_, err := f.uc.Execute(context.Background(), dtos.StartSessionCommand{
		UserID:          stranger.ID().String(),
		VehicleID:       f.vehicle.ID().String(),
		AuthorityID:     f.authority.ID().String(),
		DurationMinutes: 60,
		Price:           "6.50",
	})
	if !stderrors.Is(err, domainErrors.ErrNotAuthorized) {
		t.Fatalf("Execute error = %v, want ErrNotAuthorized", err)
	}
}

// TestStartSession_ConcurrentDebits тестирует no-overspend: при балансе
// 10.00 и цене 3.00 из N конкурентных стартов выигрывают ровно
// floor(10/3) = 3, и итоговый баланс равен 1.00, не меньше нуля.
func TestStartSession_ConcurrentDebits(t *testing.T) {
	f := newStartFixture(t, "10.00")

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		// Каждая попытка - своя машина, чтобы не упереться в правило
		// «одна сессия на автомобиль».
		plate, _ := valueobjects.NewPlate("WKL"+uuid.New().String()[:4], "Proton", "black")
		vehicle, _ := entities.NewVehicle(plate, f.user.ID())
		_ = f.uc.vehicleRepo.Save(context.Background(), vehicle)

		wg.Add(1)
		go func(i int, vehicleID string) {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), dtos.StartSessionCommand{
				UserID:          f.user.ID().String(),
				VehicleID:       vehicleID,
				AuthorityID:     f.authority.ID().String(),
				DurationMinutes: 60,
				Price:           "3.00",
			})
			results[i] = err
		}(i, vehicle.ID().String())
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		}
	}

	if successes != 3 {
		t.Errorf("Successful starts = %d, want 3 (floor of balance/price)", successes)
	}
	if got := f.users.balanceOf(f.user.ID()); got.Decimal() != "1.00" {
		t.Errorf("Final balance = %s, want 1.00", got.Decimal())
	}
}

// TestStartSession_CallerSuppliedStart тестирует старт с явным
// starting_time: end_time считается от него, не от now.
func TestStartSession_CallerSuppliedStart(t *testing.T) {
	f := newStartFixture(t, "10.00")

	start := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	result, err := f.uc.Execute(context.Background(), dtos.StartSessionCommand{
		UserID:          f.user.ID().String(),
		VehicleID:       f.vehicle.ID().String(),
		AuthorityID:     f.authority.ID().String(),
		StartingTime:    start.Format(time.RFC3339),
		DurationMinutes: 90,
		Price:           "6.50",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Session.StartingTime.Equal(start) {
		t.Errorf("StartingTime = %v, want %v", result.Session.StartingTime, start)
	}
	if want := start.Add(90 * time.Minute); !result.Session.EndTime.Equal(want) {
		t.Errorf("EndTime = %v, want %v", result.Session.EndTime, want)
	}
}

// TestStartSession_BadStartingTime тестирует отбраковку кривого
// timestamp до каких-либо списаний.
func TestStartSession_BadStartingTime(t *testing.T) {
	f := newStartFixture(t, "10.00")

	_, err := f.uc.Execute(context.Background(), dtos.StartSessionCommand{
		UserID:          f.user.ID().String(),
		VehicleID:       f.vehicle.ID().String(),
		AuthorityID:     f.authority.ID().String(),
		StartingTime:    "28-08-2026 09:30",
		DurationMinutes: 60,
		Price:           "6.50",
	})
	if !domainErrors.IsValidation(err) {
		t.Fatalf("Execute error = %v, want validation error", err)
	}

	if got := f.user.WalletBalance().Decimal(); got != "10.00" {
		t.Errorf("Balance = %s, want 10.00", got)
	}
}
