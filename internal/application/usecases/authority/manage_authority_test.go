package authority

import (
	"context"
	"testing"

	"github.com/mypark/parkwallet/internal/application/dtos"
	"github.com/mypark/parkwallet/internal/domain/entities"
	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

func newAdmin(t *testing.T) *entities.User {
	t.Helper()
	admin, err := entities.NewUser("Admin Azlan", "admin@example.com", "hashed:x", "+60123456789")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := admin.AssignRole(entities.RoleAdmin); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	return admin
}

func newRegularUser(t *testing.T) *entities.User {
	t.Helper()
	user, err := entities.NewUser("Ahmad Faiz", "ahmad@example.com", "hashed:x", "+60198765432")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	return user
}

func newAuthority(t *testing.T) *entities.LocalAuthority {
	t.Helper()
	authority, err := entities.NewLocalAuthority("Majlis Bandaraya Petaling Jaya", "MBPJ", "mbpj@example.com", "+60378613200", "Petaling Jaya", "Selangor")
	if err != nil {
		t.Fatalf("NewLocalAuthority: %v", err)
	}
	return authority
}

func TestCreateAuthority_AdminOnly(t *testing.T) {
	admin := newAdmin(t)
	user := newRegularUser(t)
	users := newMockUserRepo(admin, user)
	repo := newMockAuthorityRepo()

	uc := NewCreateAuthorityUseCase(users, repo, &mockUnitOfWork{})

	cmd := dtos.CreateAuthorityCommand{
		ActorID: user.ID().String(),
		Name:    "Majlis Bandaraya Petaling Jaya",
		Email:   "mbpj@example.com",
		Phone:   "+60378613200",
	}
	if _, err := uc.Execute(context.Background(), cmd); err != domainErrors.ErrNotAuthorized {
		t.Fatalf("Execute() by regular user error = %v, want ErrNotAuthorized", err)
	}

	cmd.ActorID = admin.ID().String()
	result, err := uc.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Execute() by admin error = %v", err)
	}
	if result.Income != "0.00" {
		t.Errorf("Income = %q, want %q", result.Income, "0.00")
	}
}

func TestCreateAuthority_DuplicateEmail(t *testing.T) {
	admin := newAdmin(t)
	existing := newAuthority(t)
	uc := NewCreateAuthorityUseCase(newMockUserRepo(admin), newMockAuthorityRepo(existing), &mockUnitOfWork{})

	_, err := uc.Execute(context.Background(), dtos.CreateAuthorityCommand{
		ActorID: admin.ID().String(),
		Name:    "Another Council",
		Email:   "mbpj@example.com",
		Phone:   "+60300000000",
	})
	if !domainErrors.IsConflict(err) {
		t.Errorf("Execute() error = %v, want conflict", err)
	}
}

func TestUpdateAuthority_Success(t *testing.T) {
	admin := newAdmin(t)
	authority := newAuthority(t)
	uc := NewUpdateAuthorityUseCase(newMockUserRepo(admin), newMockAuthorityRepo(authority), &mockUnitOfWork{})

	result, err := uc.Execute(context.Background(), dtos.UpdateAuthorityCommand{
		ActorID:     admin.ID().String(),
		AuthorityID: authority.ID().String(),
		Name:        "Majlis Bandaraya Petaling Jaya",
		Nickname:    "MBPJ",
		Email:       "enforcement@mbpj.gov.my",
		Phone:       "+60378613200",
		Area:        "Petaling Jaya",
		State:       "Selangor",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Email != "enforcement@mbpj.gov.my" {
		t.Errorf("Email = %q", result.Email)
	}
}

func TestResetIncome_KeepsLifetimeTotal(t *testing.T) {
	admin := newAdmin(t)
	authority := newAuthority(t)
	if err := authority.AccrueIncome(valueobjects.MustMoney("123.45")); err != nil {
		t.Fatalf("AccrueIncome: %v", err)
	}

	uc := NewResetIncomeUseCase(newMockUserRepo(admin), newMockAuthorityRepo(authority), &mockUnitOfWork{})

	result, err := uc.Execute(context.Background(), dtos.ResetIncomeCommand{
		ActorID:     admin.ID().String(),
		AuthorityID: authority.ID().String(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Income != "0.00" {
		t.Errorf("Income = %q, want %q", result.Income, "0.00")
	}
	if result.TotalIncome != "123.45" {
		t.Errorf("TotalIncome = %q, want %q", result.TotalIncome, "123.45")
	}
}

func TestDeleteAuthority_Success(t *testing.T) {
	admin := newAdmin(t)
	authority := newAuthority(t)
	repo := newMockAuthorityRepo(authority)
	uc := NewDeleteAuthorityUseCase(newMockUserRepo(admin), repo, &mockUnitOfWork{})

	err := uc.Execute(context.Background(), dtos.DeleteAuthorityCommand{
		ActorID:     admin.ID().String(),
		AuthorityID: authority.ID().String(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != authority.ID() {
		t.Errorf("deleted = %v, want [%s]", repo.deleted, authority.ID())
	}
}

func TestDeleteAuthority_Unknown(t *testing.T) {
	admin := newAdmin(t)
	uc := NewDeleteAuthorityUseCase(newMockUserRepo(admin), newMockAuthorityRepo(), &mockUnitOfWork{})

	err := uc.Execute(context.Background(), dtos.DeleteAuthorityCommand{
		ActorID:     admin.ID().String(),
		AuthorityID: "3f6b0f2e-9f3b-4a5e-8c1d-2b7a6e5d4c3b",
	})
	if !domainErrors.IsNotFound(err) {
		t.Errorf("Execute() error = %v, want not-found", err)
	}
}
