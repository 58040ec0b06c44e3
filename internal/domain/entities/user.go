// Package entities contains domain entities with identity and lifecycle.
// Entities are mutable and compared by their ID, not by their attributes.
package entities

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// Role represents what a user is allowed to do on the platform.
type Role string

const (
	RoleUser          Role = "user"           // Registers vehicles, parks, pays samans
	RoleAdmin         Role = "admin"          // Manages local authorities and users
	RoleTrafficWarden Role = "traffic_warden" // Issues samans on the street
)

// IsValid checks if the role is valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleTrafficWarden:
		return true
	default:
		return false
	}
}

// CanIssueSaman - only wardens and admins issue fines.
func (r Role) CanIssueSaman() bool {
	return r == RoleTrafficWarden || r == RoleAdmin
}

// User is the wallet-bearing aggregate at the centre of the ledger.
//
// Entity Pattern:
// - Has unique identity (ID)
// - Owns the wallet balance and its optimistic-locking version
// - Business logic encapsulated in methods (Credit/Debit enforce invariants)
//
// Invariant: the wallet balance is integer minor units, never negative
// after a committed operation. The walletVersion column backs the
// compare-and-swap that serializes concurrent debits. Every mutator
// bumps it, wallet or not: the row is written as a whole, so a single
// strict version guard covers all of it.
type User struct {
	id           uuid.UUID
	name         string
	email        string
	passwordHash string
	phone        string
	role         Role

	// Wallet state (embedded in the aggregate; there is exactly one
	// wallet per user, so it never warranted its own entity).
	walletBalance valueobjects.Money
	walletVersion int64

	defaultVehicleID *uuid.UUID

	createdAt time.Time
	updatedAt time.Time
}

// Email validation regex (simplified - real systems use more complex validation).
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NewUser creates a new User with validation.
// Factory function ensures all User instances satisfy business invariants.
//
// Business Rules:
// - Email must be valid format and unique (uniqueness checked by repository)
// - Name and phone are required
// - New users start with a zero wallet and RoleUser; admin roles come from
//   the explicit seeding step, never from registration order
func NewUser(name, email, passwordHash, phone string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return nil, errors.ErrInvalidEmail
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationError{Field: "name", Message: "name is required"}
	}

	if passwordHash == "" {
		return nil, errors.ValidationError{Field: "password", Message: "password hash is required"}
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, errors.ValidationError{Field: "phone", Message: "phone number is required"}
	}

	now := time.Now().UTC()
	return &User{
		id:            uuid.New(),
		name:          name,
		email:         email,
		passwordHash:  passwordHash,
		phone:         phone,
		role:          RoleUser,
		walletBalance: valueobjects.Zero(),
		walletVersion: 0,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructUser reconstructs a User from stored data.
// Used by the repository to hydrate entities; no validation.
func ReconstructUser(
	id uuid.UUID,
	name, email, passwordHash, phone string,
	role Role,
	walletBalance valueobjects.Money,
	walletVersion int64,
	defaultVehicleID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:               id,
		name:             name,
		email:            email,
		passwordHash:     passwordHash,
		phone:            phone,
		role:             role,
		walletBalance:    walletBalance,
		walletVersion:    walletVersion,
		defaultVehicleID: defaultVehicleID,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// Getters

func (u *User) ID() uuid.UUID                { return u.id }
func (u *User) Name() string                 { return u.name }
func (u *User) Email() string                { return u.email }
func (u *User) PasswordHash() string         { return u.passwordHash }
func (u *User) Phone() string                { return u.phone }
func (u *User) Role() Role                   { return u.role }
func (u *User) WalletBalance() valueobjects.Money { return u.walletBalance }
func (u *User) WalletVersion() int64         { return u.walletVersion }
func (u *User) DefaultVehicleID() *uuid.UUID { return u.defaultVehicleID }
func (u *User) CreatedAt() time.Time         { return u.createdAt }
func (u *User) UpdatedAt() time.Time         { return u.updatedAt }

// Business Methods

// Credit adds funds to the wallet and bumps the optimistic-locking version.
func (u *User) Credit(amount valueobjects.Money) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}

	u.walletBalance = u.walletBalance.Add(amount)
	u.walletVersion++
	u.updatedAt = time.Now().UTC()
	return nil
}

// Debit subtracts funds from the wallet.
//
// Business Rules:
// - Amount must be positive
// - Balance must cover the amount (ErrInsufficientFunds, no mutation)
// - Version is incremented so the repository CAS detects concurrent spends
func (u *User) Debit(amount valueobjects.Money) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}

	if !u.walletBalance.GreaterThanOrEqual(amount) {
		return errors.ErrInsufficientFunds
	}

	newBalance, err := u.walletBalance.Subtract(amount)
	if err != nil {
		return err
	}

	u.walletBalance = newBalance
	u.walletVersion++
	u.updatedAt = time.Now().UTC()
	return nil
}

// CanAfford checks if the wallet covers the amount without mutating.
func (u *User) CanAfford(amount valueobjects.Money) bool {
	return u.walletBalance.GreaterThanOrEqual(amount)
}

// UpdateProfile changes the mutable profile fields.
//
// Bumps the row version: the user row is saved as a whole, so a profile
// edit that does not advance the version would let a concurrent wallet
// write slip through the repository CAS unnoticed.
func (u *User) UpdateProfile(name, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.ValidationError{Field: "name", Message: "name cannot be empty"}
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return errors.ValidationError{Field: "phone", Message: "phone cannot be empty"}
	}

	u.name = name
	u.phone = phone
	u.walletVersion++
	u.updatedAt = time.Now().UTC()
	return nil
}

// AssignRole changes the user's role. Admin-gated at the application layer.
func (u *User) AssignRole(role Role) error {
	if !role.IsValid() {
		return errors.ValidationError{Field: "role", Message: "unknown role"}
	}
	u.role = role
	u.walletVersion++
	u.updatedAt = time.Now().UTC()
	return nil
}

// SetDefaultVehicle records the vehicle preselected for new sessions.
func (u *User) SetDefaultVehicle(vehicleID uuid.UUID) {
	u.defaultVehicleID = &vehicleID
	u.walletVersion++
	u.updatedAt = time.Now().UTC()
}

// ClearDefaultVehicle removes the default, e.g. after an unlink.
func (u *User) ClearDefaultVehicle() {
	u.defaultVehicleID = nil
	u.walletVersion++
	u.updatedAt = time.Now().UTC()
}
