// Package entities - LocalAuthority owns parking zones, issues samans and
// collects the revenue from both.
package entities

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

var authorityEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// LocalAuthority is the municipal entity receiving parking/fine revenue.
//
// Income invariant: income is a resettable running total, zeroed only by
// an explicit payout checkpoint; totalIncome is monotonically
// non-decreasing for the lifetime of the record.
type LocalAuthority struct {
	id          uuid.UUID
	name        string
	nickname    string
	email       string
	phone       string
	area        string
	state       string
	income      valueobjects.Money
	totalIncome valueobjects.Money
	version     int64

	createdAt time.Time
	updatedAt time.Time
}

// NewLocalAuthority registers a municipal authority. Email and phone
// uniqueness is enforced by the repository's constraints.
func NewLocalAuthority(name, nickname, email, phone, area, state string) (*LocalAuthority, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationError{Field: "name", Message: "name is required"}
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !authorityEmailRegex.MatchString(email) {
		return nil, errors.ErrInvalidEmail
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, errors.ValidationError{Field: "phone", Message: "phone number is required"}
	}

	now := time.Now().UTC()
	return &LocalAuthority{
		id:          uuid.New(),
		name:        name,
		nickname:    strings.TrimSpace(nickname),
		email:       email,
		phone:       phone,
		area:        strings.TrimSpace(area),
		state:       strings.TrimSpace(state),
		income:      valueobjects.Zero(),
		totalIncome: valueobjects.Zero(),
		version:     0,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructLocalAuthority hydrates an authority from storage.
func ReconstructLocalAuthority(
	id uuid.UUID,
	name, nickname, email, phone, area, state string,
	income, totalIncome valueobjects.Money,
	version int64,
	createdAt, updatedAt time.Time,
) *LocalAuthority {
	return &LocalAuthority{
		id:          id,
		name:        name,
		nickname:    nickname,
		email:       email,
		phone:       phone,
		area:        area,
		state:       state,
		income:      income,
		totalIncome: totalIncome,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (a *LocalAuthority) ID() uuid.UUID                    { return a.id }
func (a *LocalAuthority) Name() string                     { return a.name }
func (a *LocalAuthority) Nickname() string                 { return a.nickname }
func (a *LocalAuthority) Email() string                    { return a.email }
func (a *LocalAuthority) Phone() string                    { return a.phone }
func (a *LocalAuthority) Area() string                     { return a.area }
func (a *LocalAuthority) State() string                    { return a.state }
func (a *LocalAuthority) Income() valueobjects.Money       { return a.income }
func (a *LocalAuthority) TotalIncome() valueobjects.Money  { return a.totalIncome }
func (a *LocalAuthority) Version() int64                   { return a.version }
func (a *LocalAuthority) CreatedAt() time.Time             { return a.createdAt }
func (a *LocalAuthority) UpdatedAt() time.Time             { return a.updatedAt }

// AccrueIncome records revenue from a parking session or saman payment.
// Both running and lifetime totals move together, inside the same atomic
// unit as the wallet debit that funded them.
func (a *LocalAuthority) AccrueIncome(amount valueobjects.Money) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}
	a.income = a.income.Add(amount)
	a.totalIncome = a.totalIncome.Add(amount)
	a.version++
	a.updatedAt = time.Now().UTC()
	return nil
}

// ResetIncome is the payout checkpoint: income returns to zero while
// totalIncome keeps its monotone history.
func (a *LocalAuthority) ResetIncome() {
	a.income = valueobjects.Zero()
	a.version++
	a.updatedAt = time.Now().UTC()
}

// UpdateDetails replaces the mutable registration fields.
func (a *LocalAuthority) UpdateDetails(name, nickname, email, phone, area, state string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.ValidationError{Field: "name", Message: "name is required"}
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !authorityEmailRegex.MatchString(email) {
		return errors.ErrInvalidEmail
	}

	a.name = name
	a.nickname = strings.TrimSpace(nickname)
	a.email = email
	a.phone = strings.TrimSpace(phone)
	a.area = strings.TrimSpace(area)
	a.state = strings.TrimSpace(state)
	a.version++
	a.updatedAt = time.Now().UTC()
	return nil
}
