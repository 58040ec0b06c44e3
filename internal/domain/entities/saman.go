// Package entities - Saman is a traffic/parking fine issued against a vehicle.
package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// SamanStatus represents the payment state of a fine.
type SamanStatus string

const (
	SamanStatusUnpaid SamanStatus = "unpaid"
	SamanStatusPaid   SamanStatus = "paid" // Terminal: no transition back
)

// IsValid checks if the saman status is valid.
func (s SamanStatus) IsValid() bool {
	return s == SamanStatusUnpaid || s == SamanStatusPaid
}

// DefaultSamanFee is the fixed fee applied when the issuing warden does not
// override the price: RM 50.00 in minor units.
const DefaultSamanFee = 5000

// Saman represents a fine tied to a vehicle and the issuing local authority.
type Saman struct {
	id          uuid.UUID
	offense     string
	issuedAt    time.Time
	price       valueobjects.Money
	vehicleID   uuid.UUID
	authorityID uuid.UUID
	creatorID   uuid.UUID // The warden or admin who issued it
	status      SamanStatus

	createdAt time.Time
	updatedAt time.Time
}

// NewSaman issues an unpaid fine. A zero price falls back to the default fee.
func NewSaman(offense string, issuedAt time.Time, price valueobjects.Money, vehicleID, authorityID, creatorID uuid.UUID) (*Saman, error) {
	offense = strings.TrimSpace(offense)
	if offense == "" {
		return nil, errors.ValidationError{Field: "offense", Message: "offense description is required"}
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	if price.IsZero() {
		price, _ = valueobjects.NewMoneyFromMinorUnits(DefaultSamanFee)
	}

	now := time.Now().UTC()
	return &Saman{
		id:          uuid.New(),
		offense:     offense,
		issuedAt:    issuedAt.UTC(),
		price:       price,
		vehicleID:   vehicleID,
		authorityID: authorityID,
		creatorID:   creatorID,
		status:      SamanStatusUnpaid,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructSaman hydrates a saman from storage.
func ReconstructSaman(
	id uuid.UUID,
	offense string,
	issuedAt time.Time,
	price valueobjects.Money,
	vehicleID, authorityID, creatorID uuid.UUID,
	status SamanStatus,
	createdAt, updatedAt time.Time,
) *Saman {
	return &Saman{
		id:          id,
		offense:     offense,
		issuedAt:    issuedAt.UTC(),
		price:       price,
		vehicleID:   vehicleID,
		authorityID: authorityID,
		creatorID:   creatorID,
		status:      status,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (s *Saman) ID() uuid.UUID              { return s.id }
func (s *Saman) Offense() string            { return s.offense }
func (s *Saman) IssuedAt() time.Time        { return s.issuedAt }
func (s *Saman) Price() valueobjects.Money  { return s.price }
func (s *Saman) VehicleID() uuid.UUID       { return s.vehicleID }
func (s *Saman) AuthorityID() uuid.UUID     { return s.authorityID }
func (s *Saman) CreatorID() uuid.UUID       { return s.creatorID }
func (s *Saman) Status() SamanStatus        { return s.status }
func (s *Saman) CreatedAt() time.Time       { return s.createdAt }
func (s *Saman) UpdatedAt() time.Time       { return s.updatedAt }

// IsPaid reports whether the fine has reached its terminal state.
func (s *Saman) IsPaid() bool {
	return s.status == SamanStatusPaid
}

// MarkPaid transitions the saman to its terminal state. Paying a saman
// twice is a conflict; the wallet must never be debited for it again.
func (s *Saman) MarkPaid() error {
	if s.status == SamanStatusPaid {
		return errors.ErrSamanAlreadyPaid
	}
	s.status = SamanStatusPaid
	s.updatedAt = time.Now().UTC()
	return nil
}
