// Package valueobjects - Money is the most critical value object in the platform.
// Every wallet balance, parking fee, saman price and transaction amount is a Money.
//
// Value Object Pattern:
// - Immutable: All operations return new Money instances
// - Self-validating: Cannot create invalid Money
// - Canonical storage form: integer minor units (sen), never floats
package valueobjects

import (
	"errors"
	"fmt"
	"math/big"
)

// CurrencyCode is the single currency the platform operates in.
// Parking fees and samans are municipal charges, so there is no
// multi-currency story here; PayPal orders are created in MYR too.
const CurrencyCode = "MYR"

// minorUnitScale - number of minor units (sen) per ringgit.
const minorUnitScale = 100

// Common domain errors for Money operations.
var (
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrInvalidAmount      = errors.New("invalid amount format")
	ErrInsufficientAmount = errors.New("insufficient amount")
)

// Money represents a monetary amount in integer minor units (sen).
//
// Why integer minor units?
// - Avoids floating-point precision issues (0.1 + 0.2 != 0.3)
// - Matches the database storage format (BIGINT columns)
// - Makes the round-trip property trivial: FromMinorUnits(m).MinorUnits() == m
type Money struct {
	units int64
}

// NewMoney parses a decimal string (e.g. "100.50", "3.5") into Money,
// rounding to the nearest sen with round-half-up. Values carrying more
// than two fractional digits are rounded on ingestion; the reverse
// conversion (Decimal) is exact and never rounds.
func NewMoney(amountStr string) (Money, error) {
	rat := new(big.Rat)
	if _, ok := rat.SetString(amountStr); !ok {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amountStr)
	}

	if rat.Sign() < 0 {
		return Money{}, ErrNegativeAmount
	}

	// Scale to minor units and round half-up: floor(x*100 + 1/2).
	scaled := new(big.Rat).Mul(rat, big.NewRat(minorUnitScale, 1))
	scaled.Add(scaled, big.NewRat(1, 2))
	units := new(big.Int).Quo(scaled.Num(), scaled.Denom())

	if !units.IsInt64() {
		return Money{}, fmt.Errorf("%w: %q overflows minor units", ErrInvalidAmount, amountStr)
	}

	return Money{units: units.Int64()}, nil
}

// NewMoneyFromMinorUnits creates Money directly from sen.
// This is the form repositories use when hydrating from the database.
func NewMoneyFromMinorUnits(units int64) (Money, error) {
	if units < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{units: units}, nil
}

// MustMoney is NewMoney that panics on error. Test and seed data only.
func MustMoney(amountStr string) Money {
	m, err := NewMoney(amountStr)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{}
}

// MinorUnits returns the amount in sen. Preferred storage format.
func (m Money) MinorUnits() int64 {
	return m.units
}

// Decimal returns the exact decimal representation ("123.45").
// Exact inverse of the minor-unit form; no further rounding happens here.
func (m Money) Decimal() string {
	return fmt.Sprintf("%d.%02d", m.units/minorUnitScale, m.units%minorUnitScale)
}

// String returns a human-readable representation, e.g. "123.45 MYR".
func (m Money) String() string {
	return m.Decimal() + " " + CurrencyCode
}

// MarshalJSON renders the amount as a decimal string ("123.45").
// Event payloads and API responses never expose raw minor units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Decimal() + `"`), nil
}

// UnmarshalJSON parses a decimal string back into Money.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidAmount
	}
	parsed, err := NewMoney(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Add returns a new Money with the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{units: m.units + other.units}
}

// Subtract returns a new Money with the difference.
// Returns ErrInsufficientAmount if the result would be negative;
// a committed wallet balance is never negative.
func (m Money) Subtract(other Money) (Money, error) {
	if m.units < other.units {
		return Money{}, ErrInsufficientAmount
	}
	return Money{units: m.units - other.units}, nil
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.units == 0
}

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m.units > 0
}

// GreaterThanOrEqual checks if this amount covers another.
// Wallet sufficiency checks go through here.
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.units >= other.units
}

// LessThan checks if this amount is strictly below another.
func (m Money) LessThan(other Money) bool {
	return m.units < other.units
}

// Equals checks amount equality.
func (m Money) Equals(other Money) bool {
	return m.units == other.units
}
