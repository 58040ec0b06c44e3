// Package valueobjects - Plate identifies a vehicle for enforcement lookups.
package valueobjects

import (
	"fmt"
	"strings"
)

// ErrIncompletePlate is returned when any part of the identifying triple is blank.
var ErrIncompletePlate = fmt.Errorf("license plate, brand and color are all required")

// Plate is the (license plate, brand, color) triple the registry treats as
// the logical identity of a vehicle. Two users registering the same triple
// share one Vehicle record.
type Plate struct {
	number string
	brand  string
	color  string
}

// NewPlate normalizes and validates the identifying triple.
// Plates are compared case-insensitively with whitespace stripped,
// matching how wardens type them in on the street.
func NewPlate(number, brand, color string) (Plate, error) {
	number = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(number), " ", ""))
	brand = strings.TrimSpace(brand)
	color = strings.ToLower(strings.TrimSpace(color))

	if number == "" || brand == "" || color == "" {
		return Plate{}, ErrIncompletePlate
	}

	return Plate{number: number, brand: brand, color: color}, nil
}

func (p Plate) Number() string { return p.number }
func (p Plate) Brand() string  { return p.brand }
func (p Plate) Color() string  { return p.color }

// String returns the display form, e.g. "ABC123 (Perodua, silver)".
func (p Plate) String() string {
	return p.number + " (" + p.brand + ", " + p.color + ")"
}

// IsZero reports whether the plate is the empty value.
func (p Plate) IsZero() bool {
	return p.number == ""
}
