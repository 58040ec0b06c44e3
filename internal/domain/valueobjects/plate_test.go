package valueobjects_test

import (
	"testing"

	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// TestNewPlate_Normalization tests that plates are canonicalised so the
// same physical vehicle always maps to the same identity.
func TestNewPlate_Normalization(t *testing.T) {
	tests := []struct {
		name       string
		number     string
		brand      string
		color      string
		wantNumber string
		wantColor  string
	}{
		{
			name:       "Uppercases and strips spaces",
			number:     "wxy 1234",
			brand:      "Perodua",
			color:      "Red",
			wantNumber: "WXY1234",
			wantColor:  "red",
		},
		{
			name:       "Already canonical",
			number:     "JDT88",
			brand:      "Proton",
			color:      "black",
			wantNumber: "JDT88",
			wantColor:  "black",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plate, err := valueobjects.NewPlate(tt.number, tt.brand, tt.color)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if plate.Number() != tt.wantNumber {
				t.Errorf("Number() = %q, want %q", plate.Number(), tt.wantNumber)
			}
			if plate.Color() != tt.wantColor {
				t.Errorf("Color() = %q, want %q", plate.Color(), tt.wantColor)
			}
		})
	}
}

// TestNewPlate_EquivalentInputsMatch tests that two differently formatted
// registrations of the same vehicle compare equal.
func TestNewPlate_EquivalentInputsMatch(t *testing.T) {
	a, err := valueobjects.NewPlate("wxy 1234", "Perodua", "Red")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := valueobjects.NewPlate("WXY1234", "Perodua", "red")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("Expected equal plates, got %v and %v", a, b)
	}
}

// TestNewPlate_MissingFields tests that incomplete triples are rejected.
func TestNewPlate_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		number string
		brand  string
		color  string
	}{
		{name: "Missing number", number: "", brand: "Proton", color: "black"},
		{name: "Missing brand", number: "WXY1234", brand: "", color: "black"},
		{name: "Missing color", number: "WXY1234", brand: "Proton", color: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := valueobjects.NewPlate(tc.number, tc.brand, tc.color)
			if err == nil {
				t.Error("Expected error for incomplete plate, got nil")
			}
		})
	}
}
