// Package entities - Vehicle is shared between every user who registered
// the same (plate, brand, color) triple.
package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// Vehicle represents a registered vehicle.
//
// Logical identity is the plate triple: a lookup by (license_plate, brand,
// color) returns at most one vehicle, and registration reuses an existing
// match instead of duplicating it. Ownership is many-to-many: the owner set
// here and each owner's vehicle list must stay symmetric, and any operation
// mutating one side mutates the other inside the same atomic unit.
type Vehicle struct {
	id      uuid.UUID
	plate   valueobjects.Plate
	ownerIDs []uuid.UUID

	// Pending ownership changes since load. The repository persists these
	// as targeted row inserts and deletes, so two users linking the same
	// vehicle concurrently never clobber each other's membership.
	linkedOwners   []uuid.UUID
	unlinkedOwners []uuid.UUID

	createdAt time.Time
	updatedAt time.Time
}

// NewVehicle creates a vehicle owned by its first registrant.
func NewVehicle(plate valueobjects.Plate, ownerID uuid.UUID) (*Vehicle, error) {
	if plate.IsZero() {
		return nil, valueobjects.ErrIncompletePlate
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:           uuid.New(),
		plate:        plate,
		ownerIDs:     []uuid.UUID{ownerID},
		linkedOwners: []uuid.UUID{ownerID},
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructVehicle hydrates a vehicle from storage.
func ReconstructVehicle(id uuid.UUID, plate valueobjects.Plate, ownerIDs []uuid.UUID, createdAt, updatedAt time.Time) *Vehicle {
	return &Vehicle{
		id:        id,
		plate:     plate,
		ownerIDs:  ownerIDs,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (v *Vehicle) ID() uuid.UUID             { return v.id }
func (v *Vehicle) Plate() valueobjects.Plate { return v.plate }
func (v *Vehicle) CreatedAt() time.Time      { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time      { return v.updatedAt }

// OwnerIDs returns a copy of the owner set.
func (v *Vehicle) OwnerIDs() []uuid.UUID {
	owners := make([]uuid.UUID, len(v.ownerIDs))
	copy(owners, v.ownerIDs)
	return owners
}

// IsOwnedBy checks membership in the owner set.
func (v *Vehicle) IsOwnedBy(userID uuid.UUID) bool {
	for _, id := range v.ownerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AddOwner links a user to the vehicle. Idempotent: re-linking an existing
// owner reports false and changes nothing.
func (v *Vehicle) AddOwner(userID uuid.UUID) bool {
	if v.IsOwnedBy(userID) {
		return false
	}
	v.ownerIDs = append(v.ownerIDs, userID)
	v.linkedOwners = append(v.linkedOwners, userID)
	v.updatedAt = time.Now().UTC()
	return true
}

// RemoveOwner unlinks a user. Reports whether the set changed.
func (v *Vehicle) RemoveOwner(userID uuid.UUID) bool {
	for i, id := range v.ownerIDs {
		if id == userID {
			v.ownerIDs = append(v.ownerIDs[:i], v.ownerIDs[i+1:]...)
			v.unlinkedOwners = append(v.unlinkedOwners, userID)
			v.updatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// OwnerChanges returns the link and unlink deltas accumulated since the
// vehicle was loaded. A freshly reconstructed vehicle has none.
func (v *Vehicle) OwnerChanges() (linked, unlinked []uuid.UUID) {
	linked = make([]uuid.UUID, len(v.linkedOwners))
	copy(linked, v.linkedOwners)
	unlinked = make([]uuid.UUID, len(v.unlinkedOwners))
	copy(unlinked, v.unlinkedOwners)
	return linked, unlinked
}
