// Package entities - ParkingSession is the timed "car parking" state machine.
package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/domain/errors"
)

// SessionStatus represents the lifecycle state of a parking session.
type SessionStatus string

const (
	SessionStatusOngoing  SessionStatus = "ongoing"
	SessionStatusComplete SessionStatus = "complete"
)

// IsValid checks if the session status is valid.
func (s SessionStatus) IsValid() bool {
	return s == SessionStatusOngoing || s == SessionStatusComplete
}

// ParkingSession represents one paid stretch of on-street parking.
//
// Invariants:
// - end_time is always recomputable as starting_time + duration
// - extending adds minutes to duration and shifts end_time by the same delta
// - at most one session per vehicle is ongoing at a time (enforced by the
//   application inside the start-session atomic unit, not by a constraint)
//
// Timestamps are stored as UTC instants; display-timezone conversion
// happens at the HTTP edge.
type ParkingSession struct {
	id          uuid.UUID
	startingTime time.Time
	duration    time.Duration
	authorityID uuid.UUID
	vehicleID   uuid.UUID
	creatorID   uuid.UUID
	status      SessionStatus
	version     int64

	createdAt time.Time
	updatedAt time.Time
}

// NewParkingSession starts an ongoing session.
func NewParkingSession(start time.Time, durationMinutes int, authorityID, vehicleID, creatorID uuid.UUID) (*ParkingSession, error) {
	if start.IsZero() {
		return nil, errors.ValidationError{Field: "starting_time", Message: "starting time is required"}
	}
	if durationMinutes <= 0 {
		return nil, errors.ValidationError{Field: "duration", Message: "duration must be positive minutes"}
	}

	now := time.Now().UTC()
	return &ParkingSession{
		id:           uuid.New(),
		startingTime: start.UTC(),
		duration:     time.Duration(durationMinutes) * time.Minute,
		authorityID:  authorityID,
		vehicleID:    vehicleID,
		creatorID:    creatorID,
		status:       SessionStatusOngoing,
		version:      0,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructParkingSession hydrates a session from storage.
func ReconstructParkingSession(
	id uuid.UUID,
	start time.Time,
	durationMinutes int,
	authorityID, vehicleID, creatorID uuid.UUID,
	status SessionStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *ParkingSession {
	return &ParkingSession{
		id:           id,
		startingTime: start.UTC(),
		duration:     time.Duration(durationMinutes) * time.Minute,
		authorityID:  authorityID,
		vehicleID:    vehicleID,
		creatorID:    creatorID,
		status:       status,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (p *ParkingSession) ID() uuid.UUID           { return p.id }
func (p *ParkingSession) StartingTime() time.Time { return p.startingTime }
func (p *ParkingSession) AuthorityID() uuid.UUID  { return p.authorityID }
func (p *ParkingSession) VehicleID() uuid.UUID    { return p.vehicleID }
func (p *ParkingSession) CreatorID() uuid.UUID    { return p.creatorID }
func (p *ParkingSession) Status() SessionStatus   { return p.status }
func (p *ParkingSession) Version() int64          { return p.version }
func (p *ParkingSession) CreatedAt() time.Time    { return p.createdAt }
func (p *ParkingSession) UpdatedAt() time.Time    { return p.updatedAt }

// DurationMinutes returns the paid duration in whole minutes.
func (p *ParkingSession) DurationMinutes() int {
	return int(p.duration / time.Minute)
}

// EndTime is derived, never stored independently, so the invariant
// end = start + duration cannot drift.
func (p *ParkingSession) EndTime() time.Time {
	return p.startingTime.Add(p.duration)
}

// IsOngoing reports whether the session still covers the vehicle.
func (p *ParkingSession) IsOngoing() bool {
	return p.status == SessionStatusOngoing
}

// Extend adds minutes to the paid duration, shifting the end time by the
// same delta. Only ongoing sessions can be extended.
func (p *ParkingSession) Extend(additionalMinutes int) error {
	if additionalMinutes <= 0 {
		return errors.ValidationError{Field: "additional_minutes", Message: "extension must be positive minutes"}
	}
	if p.status != SessionStatusOngoing {
		return errors.ErrSessionNotOngoing
	}

	p.duration += time.Duration(additionalMinutes) * time.Minute
	p.version++
	p.updatedAt = time.Now().UTC()
	return nil
}

// Terminate marks the session complete. Terminating an already-complete
// session is a no-op, not an error: wardens and expiry sweeps may race.
func (p *ParkingSession) Terminate() {
	if p.status == SessionStatusComplete {
		return
	}
	p.status = SessionStatusComplete
	p.version++
	p.updatedAt = time.Now().UTC()
}
