// Package events defines domain events that represent significant business occurrences.
// Events are immutable facts about what happened in the past.
//
// Events are raised by use cases after state changes commit and pushed
// through the outbox, so downstream consumers (notifications, reporting)
// never see an event for a transaction that rolled back.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// DomainEvent is the base interface for all domain events.
// All events must have an ID, timestamp, and type.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID // ID of the entity that raised this event
}

// BaseEvent provides common fields for all events.
// Embedded in specific event types to avoid duplication.
type BaseEvent struct {
	eventID     uuid.UUID
	eventType   string
	occurredAt  time.Time
	aggregateID uuid.UUID
}

func newBaseEvent(eventType string, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{
		eventID:     uuid.New(),
		eventType:   eventType,
		occurredAt:  time.Now().UTC(),
		aggregateID: aggregateID,
	}
}

func (e BaseEvent) EventID() uuid.UUID {
	return e.eventID
}

func (e BaseEvent) EventType() string {
	return e.eventType
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e BaseEvent) AggregateID() uuid.UUID {
	return e.aggregateID
}

// Event Types (constants for type checking)
const (
	EventTypeTopUpInitiated     = "wallet.topup.initiated"
	EventTypeTopUpCaptured      = "wallet.topup.captured"
	EventTypeWalletDebited      = "wallet.debited"
	EventTypeSessionStarted     = "parking.session.started"
	EventTypeSessionExtended    = "parking.session.extended"
	EventTypeSessionTerminated  = "parking.session.terminated"
	EventTypeSamanIssued        = "saman.issued"
	EventTypeSamanPaid          = "saman.paid"
	EventTypeVehicleLinked      = "vehicle.linked"
	EventTypeVehicleUnlinked    = "vehicle.unlinked"
)

// ===== Wallet Events =====

// TopUpInitiated is raised when a PayPal order has been created and is
// awaiting user approval. The wallet has not been credited yet.
type TopUpInitiated struct {
	BaseEvent
	UserID  uuid.UUID
	OrderID string
	Amount  valueobjects.Money
}

func NewTopUpInitiated(userID uuid.UUID, orderID string, amount valueobjects.Money) *TopUpInitiated {
	return &TopUpInitiated{
		BaseEvent: newBaseEvent(EventTypeTopUpInitiated, userID),
		UserID:    userID,
		OrderID:   orderID,
		Amount:    amount,
	}
}

// TopUpCaptured is raised when a gateway order settles and the wallet
// is credited. Consumers might send receipts or update analytics.
type TopUpCaptured struct {
	BaseEvent
	UserID       uuid.UUID
	OrderID      string
	Amount       valueobjects.Money
	BalanceAfter valueobjects.Money
}

func NewTopUpCaptured(userID uuid.UUID, orderID string, amount, balanceAfter valueobjects.Money) *TopUpCaptured {
	return &TopUpCaptured{
		BaseEvent:    newBaseEvent(EventTypeTopUpCaptured, userID),
		UserID:       userID,
		OrderID:      orderID,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}
}

// WalletDebited is raised when funds leave a wallet to pay for parking
// or a saman.
type WalletDebited struct {
	BaseEvent
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Label         string
	Amount        valueobjects.Money
	BalanceAfter  valueobjects.Money
}

func NewWalletDebited(
	userID, transactionID uuid.UUID,
	label string,
	amount, balanceAfter valueobjects.Money,
) *WalletDebited {
	return &WalletDebited{
		BaseEvent:     newBaseEvent(EventTypeWalletDebited, userID),
		UserID:        userID,
		TransactionID: transactionID,
		Label:         label,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
	}
}

// ===== Parking Events =====

// SessionStarted is raised when a parking session begins.
type SessionStarted struct {
	BaseEvent
	SessionID uuid.UUID
	UserID    uuid.UUID
	VehicleID uuid.UUID
	EndsAt    time.Time
}

func NewSessionStarted(sessionID, userID, vehicleID uuid.UUID, endsAt time.Time) *SessionStarted {
	return &SessionStarted{
		BaseEvent: newBaseEvent(EventTypeSessionStarted, sessionID),
		SessionID: sessionID,
		UserID:    userID,
		VehicleID: vehicleID,
		EndsAt:    endsAt,
	}
}

// SessionExtended is raised when an ongoing session gains extra time.
type SessionExtended struct {
	BaseEvent
	SessionID uuid.UUID
	UserID    uuid.UUID
	EndsAt    time.Time
}

func NewSessionExtended(sessionID, userID uuid.UUID, endsAt time.Time) *SessionExtended {
	return &SessionExtended{
		BaseEvent: newBaseEvent(EventTypeSessionExtended, sessionID),
		SessionID: sessionID,
		UserID:    userID,
		EndsAt:    endsAt,
	}
}

// SessionTerminated is raised when a session is marked complete, whether
// by its owner or by the expiry sweep.
type SessionTerminated struct {
	BaseEvent
	SessionID uuid.UUID
	UserID    uuid.UUID
}

func NewSessionTerminated(sessionID, userID uuid.UUID) *SessionTerminated {
	return &SessionTerminated{
		BaseEvent: newBaseEvent(EventTypeSessionTerminated, sessionID),
		SessionID: sessionID,
		UserID:    userID,
	}
}

// ===== Saman Events =====

// SamanIssued is raised when an enforcement officer fines a vehicle.
// Consumers notify every owner of the vehicle.
type SamanIssued struct {
	BaseEvent
	SamanID     uuid.UUID
	VehicleID   uuid.UUID
	AuthorityID uuid.UUID
	Offence     string
	Fee         valueobjects.Money
}

func NewSamanIssued(samanID, vehicleID, authorityID uuid.UUID, offence string, fee valueobjects.Money) *SamanIssued {
	return &SamanIssued{
		BaseEvent:   newBaseEvent(EventTypeSamanIssued, samanID),
		SamanID:     samanID,
		VehicleID:   vehicleID,
		AuthorityID: authorityID,
		Offence:     offence,
		Fee:         fee,
	}
}

// SamanPaid is raised when a fine is settled from a wallet.
type SamanPaid struct {
	BaseEvent
	SamanID     uuid.UUID
	UserID      uuid.UUID
	AuthorityID uuid.UUID
	Fee         valueobjects.Money
}

func NewSamanPaid(samanID, userID, authorityID uuid.UUID, fee valueobjects.Money) *SamanPaid {
	return &SamanPaid{
		BaseEvent:   newBaseEvent(EventTypeSamanPaid, samanID),
		SamanID:     samanID,
		UserID:      userID,
		AuthorityID: authorityID,
		Fee:         fee,
	}
}

// ===== Vehicle Events =====

// VehicleLinked is raised when a user adds a vehicle to their account.
type VehicleLinked struct {
	BaseEvent
	VehicleID uuid.UUID
	UserID    uuid.UUID
	Plate     string
}

func NewVehicleLinked(vehicleID, userID uuid.UUID, plate string) *VehicleLinked {
	return &VehicleLinked{
		BaseEvent: newBaseEvent(EventTypeVehicleLinked, vehicleID),
		VehicleID: vehicleID,
		UserID:    userID,
		Plate:     plate,
	}
}

// VehicleUnlinked is raised when a user removes a vehicle from their
// account (the vehicle itself survives for other owners).
type VehicleUnlinked struct {
	BaseEvent
	VehicleID uuid.UUID
	UserID    uuid.UUID
	Plate     string
}

func NewVehicleUnlinked(vehicleID, userID uuid.UUID, plate string) *VehicleUnlinked {
	return &VehicleUnlinked{
		BaseEvent: newBaseEvent(EventTypeVehicleUnlinked, vehicleID),
		VehicleID: vehicleID,
		UserID:    userID,
		Plate:     plate,
	}
}
