// Package entities - Transaction is one append-only line in a user's ledger.
// Every wallet mutation leaves exactly one of these behind.
package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// TransactionLabel is the semantic label describing what moved the money.
type TransactionLabel string

const (
	TransactionLabelTopUp   TransactionLabel = "Top Up"  // PayPal capture credited the wallet
	TransactionLabelParking TransactionLabel = "Parking" // Session start or extension debit
	TransactionLabelSaman   TransactionLabel = "Saman"   // Fine payment debit
)

// IsValid checks if the label is one of the known semantics.
func (l TransactionLabel) IsValid() bool {
	switch l {
	case TransactionLabelTopUp, TransactionLabelParking, TransactionLabelSaman:
		return true
	default:
		return false
	}
}

// TransactionDirection - credit ("in") or debit ("out") relative to the wallet.
type TransactionDirection string

const (
	DirectionIn  TransactionDirection = "in"
	DirectionOut TransactionDirection = "out"
)

// IsValid checks if the direction is valid.
func (d TransactionDirection) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Transaction represents one committed wallet movement.
//
// Append-only: once committed it is never mutated. The only write-after-
// commit in the whole flow is the reconciliation step that turns a pending
// gateway order into a captured transaction, and that happens on the
// payment order, not here.
type Transaction struct {
	id         uuid.UUID
	label      TransactionLabel
	amount     valueobjects.Money
	occurredAt time.Time
	direction  TransactionDirection
	note       string
	userID     uuid.UUID
	orderID    string // Gateway order reference; set only for top-ups

	// authorityID attributes a debit to the local authority that earned
	// it. Nil for top-ups. Income reports aggregate over this column.
	authorityID *uuid.UUID
}

// NewTransaction records a wallet movement.
func NewTransaction(userID uuid.UUID, label TransactionLabel, amount valueobjects.Money, direction TransactionDirection, note string) (*Transaction, error) {
	if !label.IsValid() {
		return nil, errors.ValidationError{Field: "label", Message: "unknown transaction label"}
	}
	if !direction.IsValid() {
		return nil, errors.ValidationError{Field: "direction", Message: "direction must be in or out"}
	}
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	note = strings.TrimSpace(note)
	if note == "" {
		note = "Self"
	}

	return &Transaction{
		id:         uuid.New(),
		label:      label,
		amount:     amount,
		occurredAt: time.Now().UTC(),
		direction:  direction,
		note:       note,
		userID:     userID,
	}, nil
}

// ReconstructTransaction hydrates a transaction from storage.
func ReconstructTransaction(
	id uuid.UUID,
	label TransactionLabel,
	amount valueobjects.Money,
	occurredAt time.Time,
	direction TransactionDirection,
	note string,
	userID uuid.UUID,
	orderID string,
	authorityID *uuid.UUID,
) *Transaction {
	return &Transaction{
		id:          id,
		label:       label,
		amount:      amount,
		occurredAt:  occurredAt.UTC(),
		direction:   direction,
		note:        note,
		userID:      userID,
		orderID:     orderID,
		authorityID: authorityID,
	}
}

func (t *Transaction) ID() uuid.UUID                    { return t.id }
func (t *Transaction) Label() TransactionLabel          { return t.label }
func (t *Transaction) Amount() valueobjects.Money       { return t.amount }
func (t *Transaction) OccurredAt() time.Time            { return t.occurredAt }
func (t *Transaction) Direction() TransactionDirection  { return t.direction }
func (t *Transaction) Note() string                     { return t.note }
func (t *Transaction) UserID() uuid.UUID                { return t.userID }
func (t *Transaction) OrderID() string                  { return t.orderID }
func (t *Transaction) AuthorityID() *uuid.UUID          { return t.authorityID }

// IsCredit reports whether the movement added money to the wallet.
func (t *Transaction) IsCredit() bool {
	return t.direction == DirectionIn
}

// AttachAuthority records which local authority earned this debit.
func (t *Transaction) AttachAuthority(authorityID uuid.UUID) error {
	if t.direction != DirectionOut {
		return errors.ValidationError{Field: "authority_id", Message: "only debits are earned by an authority"}
	}
	t.authorityID = &authorityID
	return nil
}

// AttachOrder links the gateway order that produced this credit.
// The unique index on order_id is what makes capture replays harmless.
func (t *Transaction) AttachOrder(orderID string) error {
	if t.direction != DirectionIn {
		return errors.ValidationError{Field: "order_id", Message: "only credits carry a gateway order"}
	}
	if orderID == "" {
		return errors.ValidationError{Field: "order_id", Message: "order id is required"}
	}
	t.orderID = orderID
	return nil
}
