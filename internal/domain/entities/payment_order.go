// Package entities - PaymentOrder tracks a PayPal order between creation
// and capture so replayed confirmations cannot double-credit a wallet.
package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// OrderStatus is the reconciliation state of a gateway order.
type OrderStatus string

const (
	OrderStatusCreated  OrderStatus = "created"  // Approval link issued, wallet untouched
	OrderStatusCaptured OrderStatus = "captured" // Funds reconciled into the wallet
)

// PaymentOrder is the pending external-payment reference produced by
// top-up initiation. Nothing in the ledger moves until it is captured.
type PaymentOrder struct {
	orderID   string // Gateway-assigned id, the idempotency anchor
	userID    uuid.UUID
	amount    valueobjects.Money
	status    OrderStatus
	createdAt time.Time
	updatedAt time.Time
}

// NewPaymentOrder records an order the gateway just created.
func NewPaymentOrder(orderID string, userID uuid.UUID, amount valueobjects.Money) (*PaymentOrder, error) {
	if orderID == "" {
		return nil, errors.ValidationError{Field: "order_id", Message: "gateway order id is required"}
	}
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	now := time.Now().UTC()
	return &PaymentOrder{
		orderID:   orderID,
		userID:    userID,
		amount:    amount,
		status:    OrderStatusCreated,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructPaymentOrder hydrates an order from storage.
func ReconstructPaymentOrder(orderID string, userID uuid.UUID, amount valueobjects.Money, status OrderStatus, createdAt, updatedAt time.Time) *PaymentOrder {
	return &PaymentOrder{
		orderID:   orderID,
		userID:    userID,
		amount:    amount,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (o *PaymentOrder) OrderID() string             { return o.orderID }
func (o *PaymentOrder) UserID() uuid.UUID           { return o.userID }
func (o *PaymentOrder) Amount() valueobjects.Money  { return o.amount }
func (o *PaymentOrder) Status() OrderStatus         { return o.status }
func (o *PaymentOrder) CreatedAt() time.Time        { return o.createdAt }
func (o *PaymentOrder) UpdatedAt() time.Time        { return o.updatedAt }

// IsCaptured reports whether the order already credited a wallet.
func (o *PaymentOrder) IsCaptured() bool {
	return o.status == OrderStatusCaptured
}

// MarkCaptured transitions the order to captured with the amount the
// gateway actually settled (which wins over the requested amount).
func (o *PaymentOrder) MarkCaptured(captured valueobjects.Money) error {
	if o.status == OrderStatusCaptured {
		return errors.NewConflict("PaymentOrder", "order already captured")
	}
	if !captured.IsPositive() {
		return errors.ErrAmountMissing
	}
	o.amount = captured
	o.status = OrderStatusCaptured
	o.updatedAt = time.Now().UTC()
	return nil
}
