// Package postgres - PaymentOrderRepository implementation.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// Compile-time check
var _ ports.PaymentOrderRepository = (*PaymentOrderRepository)(nil)

// PaymentOrderRepository реализует ports.PaymentOrderRepository.
//
// Первичный ключ - order_id, выданный шлюзом: это якорь идемпотентности
// всей схемы top-up. Amount хранится в сенах, при capture перезаписывается
// фактически зачисленной суммой.
type PaymentOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentOrderRepository создаёт новый PaymentOrderRepository.
func NewPaymentOrderRepository(pool *pgxpool.Pool) *PaymentOrderRepository {
	return &PaymentOrderRepository{pool: pool}
}

// getQuerier возвращает querier из context или pool.
func (r *PaymentOrderRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save сохраняет ордер (create or update статуса).
func (r *PaymentOrderRepository) Save(ctx context.Context, order *entities.PaymentOrder) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO payment_orders (order_id, user_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := q.Exec(ctx, query,
		order.OrderID(),
		order.UserID(),
		order.Amount().MinorUnits(),
		string(order.Status()),
		order.CreatedAt(),
		order.UpdatedAt(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domainErrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to save payment order: %w", err)
	}

	return nil
}

// FindByOrderID загружает ордер по gateway id.
func (r *PaymentOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*entities.PaymentOrder, error) {
	q := r.getQuerier(ctx)

	query := `SELECT order_id, user_id, amount, status, created_at, updated_at FROM payment_orders WHERE order_id = $1`

	var (
		id                   string
		userID               uuid.UUID
		amountMinor          int64
		status               string
		createdAt, updatedAt time.Time
	)
	err := q.QueryRow(ctx, query, orderID).Scan(&id, &userID, &amountMinor, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find payment order: %w", err)
	}

	amount, err := valueobjects.NewMoneyFromMinorUnits(amountMinor)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for order %s: %w", id, err)
	}

	return entities.ReconstructPaymentOrder(
		id,
		userID,
		amount,
		entities.OrderStatus(status),
		createdAt,
		updatedAt,
	), nil
}
