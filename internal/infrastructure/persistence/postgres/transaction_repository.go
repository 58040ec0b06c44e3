// Package postgres - TransactionRepository implementation with idempotency support.
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
var _ ports.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository реализует ports.TransactionRepository.
//
// Ключевые особенности:
// - Журнал append-only: Save - это чистый INSERT
// - Idempotency capture через partial unique index на order_id
// - Amount хранится как BIGINT (minor units, sen)
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository создаёт новый TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// getQuerier возвращает querier из context или pool.
func (r *TransactionRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const transactionColumns = `id, user_id, label, amount, direction, note, order_id, authority_id, occurred_at`

// Save записывает движение в журнал.
//
// Дубликат order_id означает, что другой процесс уже закоммитил
// capture того же ордера - это transient conflict, use case перечитает
// оригинальную транзакцию.
func (r *TransactionRepository) Save(ctx context.Context, tx *entities.Transaction) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO transactions (id, user_id, label, amount, direction, note, order_id, authority_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
	`

	_, err := q.Exec(ctx, query,
		tx.ID(),
		tx.UserID(),
		string(tx.Label()),
		tx.Amount().MinorUnits(),
		string(tx.Direction()),
		tx.Note(),
		tx.OrderID(),
		tx.AuthorityID(),
		tx.OccurredAt(),
	)

	if err != nil {
		if isUniqueViolation(err, "transactions_order_id_key") {
			return domainErrors.NewTransientConflict("Transaction", fmt.Sprintf("order %s is already captured", tx.OrderID()))
		}
		if isForeignKeyViolation(err) {
			return domainErrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	return nil
}

// FindByID загружает транзакцию по ID.
func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	return scanTransaction(q.QueryRow(ctx, query, id))
}

// FindByOrderID находит транзакцию по ордеру шлюза.
// Критично для идемпотентного capture!
func (r *TransactionRepository) FindByOrderID(ctx context.Context, orderID string) (*entities.Transaction, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE order_id = $1`

	return scanTransaction(q.QueryRow(ctx, query, orderID))
}

// FindByUser возвращает движения пользователя, новые первыми.
// Границы фильтра задают полуинтервал [From, To) по occurred_at.
func (r *TransactionRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
	`
	args := []interface{}{userID}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND occurred_at < $%d", len(args))
	}

	args = append(args, offset, limit)
	query += fmt.Sprintf(" ORDER BY occurred_at DESC OFFSET $%d LIMIT $%d", len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions by user: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SumByAuthorityAndRange суммирует дебеты в пользу authority за
// полуинтервал [from, to). COALESCE: пустой интервал - это ноль,
// а не отсутствие строки.
func (r *TransactionRepository) SumByAuthorityAndRange(ctx context.Context, authorityID uuid.UUID, from, to time.Time) (valueobjects.Money, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE authority_id = $1
		  AND direction = 'out'
		  AND occurred_at >= $2
		  AND occurred_at < $3
	`

	var total int64
	if err := q.QueryRow(ctx, query, authorityID, from, to).Scan(&total); err != nil {
		return valueobjects.Zero(), fmt.Errorf("failed to sum authority income: %w", err)
	}

	return valueobjects.NewMoneyFromMinorUnits(total)
}

// SumCreditsByDay группирует кредиты по календарным суткам UTC.
func (r *TransactionRepository) SumCreditsByDay(ctx context.Context, filter ports.TransactionFilter) ([]ports.DailyCredit, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT (occurred_at AT TIME ZONE 'UTC')::date AS day, SUM(amount)
		FROM transactions
		WHERE direction = 'in'
	`
	args := []interface{}{}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND occurred_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND occurred_at < $%d", len(args))
	}

	query += " GROUP BY day ORDER BY day"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum credits by day: %w", err)
	}
	defer rows.Close()

	var results []ports.DailyCredit
	for rows.Next() {
		var day time.Time
		var total int64
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("failed to scan daily credit: %w", err)
		}
		money, err := valueobjects.NewMoneyFromMinorUnits(total)
		if err != nil {
			return nil, err
		}
		results = append(results, ports.DailyCredit{Day: day, Total: money})
	}

	return results, rows.Err()
}

// scanTransaction сканирует одну строку в Transaction entity.
func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	tx, err := scanTransactionFields(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return tx, nil
}

func scanTransactionFields(scanner interface{ Scan(dest ...any) error }) (*entities.Transaction, error) {
	var (
		id, userID  uuid.UUID
		label       string
		amountUnits int64
		direction   string
		note        string
		orderID     *string
		authorityID *uuid.UUID
		occurredAt  time.Time
	)

	err := scanner.Scan(
		&id,
		&userID,
		&label,
		&amountUnits,
		&direction,
		&note,
		&orderID,
		&authorityID,
		&occurredAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := valueobjects.NewMoneyFromMinorUnits(amountUnits)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount in transaction %s: %w", id, err)
	}

	order := ""
	if orderID != nil {
		order = *orderID
	}

	return entities.ReconstructTransaction(
		id,
		entities.TransactionLabel(label),
		amount,
		occurredAt,
		entities.TransactionDirection(direction),
		note,
		userID,
		order,
		authorityID,
	), nil
}

// scanTransactions сканирует несколько строк.
func scanTransactions(rows pgx.Rows) ([]*entities.Transaction, error) {
	var transactions []*entities.Transaction

	for rows.Next() {
		tx, err := scanTransactionFields(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
