// Package postgres - вспомогательные функции для репозиториев.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// txKey - ключ транзакции в context.
type txKey struct{}

// injectTx кладёт транзакцию в context. UnitOfWork передаёт её так
// репозиториям, чтобы user, session и outbox писались атомарно.
func injectTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// extractTx достаёт транзакцию из context, nil если её нет.
func extractTx(ctx context.Context) pgx.Tx {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil
	}
	return tx
}

func hasTx(ctx context.Context) bool {
	return extractTx(ctx) != nil
}

// Коды ошибок PostgreSQL, которые репозитории переводят в доменные.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	// Для retry в UnitOfWork
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// isUniqueViolation проверяет нарушение UNIQUE constraint.
// Непустое constraintName сужает проверку до конкретного constraint:
// у users их два (email и phone), и сообщения об ошибке разные.
func isUniqueViolation(err error, constraintName string) bool {
	pgErr, ok := asPgError(err)
	if !ok || pgErr.Code != pgUniqueViolation {
		return false
	}
	if constraintName != "" {
		return strings.Contains(pgErr.ConstraintName, constraintName)
	}
	return true
}

// isForeignKeyViolation проверяет нарушение foreign key constraint.
func isForeignKeyViolation(err error) bool {
	pgErr, ok := asPgError(err)
	return ok && pgErr.Code == pgForeignKeyViolation
}

// isRetryableError - можно ли повторить транзакцию целиком.
// Retryable: deadlock, serialization failure, ошибки соединения (class 08).
func isRetryableError(err error) bool {
	pgErr, ok := asPgError(err)
	if !ok {
		return false
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return strings.HasPrefix(pgErr.Code, "08")
}
