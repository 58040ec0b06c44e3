// Package postgres - UserRepository implementation.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/entities"
	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// Compile-time check: UserRepository implements ports.UserRepository
var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository реализует ports.UserRepository с использованием PostgreSQL.
//
// Thread-safe: использует connection pool.
// Transaction-aware: автоматически использует транзакцию из context если есть.
//
// Optimistic locking: кошелёк хранится прямо в users
// (wallet_balance minor units + wallet_version). UPDATE проходит
// только против ожидаемой версии; проигранный CAS всплывает как
// transient conflict и перезапускается на уровне use case.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository создаёт новый UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// querier - абстракция для выполнения запросов.
// Позволяет использовать как pool, так и transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// getQuerier возвращает querier из context (transaction) или pool.
func (r *UserRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save сохраняет пользователя (INSERT или UPDATE).
//
// UPDATE-ветка - это CAS: строка обновляется только если хранимая
// wallet_version ровно на единицу ниже версии entity. Каждый мутатор
// entity продвигает версию на 1, поэтому любое расхождение означает,
// что строку изменили конкурентно, и производный от устаревшего
// состояния баланс записывать нельзя.
func (r *UserRepository) Save(ctx context.Context, user *entities.User) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO users (id, name, email, password_hash, phone, role,
			wallet_balance, wallet_version, default_vehicle_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			phone = EXCLUDED.phone,
			role = EXCLUDED.role,
			wallet_balance = EXCLUDED.wallet_balance,
			wallet_version = EXCLUDED.wallet_version,
			default_vehicle_id = EXCLUDED.default_vehicle_id,
			updated_at = EXCLUDED.updated_at
		WHERE users.wallet_version = EXCLUDED.wallet_version - 1
	`

	tag, err := q.Exec(ctx, query,
		user.ID(),
		user.Name(),
		user.Email(),
		user.PasswordHash(),
		user.Phone(),
		string(user.Role()),
		user.WalletBalance().MinorUnits(),
		user.WalletVersion(),
		user.DefaultVehicleID(),
		user.CreatedAt(),
		user.UpdatedAt(),
	)

	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return domainErrors.NewConflict("User", fmt.Sprintf("email %s is already registered", user.Email()))
		}
		if isUniqueViolation(err, "users_phone_key") {
			return domainErrors.NewConflict("User", fmt.Sprintf("phone %s is already registered", user.Phone()))
		}
		return fmt.Errorf("failed to save user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domainErrors.NewTransientConflict("User", "wallet was modified concurrently")
	}

	return nil
}

// scanUser сканирует строку в domain entity User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*entities.User, error) {
	var (
		userID               uuid.UUID
		name                 string
		email                string
		passwordHash         string
		phone                string
		role                 string
		walletBalance        int64
		walletVersion        int64
		defaultVehicleID     *uuid.UUID
		createdAt, updatedAt time.Time
	)

	err := scanner.Scan(
		&userID,
		&name,
		&email,
		&passwordHash,
		&phone,
		&role,
		&walletBalance,
		&walletVersion,
		&defaultVehicleID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	balance, err := valueobjects.NewMoneyFromMinorUnits(walletBalance)
	if err != nil {
		return nil, fmt.Errorf("corrupt wallet balance for user %s: %w", userID, err)
	}

	return entities.ReconstructUser(
		userID, name, email, passwordHash, phone,
		entities.Role(role),
		balance, walletVersion,
		defaultVehicleID,
		createdAt, updatedAt,
	), nil
}

const userColumns = `id, name, email, password_hash, phone, role, wallet_balance, wallet_version, default_vehicle_id, created_at, updated_at`

// FindByID загружает пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}

	return user, nil
}

// FindByEmail загружает пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// ExistsByEmail проверяет существование пользователя по email.
// Оптимизированный запрос без загрузки всех полей.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := r.getQuerier(ctx)

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := q.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// FindOwnersOf возвращает всех владельцев автомобиля через join-таблицу.
func (r *UserRepository) FindOwnersOf(ctx context.Context, vehicleID uuid.UUID) ([]*entities.User, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT ` + prefixedUserColumns("u") + `
		FROM users u
		JOIN user_vehicles uv ON uv.user_id = u.id
		WHERE uv.vehicle_id = $1
		ORDER BY u.created_at
	`

	rows, err := q.Query(ctx, query, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle owners: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// List возвращает список пользователей с пагинацией.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*entities.User, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := q.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*entities.User, error) {
	var users []*entities.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// prefixedUserColumns возвращает userColumns с табличным префиксом.
func prefixedUserColumns(alias string) string {
	return alias + `.id, ` + alias + `.name, ` + alias + `.email, ` + alias + `.password_hash, ` +
		alias + `.phone, ` + alias + `.role, ` + alias + `.wallet_balance, ` + alias + `.wallet_version, ` +
		alias + `.default_vehicle_id, ` + alias + `.created_at, ` + alias + `.updated_at`
}
