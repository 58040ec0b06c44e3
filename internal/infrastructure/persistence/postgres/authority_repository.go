// Package postgres - AuthorityRepository implementation.
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
var _ ports.AuthorityRepository = (*AuthorityRepository)(nil)

// AuthorityRepository реализует ports.AuthorityRepository.
//
// Доход хранится в сенах как BIGINT. Save использует тот же CAS-паттерн,
// что и кошелёк пользователя: конкурентные начисления от двух платежей
// не должны терять друг друга, проигравший перечитывает и повторяет.
type AuthorityRepository struct {
	pool *pgxpool.Pool
}

// NewAuthorityRepository создаёт новый AuthorityRepository.
func NewAuthorityRepository(pool *pgxpool.Pool) *AuthorityRepository {
	return &AuthorityRepository{pool: pool}
}

// getQuerier возвращает querier из context или pool.
func (r *AuthorityRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const authorityColumns = `id, name, nickname, email, phone, area, state, income, total_income, version, created_at, updated_at`

// Save сохраняет authority с optimistic locking по version.
func (r *AuthorityRepository) Save(ctx context.Context, authority *entities.LocalAuthority) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO local_authorities (id, name, nickname, email, phone, area, state, income, total_income, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			nickname = EXCLUDED.nickname,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			area = EXCLUDED.area,
			state = EXCLUDED.state,
			income = EXCLUDED.income,
			total_income = EXCLUDED.total_income,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
		WHERE local_authorities.version IN (EXCLUDED.version, EXCLUDED.version - 1)
	`

	tag, err := q.Exec(ctx, query,
		authority.ID(),
		authority.Name(),
		authority.Nickname(),
		authority.Email(),
		authority.Phone(),
		authority.Area(),
		authority.State(),
		authority.Income().MinorUnits(),
		authority.TotalIncome().MinorUnits(),
		authority.Version(),
		authority.CreatedAt(),
		authority.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "local_authorities_email_key") {
			return domainErrors.NewConflict("LocalAuthority", "email is already registered")
		}
		return fmt.Errorf("failed to save local authority: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domainErrors.NewTransientConflict("LocalAuthority", "authority was modified concurrently")
	}

	return nil
}

// FindByID загружает authority по ID.
func (r *AuthorityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.LocalAuthority, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + authorityColumns + ` FROM local_authorities WHERE id = $1`

	return scanAuthority(q.QueryRow(ctx, query, id))
}

// FindByEmail загружает authority по email.
func (r *AuthorityRepository) FindByEmail(ctx context.Context, email string) (*entities.LocalAuthority, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + authorityColumns + ` FROM local_authorities WHERE email = $1`

	return scanAuthority(q.QueryRow(ctx, query, email))
}

// List возвращает authorities с пагинацией, по имени.
func (r *AuthorityRepository) List(ctx context.Context, offset, limit int) ([]*entities.LocalAuthority, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + authorityColumns + ` FROM local_authorities ORDER BY name OFFSET $1 LIMIT $2`

	rows, err := q.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list local authorities: %w", err)
	}
	defer rows.Close()

	var authorities []*entities.LocalAuthority
	for rows.Next() {
		authority, err := scanAuthorityFields(rows)
		if err != nil {
			return nil, err
		}
		authorities = append(authorities, authority)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authority rows: %w", err)
	}

	return authorities, nil
}

// Delete удаляет authority. Исторические транзакции остаются: журнал
// ссылается на authority_id без FK-каскада.
func (r *AuthorityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := r.getQuerier(ctx)

	tag, err := q.Exec(ctx, `DELETE FROM local_authorities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete local authority: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrAuthorityNotFound
	}

	return nil
}

func scanAuthority(row pgx.Row) (*entities.LocalAuthority, error) {
	authority, err := scanAuthorityFields(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrAuthorityNotFound
		}
		return nil, err
	}
	return authority, nil
}

func scanAuthorityFields(scanner interface{ Scan(dest ...any) error }) (*entities.LocalAuthority, error) {
	var (
		id                                       uuid.UUID
		name, nickname, email, phone, area, state string
		incomeMinor, totalIncomeMinor            int64
		version                                  int64
		createdAt, updatedAt                     time.Time
	)

	err := scanner.Scan(
		&id,
		&name,
		&nickname,
		&email,
		&phone,
		&area,
		&state,
		&incomeMinor,
		&totalIncomeMinor,
		&version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan local authority: %w", err)
	}

	income, err := valueobjects.NewMoneyFromMinorUnits(incomeMinor)
	if err != nil {
		return nil, fmt.Errorf("corrupt income for authority %s: %w", id, err)
	}
	totalIncome, err := valueobjects.NewMoneyFromMinorUnits(totalIncomeMinor)
	if err != nil {
		return nil, fmt.Errorf("corrupt total income for authority %s: %w", id, err)
	}

	return entities.ReconstructLocalAuthority(
		id,
		name, nickname, email, phone, area, state,
		income,
		totalIncome,
		version,
		createdAt,
		updatedAt,
	), nil
}
