// Package postgres - SamanRepository implementation.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
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
var _ ports.SamanRepository = (*SamanRepository)(nil)

// SamanRepository реализует ports.SamanRepository.
//
// Цена хранится в минорных единицах (сенах) как BIGINT, статус - строкой.
// Повторная оплата отсекается доменом (MarkPaid), а не БД: строка штрафа
// не участвует в optimistic locking, её перезапись идемпотентна.
type SamanRepository struct {
	pool *pgxpool.Pool
}

// NewSamanRepository создаёт новый SamanRepository.
func NewSamanRepository(pool *pgxpool.Pool) *SamanRepository {
	return &SamanRepository{pool: pool}
}

// getQuerier возвращает querier из context или pool.
func (r *SamanRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const samanColumns = `id, offense, issued_at, price, vehicle_id, authority_id, creator_id, status, created_at, updated_at`

// Save сохраняет штраф (insert or update статуса).
func (r *SamanRepository) Save(ctx context.Context, saman *entities.Saman) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO samans (id, offense, issued_at, price, vehicle_id, authority_id, creator_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := q.Exec(ctx, query,
		saman.ID(),
		saman.Offense(),
		saman.IssuedAt(),
		saman.Price().MinorUnits(),
		saman.VehicleID(),
		saman.AuthorityID(),
		saman.CreatorID(),
		string(saman.Status()),
		saman.CreatedAt(),
		saman.UpdatedAt(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domainErrors.ErrVehicleNotFound
		}
		return fmt.Errorf("failed to save saman: %w", err)
	}

	return nil
}

// FindByID загружает штраф по ID.
func (r *SamanRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Saman, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + samanColumns + ` FROM samans WHERE id = $1`

	saman, err := scanSamanFields(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrSamanNotFound
		}
		return nil, err
	}
	return saman, nil
}

// FindByVehicles возвращает штрафы по набору автомобилей, новые первыми.
func (r *SamanRepository) FindByVehicles(ctx context.Context, vehicleIDs []uuid.UUID, offset, limit int) ([]*entities.Saman, error) {
	if len(vehicleIDs) == 0 {
		return nil, nil
	}

	q := r.getQuerier(ctx)

	query := `
		SELECT ` + samanColumns + `
		FROM samans
		WHERE vehicle_id = ANY($1)
		ORDER BY issued_at DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := q.Query(ctx, query, vehicleIDs, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find samans by vehicles: %w", err)
	}
	defer rows.Close()

	return collectSamans(rows)
}

// List возвращает штрафы с фильтрацией и пагинацией.
func (r *SamanRepository) List(ctx context.Context, filter ports.SamanFilter, offset, limit int) ([]*entities.Saman, error) {
	q := r.getQuerier(ctx)

	conditions := []string{}
	args := []any{}
	argIndex := 1

	if filter.VehicleID != nil {
		conditions = append(conditions, fmt.Sprintf("vehicle_id = $%d", argIndex))
		args = append(args, *filter.VehicleID)
		argIndex++
	}
	if filter.AuthorityID != nil {
		conditions = append(conditions, fmt.Sprintf("authority_id = $%d", argIndex))
		args = append(args, *filter.AuthorityID)
		argIndex++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, string(*filter.Status))
		argIndex++
	}

	query := `SELECT ` + samanColumns + ` FROM samans`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY issued_at DESC OFFSET $%d LIMIT $%d", argIndex, argIndex+1)
	args = append(args, offset, limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list samans: %w", err)
	}
	defer rows.Close()

	return collectSamans(rows)
}

func collectSamans(rows pgx.Rows) ([]*entities.Saman, error) {
	var samans []*entities.Saman
	for rows.Next() {
		saman, err := scanSamanFields(rows)
		if err != nil {
			return nil, err
		}
		samans = append(samans, saman)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saman rows: %w", err)
	}
	return samans, nil
}

func scanSamanFields(scanner interface{ Scan(dest ...any) error }) (*entities.Saman, error) {
	var (
		id, vehicleID, authorityID, creatorID uuid.UUID
		offense, status                       string
		priceMinor                            int64
		issuedAt, createdAt, updatedAt        time.Time
	)

	err := scanner.Scan(
		&id,
		&offense,
		&issuedAt,
		&priceMinor,
		&vehicleID,
		&authorityID,
		&creatorID,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan saman: %w", err)
	}

	price, err := valueobjects.NewMoneyFromMinorUnits(priceMinor)
	if err != nil {
		return nil, fmt.Errorf("corrupt price for saman %s: %w", id, err)
	}

	return entities.ReconstructSaman(
		id,
		offense,
		issuedAt,
		price,
		vehicleID,
		authorityID,
		creatorID,
		entities.SamanStatus(status),
		createdAt,
		updatedAt,
	), nil
}
