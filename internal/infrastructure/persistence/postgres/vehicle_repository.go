// Package postgres - VehicleRepository implementation.
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
var _ ports.VehicleRepository = (*VehicleRepository)(nil)

// VehicleRepository реализует ports.VehicleRepository.
//
// Владение - many-to-many через user_vehicles. Save применяет только
// накопленные дельты владения (кто привязался, кто отвязался): полная
// синхронизация по снимку затирала бы владельцев, привязавшихся
// параллельно. Уникальность тройки (plate, brand, color) держит БД.
type VehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository создаёт новый VehicleRepository.
func NewVehicleRepository(pool *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{pool: pool}
}

// getQuerier возвращает querier из context или pool.
func (r *VehicleRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save сохраняет автомобиль и его владельцев.
func (r *VehicleRepository) Save(ctx context.Context, vehicle *entities.Vehicle) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO vehicles (id, license_plate, brand, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			updated_at = EXCLUDED.updated_at
	`

	plate := vehicle.Plate()
	_, err := q.Exec(ctx, query,
		vehicle.ID(),
		plate.Number(),
		plate.Brand(),
		plate.Color(),
		vehicle.CreatedAt(),
		vehicle.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "vehicles_plate_triple_key") {
			// Гонка двух регистраций одной тройки: вторая сторона
			// перечитает машину и добавит себя во владельцы.
			return domainErrors.NewTransientConflict("Vehicle", "plate triple was registered concurrently")
		}
		return fmt.Errorf("failed to save vehicle: %w", err)
	}

	return r.syncOwners(ctx, q, vehicle)
}

// syncOwners применяет дельты владения точечными INSERT/DELETE.
// Чужие строки join-таблицы не трогаем: stale-снимок одного
// пользователя не должен отвязывать совладельца, привязавшегося
// между чтением и записью.
func (r *VehicleRepository) syncOwners(ctx context.Context, q querier, vehicle *entities.Vehicle) error {
	linked, unlinked := vehicle.OwnerChanges()

	insertQuery := `
		INSERT INTO user_vehicles (user_id, vehicle_id, linked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, vehicle_id) DO NOTHING
	`
	now := time.Now().UTC()
	for _, ownerID := range linked {
		if _, err := q.Exec(ctx, insertQuery, ownerID, vehicle.ID(), now); err != nil {
			if isForeignKeyViolation(err) {
				return domainErrors.ErrUserNotFound
			}
			return fmt.Errorf("failed to link owner: %w", err)
		}
	}

	deleteQuery := `DELETE FROM user_vehicles WHERE vehicle_id = $1 AND user_id = $2`
	for _, ownerID := range unlinked {
		if _, err := q.Exec(ctx, deleteQuery, vehicle.ID(), ownerID); err != nil {
			return fmt.Errorf("failed to unlink owner: %w", err)
		}
	}

	return nil
}

// FindByID загружает автомобиль по ID вместе с владельцами.
func (r *VehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Vehicle, error) {
	q := r.getQuerier(ctx)

	query := `SELECT id, license_plate, brand, color, created_at, updated_at FROM vehicles WHERE id = $1`

	return r.scanVehicleWithOwners(ctx, q, q.QueryRow(ctx, query, id))
}

// FindByPlate ищет автомобиль по канонизированной тройке.
func (r *VehicleRepository) FindByPlate(ctx context.Context, plate valueobjects.Plate) (*entities.Vehicle, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, license_plate, brand, color, created_at, updated_at
		FROM vehicles
		WHERE license_plate = $1 AND brand = $2 AND color = $3
	`

	return r.scanVehicleWithOwners(ctx, q, q.QueryRow(ctx, query, plate.Number(), plate.Brand(), plate.Color()))
}

// FindByOwner возвращает автомобили пользователя.
func (r *VehicleRepository) FindByOwner(ctx context.Context, userID uuid.UUID) ([]*entities.Vehicle, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT v.id, v.license_plate, v.brand, v.color, v.created_at, v.updated_at
		FROM vehicles v
		JOIN user_vehicles uv ON uv.vehicle_id = v.id
		WHERE uv.user_id = $1
		ORDER BY v.created_at
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicles by owner: %w", err)
	}

	// Сначала вычитываем все строки: нельзя выполнять вложенные запросы
	// на том же соединении, пока rows открыт.
	type vehicleRow struct {
		id                   uuid.UUID
		number, brand, color string
		createdAt, updatedAt time.Time
	}
	var raws []vehicleRow
	for rows.Next() {
		var raw vehicleRow
		if err := rows.Scan(&raw.id, &raw.number, &raw.brand, &raw.color, &raw.createdAt, &raw.updatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan vehicle row: %w", err)
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating vehicle rows: %w", err)
	}
	rows.Close()

	var vehicles []*entities.Vehicle
	for _, raw := range raws {
		plate, err := valueobjects.NewPlate(raw.number, raw.brand, raw.color)
		if err != nil {
			return nil, fmt.Errorf("corrupt plate triple for vehicle %s: %w", raw.id, err)
		}
		owners, err := r.loadOwnerIDs(ctx, q, raw.id)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, entities.ReconstructVehicle(raw.id, plate, owners, raw.createdAt, raw.updatedAt))
	}

	return vehicles, nil
}

func (r *VehicleRepository) scanVehicleWithOwners(ctx context.Context, q querier, row pgx.Row) (*entities.Vehicle, error) {
	var (
		id                   uuid.UUID
		number, brand, color string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &number, &brand, &color, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to scan vehicle: %w", err)
	}

	plate, err := valueobjects.NewPlate(number, brand, color)
	if err != nil {
		return nil, fmt.Errorf("corrupt plate triple for vehicle %s: %w", id, err)
	}

	owners, err := r.loadOwnerIDs(ctx, q, id)
	if err != nil {
		return nil, err
	}

	return entities.ReconstructVehicle(id, plate, owners, createdAt, updatedAt), nil
}

func (r *VehicleRepository) loadOwnerIDs(ctx context.Context, q querier, vehicleID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM user_vehicles WHERE vehicle_id = $1 ORDER BY linked_at`

	rows, err := q.Query(ctx, query, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicle owners: %w", err)
	}
	defer rows.Close()

	var owners []uuid.UUID
	for rows.Next() {
		var ownerID uuid.UUID
		if err := rows.Scan(&ownerID); err != nil {
			return nil, fmt.Errorf("failed to scan owner row: %w", err)
		}
		owners = append(owners, ownerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owner rows: %w", err)
	}

	return owners, nil
}
