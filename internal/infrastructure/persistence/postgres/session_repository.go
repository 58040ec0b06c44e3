// Package postgres - ParkingSessionRepository implementation.
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
)

// Compile-time check
var _ ports.ParkingSessionRepository = (*SessionRepository)(nil)

// SessionRepository реализует ports.ParkingSessionRepository.
//
// end_time не хранится: он всегда выводится из starting_time + duration,
// поэтому продление сессии не может рассинхронизировать конец с началом.
// Save использует version-guarded UPSERT: проигравший конкурентное
// продление получает TransientConflict и перечитывает сессию.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository создаёт новый SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// getQuerier возвращает querier из context или pool.
func (r *SessionRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const sessionColumns = `id, starting_time, duration_minutes, authority_id, vehicle_id, creator_id, status, version, created_at, updated_at`

// Save сохраняет сессию с optimistic locking по version.
func (r *SessionRepository) Save(ctx context.Context, session *entities.ParkingSession) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO parking_sessions (id, starting_time, duration_minutes, authority_id, vehicle_id, creator_id, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			duration_minutes = EXCLUDED.duration_minutes,
			status = EXCLUDED.status,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
		WHERE parking_sessions.version IN (EXCLUDED.version, EXCLUDED.version - 1)
	`

	tag, err := q.Exec(ctx, query,
		session.ID(),
		session.StartingTime(),
		session.DurationMinutes(),
		session.AuthorityID(),
		session.VehicleID(),
		session.CreatorID(),
		string(session.Status()),
		session.Version(),
		session.CreatedAt(),
		session.UpdatedAt(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domainErrors.ErrVehicleNotFound
		}
		return fmt.Errorf("failed to save parking session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domainErrors.NewTransientConflict("ParkingSession", "session was modified concurrently")
	}

	return nil
}

// FindByID загружает сессию по ID.
func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ParkingSession, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE id = $1`

	return scanSession(q.QueryRow(ctx, query, id))
}

// FindOngoingByVehicle возвращает активную сессию автомобиля.
func (r *SessionRepository) FindOngoingByVehicle(ctx context.Context, vehicleID uuid.UUID) (*entities.ParkingSession, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE vehicle_id = $1 AND status = 'ongoing'`

	return scanSession(q.QueryRow(ctx, query, vehicleID))
}

// FindByCreator возвращает сессии пользователя, новые первыми.
// Фильтр по status = 'ongoing' попадает в частичный индекс
// idx_parking_sessions_ongoing.
func (r *SessionRepository) FindByCreator(ctx context.Context, userID uuid.UUID, status entities.SessionStatus, offset, limit int) ([]*entities.ParkingSession, error) {
	q := r.getQuerier(ctx)

	args := []interface{}{userID}
	query := `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE creator_id = $1
	`
	if status != "" {
		args = append(args, string(status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, offset, limit)
	query += fmt.Sprintf(" ORDER BY starting_time DESC OFFSET $%d LIMIT $%d", len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find sessions by creator: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// FindExpired возвращает ongoing-сессии с end_time в прошлом.
//
// end_time вычисляется в запросе из starting_time + duration_minutes,
// поэтому sweep видит ровно те же границы, что и доменная логика.
func (r *SessionRepository) FindExpired(ctx context.Context, asOf time.Time, limit int) ([]*entities.ParkingSession, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT ` + sessionColumns + `
		FROM parking_sessions
		WHERE status = 'ongoing'
		  AND starting_time + make_interval(mins => duration_minutes) <= $1
		ORDER BY starting_time
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, asOf.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]*entities.ParkingSession, error) {
	var sessions []*entities.ParkingSession
	for rows.Next() {
		session, err := scanSessionFields(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (*entities.ParkingSession, error) {
	session, err := scanSessionFields(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func scanSessionFields(scanner interface{ Scan(dest ...any) error }) (*entities.ParkingSession, error) {
	var (
		id, authorityID, vehicleID, creatorID uuid.UUID
		startingTime, createdAt, updatedAt    time.Time
		durationMinutes                       int
		status                                string
		version                               int64
	)

	err := scanner.Scan(
		&id,
		&startingTime,
		&durationMinutes,
		&authorityID,
		&vehicleID,
		&creatorID,
		&status,
		&version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan parking session: %w", err)
	}

	return entities.ReconstructParkingSession(
		id,
		startingTime,
		durationMinutes,
		authorityID,
		vehicleID,
		creatorID,
		entities.SessionStatus(status),
		version,
		createdAt,
		updatedAt,
	), nil
}
