// Package ports определяет интерфейсы (порты) для внешних зависимостей.
// Эти интерфейсы реализуются в Infrastructure Layer.
//
// Pattern: Repository Pattern + Ports & Adapters (Hexagonal Architecture)
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mypark/parkwallet/internal/domain/entities"
	"github.com/mypark/parkwallet/internal/domain/valueobjects"
)

// UserRepository определяет контракт для хранения пользователей и их кошельков.
//
// Why interface? (DIP)
// - Application Layer не знает о БД
// - Легко мокировать для тестов
type UserRepository interface {
	// Save сохраняет пользователя (create or update).
	//
	// Важно: обновление записывает wallet_balance с проверкой
	// wallet_version (optimistic locking). Если версия в БД не совпадает
	// с той, что была загружена - возвращает ConcurrencyError, и вся
	// транзакция откатывается. Это и есть гарантия no-overspend при
	// конкурентных списаниях.
	Save(ctx context.Context, user *entities.User) error

	// FindByID загружает пользователя по ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// FindByEmail загружает пользователя по email (UNIQUE constraint).
	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	// ExistsByEmail проверяет существование без загрузки всей entity.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindOwnersOf возвращает всех владельцев автомобиля.
	// Нужно для уведомлений при выписке saman.
	FindOwnersOf(ctx context.Context, vehicleID uuid.UUID) ([]*entities.User, error)

	// List возвращает список пользователей с пагинацией.
	List(ctx context.Context, offset, limit int) ([]*entities.User, error)
}

// VehicleRepository определяет контракт для хранения автомобилей.
//
// Логическая идентичность автомобиля - тройка (plate, brand, color).
// Повторная регистрация той же тройки не создаёт дубликат, а добавляет
// пользователя в набор владельцев существующей записи.
type VehicleRepository interface {
	// Save сохраняет автомобиль вместе с набором владельцев.
	// Связи user_vehicles синхронизируются с entity (добавленные и
	// удалённые владельцы) в той же транзакции.
	Save(ctx context.Context, vehicle *entities.Vehicle) error

	// FindByID загружает автомобиль по ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Vehicle, error)

	// FindByPlate находит автомобиль по канонизированной тройке.
	// Возвращает ErrVehicleNotFound если тройка не зарегистрирована.
	FindByPlate(ctx context.Context, plate valueobjects.Plate) (*entities.Vehicle, error)

	// FindByOwner возвращает автомобили пользователя.
	FindByOwner(ctx context.Context, userID uuid.UUID) ([]*entities.Vehicle, error)
}

// ParkingSessionRepository определяет контракт для хранения парковочных сессий.
type ParkingSessionRepository interface {
	// Save сохраняет сессию с проверкой версии (optimistic locking).
	Save(ctx context.Context, session *entities.ParkingSession) error

	// FindByID загружает сессию по ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ParkingSession, error)

	// FindOngoingByVehicle возвращает активную сессию автомобиля.
	// Инвариант: не более одной ongoing-сессии на автомобиль.
	// Возвращает ErrSessionNotFound если активной сессии нет.
	FindOngoingByVehicle(ctx context.Context, vehicleID uuid.UUID) (*entities.ParkingSession, error)

	// FindByCreator возвращает сессии пользователя, новые первыми.
	// Пустой status - без фильтра; "ongoing" оставляет только активные.
	FindByCreator(ctx context.Context, userID uuid.UUID, status entities.SessionStatus, offset, limit int) ([]*entities.ParkingSession, error)

	// FindExpired возвращает ongoing-сессии, у которых end_time уже в
	// прошлом. Используется фоновым sweep'ом для перевода в complete.
	FindExpired(ctx context.Context, asOf time.Time, limit int) ([]*entities.ParkingSession, error)
}

// SamanFilter определяет критерии фильтрации для штрафов.
type SamanFilter struct {
	VehicleID   *uuid.UUID
	AuthorityID *uuid.UUID
	Status      *entities.SamanStatus
}

// SamanRepository определяет контракт для хранения штрафов (saman).
type SamanRepository interface {
	// Save сохраняет штраф.
	Save(ctx context.Context, saman *entities.Saman) error

	// FindByID загружает штраф по ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Saman, error)

	// FindByVehicles возвращает штрафы по набору автомобилей, новые
	// первыми. Используется для fine history пользователя.
	FindByVehicles(ctx context.Context, vehicleIDs []uuid.UUID, offset, limit int) ([]*entities.Saman, error)

	// List возвращает штрафы с фильтрацией и пагинацией.
	List(ctx context.Context, filter SamanFilter, offset, limit int) ([]*entities.Saman, error)
}

// TransactionFilter определяет критерии фильтрации журнала.
// Полуинтервал [From, To): nil-границы не ограничивают выборку.
type TransactionFilter struct {
	From *time.Time
	To   *time.Time
}

// TransactionRepository определяет контракт для append-only журнала кошелька.
type TransactionRepository interface {
	// Save добавляет запись в журнал. Записи никогда не обновляются.
	Save(ctx context.Context, tx *entities.Transaction) error

	// FindByID загружает запись по ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)

	// FindByOrderID находит транзакцию по gateway order id.
	// Уникальный индекс по order_id - якорь идемпотентности capture:
	// повторное подтверждение того же ордера находит существующую запись
	// и не трогает кошелёк. Возвращает ErrOrderNotFound если записи нет.
	FindByOrderID(ctx context.Context, orderID string) (*entities.Transaction, error)

	// FindByUser возвращает записи пользователя, новые первыми,
	// с опциональным ограничением по дате операции.
	FindByUser(ctx context.Context, userID uuid.UUID, filter TransactionFilter, offset, limit int) ([]*entities.Transaction, error)

	// SumByAuthorityAndRange суммирует дебеты в пользу authority за
	// интервал [from, to). Основа для отчёта daily income.
	SumByAuthorityAndRange(ctx context.Context, authorityID uuid.UUID, from, to time.Time) (valueobjects.Money, error)

	// SumCreditsByDay группирует кредиты ("in") по календарным суткам
	// UTC. Границы фильтра опциональны.
	SumCreditsByDay(ctx context.Context, filter TransactionFilter) ([]DailyCredit, error)
}

// DailyCredit - сумма кредитов за одни календарные сутки.
type DailyCredit struct {
	Day   time.Time
	Total valueobjects.Money
}

// AuthorityRepository определяет контракт для хранения местных властей.
type AuthorityRepository interface {
	// Save сохраняет authority с проверкой версии (optimistic locking):
	// конкурентные начисления дохода не должны терять друг друга.
	Save(ctx context.Context, authority *entities.LocalAuthority) error

	// FindByID загружает authority по ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.LocalAuthority, error)

	// FindByEmail загружает authority по email.
	FindByEmail(ctx context.Context, email string) (*entities.LocalAuthority, error)

	// List возвращает все authorities с пагинацией.
	List(ctx context.Context, offset, limit int) ([]*entities.LocalAuthority, error)

	// Delete удаляет authority. Исторические транзакции остаются.
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentOrderRepository определяет контракт для pending-ордеров шлюза.
type PaymentOrderRepository interface {
	// Save сохраняет ордер (create or update статуса).
	Save(ctx context.Context, order *entities.PaymentOrder) error

	// FindByOrderID загружает ордер по gateway id.
	// Возвращает ErrOrderNotFound если ордер неизвестен.
	FindByOrderID(ctx context.Context, orderID string) (*entities.PaymentOrder, error)
}
