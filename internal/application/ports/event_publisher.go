// Package ports - EventPublisher для публикации domain events.
//
// Pattern: Transactional Outbox + Publisher.
// Use cases пишут события в outbox в той же БД-транзакции, что и
// бизнес-операция; отдельный poller читает outbox и публикует в NATS.
package ports

import (
	"context"

	"github.com/mypark/parkwallet/internal/domain/events"
)

// EventPublisher определяет контракт для публикации domain events.
//
// Реализации:
// - NATS (production)
// - In-memory (тесты)
type EventPublisher interface {
	// Publish публикует одно событие.
	//
	// Behaviour:
	// - At-least-once delivery (возможны дубликаты)
	// - Consumers должны быть идемпотентными
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch публикует несколько событий за один вызов.
	// Если одно событие не удалось - вся batch проваливается.
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// OutboxRepository - интерфейс для Transactional Outbox Pattern.
//
// Гарантия: событие попадёт наружу тогда и только тогда, когда
// породившая его транзакция закоммитилась.
type OutboxRepository interface {
	// Save сохраняет событие в outbox таблицу.
	// Должно выполняться в той же транзакции, что и бизнес-операция!
	Save(ctx context.Context, event events.DomainEvent) error

	// FindUnpublished возвращает события, которые ещё не опубликованы.
	FindUnpublished(ctx context.Context, limit int) ([]OutboxEntry, error)

	// MarkPublished помечает событие как опубликованное.
	MarkPublished(ctx context.Context, eventID string) error

	// MarkFailed помечает событие как failed после неудачной публикации.
	MarkFailed(ctx context.Context, eventID string, reason string) error
}

// OutboxEntry - сериализованное событие из outbox-таблицы.
// Payload хранится как JSON, чтобы poller мог публиковать события,
// не зная их конкретных Go-типов.
type OutboxEntry struct {
	EventID   string
	EventType string
	Payload   []byte
}
