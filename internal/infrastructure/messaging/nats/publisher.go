// Package nats реализует ports.EventPublisher поверх NATS.
//
// Доставка at-least-once: события идут через transactional outbox, и
// после сбоя подтверждения одно и то же событие может быть опубликовано
// повторно. Consumers обязаны быть идемпотентными (EventID в payload).
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/domain/events"
)

// Compile-time check
var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher публикует события в NATS.
// Subject: <prefix>.<event_type>, например "parkwallet.saman.paid".
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

// Connect открывает соединение с NATS и создаёт Publisher.
func Connect(url, prefix string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return NewPublisher(conn, prefix), nil
}

// NewPublisher оборачивает существующее соединение.
func NewPublisher(conn *nats.Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = "parkwallet"
	}
	return &Publisher{conn: conn, prefix: prefix}
}

// Publish публикует одно событие.
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
	}
	return p.PublishRaw(ctx, event.EventType(), payload)
}

// PublishBatch публикует несколько событий за один вызов.
func (p *Publisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// PublishRaw публикует уже сериализованный payload.
// Используется outbox-poller'ом: ему не нужны конкретные Go-типы событий.
func (p *Publisher) PublishRaw(ctx context.Context, eventType string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := p.prefix + "." + eventType
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close дожидается отправки буфера и закрывает соединение.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
