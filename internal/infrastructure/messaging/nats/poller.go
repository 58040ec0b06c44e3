// Package nats - outbox poller.
package nats

import (
	"context"
	"log/slog"
	"time"

	"github.com/mypark/parkwallet/internal/application/ports"
)

// RawPublisher - то, что poller'у нужно от транспорта.
type RawPublisher interface {
	PublishRaw(ctx context.Context, eventType string, payload []byte) error
}

// OutboxPoller перекладывает события из outbox-таблицы в NATS.
//
// Каждый проход выполняется в транзакции: FindUnpublished берёт строки
// с FOR UPDATE SKIP LOCKED, поэтому несколько инстансов poller'а могут
// работать параллельно, не публикуя одно событие дважды. Сбой публикации
// помечает событие FAILED, коммит прохода при этом не откатывается.
type OutboxPoller struct {
	outbox    ports.OutboxRepository
	uow       ports.UnitOfWork
	publisher RawPublisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller создаёт poller.
func NewOutboxPoller(
	outbox ports.OutboxRepository,
	uow ports.UnitOfWork,
	publisher RawPublisher,
	logger *slog.Logger,
	interval time.Duration,
	batchSize int,
) *OutboxPoller {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxPoller{
		outbox:    outbox,
		uow:       uow,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run крутит цикл публикации до отмены ctx.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if published, err := p.Poll(ctx); err != nil {
				p.logger.ErrorContext(ctx, "outbox poll failed", slog.String("error", err.Error()))
			} else if published > 0 {
				p.logger.DebugContext(ctx, "outbox events published", slog.Int("count", published))
			}
		}
	}
}

// Poll публикует один batch. Возвращает число успешно опубликованных.
func (p *OutboxPoller) Poll(ctx context.Context) (int, error) {
	published := 0
	err := p.uow.Execute(ctx, func(txCtx context.Context) error {
		entries, err := p.outbox.FindUnpublished(txCtx, p.batchSize)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if err := p.publisher.PublishRaw(txCtx, entry.EventType, entry.Payload); err != nil {
				p.logger.WarnContext(txCtx, "event publish failed",
					slog.String("event_id", entry.EventID),
					slog.String("event_type", entry.EventType),
					slog.String("error", err.Error()),
				)
				if err := p.outbox.MarkFailed(txCtx, entry.EventID, err.Error()); err != nil {
					return err
				}
				continue
			}
			if err := p.outbox.MarkPublished(txCtx, entry.EventID); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	return published, err
}
