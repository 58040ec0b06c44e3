// Package ports - Notifier для исходящих уведомлений (SMS, email).
package ports

import "context"

// Notification - одно исходящее сообщение пользователю.
type Notification struct {
	Phone   string // E.164; пустая строка = SMS не отправляется
	Email   string // Пустая строка = email не отправляется
	Subject string
	Body    string
}

// Notifier определяет контракт для отправки уведомлений.
//
// Уведомления - best effort: отказ SMS-провайдера не должен откатывать
// выписку saman или завершение сессии. Use cases вызывают Notify вне
// БД-транзакции, а реализация логирует ошибки вместо их проброса.
type Notifier interface {
	// Notify отправляет сообщение по всем заполненным каналам.
	Notify(ctx context.Context, n Notification)
}
