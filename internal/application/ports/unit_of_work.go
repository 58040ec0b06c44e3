// Package ports - UnitOfWork паттерн для управления транзакциями.
//
// Pattern: Unit of Work
// - Обеспечивает атомарность операций
// - Один UnitOfWork = одна БД-транзакция
// - Автоматический rollback при ошибке
package ports

import "context"

// UnitOfWork определяет контракт для управления транзакциями.
//
// Каждая мультисущностная операция платформы (capture top-up, списание
// за парковку, оплата saman) выполняется целиком внутри одного Execute:
// кошелёк, журнал, статус сессии/штрафа и доход authority меняются
// атомарно, частичных состояний снаружи не видно.
//
// Пример использования:
//
//	err := uow.Execute(ctx, func(txCtx context.Context) error {
//	    user, _ := userRepo.FindByID(txCtx, userID)
//	    if err := user.Debit(amount); err != nil {
//	        return err // автоматический rollback
//	    }
//	    return userRepo.Save(txCtx, user)
//	})
type UnitOfWork interface {
	// Execute выполняет функцию внутри транзакции.
	//
	// Поведение:
	// - Начинает транзакцию
	// - Выполняет fn
	// - Если fn возвращает error: ROLLBACK
	// - Если fn возвращает nil: COMMIT
	//
	// Переданный в fn context содержит транзакцию - все repository-вызовы
	// внутри fn обязаны использовать именно его.
	Execute(ctx context.Context, fn func(context.Context) error) error

	// ExecuteWithResult аналогичен Execute, но возвращает результат.
	// Полезно когда нужно вернуть созданную entity.
	ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error)

	// ExecuteWithRetry повторяет Execute при retryable-конфликтах
	// (serialization failure, проигранный optimistic-locking CAS).
	// Каждая попытка - новая транзакция поверх свежезагруженного
	// состояния. После maxAttempts неудач возвращает последний конфликт.
	ExecuteWithRetry(ctx context.Context, maxAttempts int, fn func(context.Context) error) error
}
