// Package ports - кэш для горячего enforcement-пути.
package ports

import (
	"context"
	"time"
)

// EnforcementStatus - кэшируемый ответ на вопрос «накрыт ли автомобиль
// действующей сессией?». Warden на улице спрашивает это чаще всего.
type EnforcementStatus struct {
	VehicleID string    `json:"vehicle_id"`
	Covered   bool      `json:"covered"`
	EndsAt    time.Time `json:"ends_at,omitempty"`
}

// EnforcementCache определяет контракт кэша enforcement-статусов.
//
// Кэш - только оптимизация чтения: промах или недоступный Redis ведут
// к обычному запросу в БД, а мутации сессий инвалидируют ключ.
type EnforcementCache interface {
	// Get возвращает статус или (nil, nil) при промахе.
	Get(ctx context.Context, plateKey string) (*EnforcementStatus, error)

	// Set кладёт статус с TTL.
	Set(ctx context.Context, plateKey string, status *EnforcementStatus, ttl time.Duration) error

	// Invalidate удаляет ключ после start/extend/terminate сессии.
	Invalidate(ctx context.Context, plateKey string) error
}
