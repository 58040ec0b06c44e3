// Package cache реализует ports.EnforcementCache поверх Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mypark/parkwallet/internal/application/ports"
)

// Compile-time check
var _ ports.EnforcementCache = (*RedisEnforcementCache)(nil)

// Config - настройки подключения к Redis.
type Config struct {
	Addr     string // host:port
	Password string
	DB       int
}

// NewClient создаёт Redis-клиент.
func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisEnforcementCache кэширует enforcement-статусы как JSON.
//
// Кэш - только оптимизация чтения: промах ведёт к обычному запросу в БД,
// а мутации сессий инвалидируют ключ.
type RedisEnforcementCache struct {
	client *redis.Client
}

// NewRedisEnforcementCache создаёт кэш поверх клиента.
func NewRedisEnforcementCache(client *redis.Client) *RedisEnforcementCache {
	return &RedisEnforcementCache{client: client}
}

func cacheKey(plateKey string) string {
	return "enforcement:" + plateKey
}

// Get возвращает статус или (nil, nil) при промахе.
func (c *RedisEnforcementCache) Get(ctx context.Context, plateKey string) (*ports.EnforcementStatus, error) {
	raw, err := c.client.Get(ctx, cacheKey(plateKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read enforcement cache: %w", err)
	}

	var status ports.EnforcementStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		// Битая запись равносильна промаху.
		return nil, nil
	}
	return &status, nil
}

// Set кладёт статус с TTL.
func (c *RedisEnforcementCache) Set(ctx context.Context, plateKey string, status *ports.EnforcementStatus, ttl time.Duration) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode enforcement status: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(plateKey), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write enforcement cache: %w", err)
	}
	return nil
}

// Invalidate удаляет ключ после start/extend/terminate сессии.
func (c *RedisEnforcementCache) Invalidate(ctx context.Context, plateKey string) error {
	if err := c.client.Del(ctx, cacheKey(plateKey)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate enforcement cache: %w", err)
	}
	return nil
}
