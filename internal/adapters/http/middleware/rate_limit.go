// Package middleware - rate limiting.
//
// Fixed-window счётчик в памяти процесса. Каждому ключу (IP или user)
// отводится лимит запросов на окно; исчерпание - 429 с Retry-After.
// При нескольких репликах API лимит действует per-replica.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig - лимит запросов на временное окно.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// KeyFunc выбирает ключ лимитирования; по умолчанию client IP.
	KeyFunc func(*gin.Context) string
	// OnLimitReached вызывается перед 429 (хук для метрик).
	OnLimitReached func(*gin.Context)
}

// DefaultRateLimitConfig - общий лимит API: 100 запросов в минуту с IP.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Limit:  100,
		Window: time.Minute,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

type rateLimiter struct {
	mu      sync.RWMutex
	windows map[string]*window
	config  *RateLimitConfig
}

// window - счётчик одного ключа в текущем окне.
type window struct {
	remaining int
	openedAt  time.Time
}

func newRateLimiter(config *RateLimitConfig) *rateLimiter {
	rl := &rateLimiter{
		windows: make(map[string]*window),
		config:  config,
	}
	go rl.evictStale()
	return rl
}

// allow списывает один запрос и возвращает остаток и время до сброса.
func (rl *rateLimiter) allow(key string) (bool, int, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, exists := rl.windows[key]

	if !exists || now.Sub(w.openedAt) >= rl.config.Window {
		rl.windows[key] = &window{
			remaining: rl.config.Limit - 1,
			openedAt:  now,
		}
		return true, rl.config.Limit - 1, rl.config.Window
	}

	resetIn := rl.config.Window - now.Sub(w.openedAt)
	if w.remaining <= 0 {
		return false, 0, resetIn
	}

	w.remaining--
	return true, w.remaining, resetIn
}

// evictStale выбрасывает ключи, не появлявшиеся два окна подряд.
func (rl *rateLimiter) evictStale() {
	ticker := time.NewTicker(rl.config.Window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, w := range rl.windows {
			if now.Sub(w.openedAt) > rl.config.Window*2 {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit ограничивает частоту запросов.
//
// Заголовки ответа: X-RateLimit-Limit / -Remaining / -Reset, плюс
// Retry-After при 429.
func RateLimit(config *RateLimitConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	limiter := newRateLimiter(config)

	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		allowed, remaining, resetIn := limiter.allow(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetIn).Unix(), 10))

		if !allowed {
			retrySeconds := int(resetIn.Seconds())
			if retrySeconds < 1 {
				retrySeconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(retrySeconds))

			if config.OnLimitReached != nil {
				config.OnLimitReached(c)
			}

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":        "TOO_MANY_REQUESTS",
					"message":     "Rate limit exceeded, please try again later",
					"retry_after": retrySeconds,
				},
				"request_id": GetRequestID(c),
				"timestamp":  time.Now().UTC(),
			})
			return
		}

		c.Next()
	}
}

// AuthRateLimit - жёсткий лимит на login/register: защита от перебора
// паролей. Ключ IP+path, чтобы login и register не делили окно.
func AuthRateLimit() gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		Limit:  10,
		Window: time.Minute,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP() + ":" + c.Request.URL.Path
		},
	})
}

// TransactionRateLimit - лимит на денежные операции кошелька.
// Авторизованные лимитируются по user ID: NAT и офисные сети не
// должны делить окно.
func TransactionRateLimit() gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		Limit:  30,
		Window: time.Minute,
		KeyFunc: func(c *gin.Context) string {
			userID := GetAuthUserID(c)
			if userID.String() != "00000000-0000-0000-0000-000000000000" {
				return "user:" + userID.String()
			}
			return "ip:" + c.ClientIP()
		},
	})
}
