// Package middleware - HTTP middleware: сквозные заботы вокруг handlers.
//
// Цепочка для этого API: recovery -> request id -> логирование -> CORS ->
// rate limit -> метрики -> JWT. Каждый middleware решает ровно одну
// задачу; порядок закреплён в router.go.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mypark/parkwallet/internal/pkg/logger"
)

const (
	// RequestIDHeader - заголовок с ID запроса.
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey - ключ Request ID в gin-контексте.
	RequestIDContextKey = "request_id"
)

// RequestID присваивает каждому запросу уникальный ID.
//
// Клиентский X-Request-ID уважается (мобильное приложение шлёт свой),
// иначе генерируется UUID. ID уходит в три места: gin-контекст для
// handlers, request context для slog-записей нижних слоёв, и response
// header для клиента.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDContextKey, requestID)
		c.Request = c.Request.WithContext(
			logger.WithRequestID(c.Request.Context(), requestID),
		)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID извлекает Request ID из gin-контекста.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDContextKey); exists {
		if strID, ok := id.(string); ok {
			return strID
		}
	}
	return ""
}
