// Package middleware - Logging middleware: структурированный access-лог.
package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LoggingConfig - конфигурация access-лога.
type LoggingConfig struct {
	Logger          *slog.Logger
	SkipPaths       []string // Пути без логирования (health, metrics)
	RedactPaths     []string // Пути, тела которых не пишем (пароли в /auth)
	LogRequestBody  bool     // Логировать тело запроса
	LogResponseBody bool     // Логировать тело ответа
	MaxBodySize     int      // Предел размера тела в логе
}

// DefaultLoggingConfig - конфигурация по умолчанию.
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Logger:          slog.Default(),
		SkipPaths:       []string{"/health", "/ready", "/metrics"},
		RedactPaths:     []string{"/api/v1/login", "/api/v1/register"},
		LogRequestBody:  false,
		LogResponseBody: false,
		MaxBodySize:     1024,
	}
}

// Logging пишет одну структурированную запись на каждый HTTP запрос.
//
// В записи: метод, путь, статус, длительность, request ID, user ID
// (если запрос авторизован), IP клиента и размер ответа. Уровень
// зависит от статуса: 5xx - error, 4xx - warn, остальное - info.
func Logging(config *LoggingConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultLoggingConfig()
	}

	skipMap := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipMap[path] = true
	}
	redactMap := make(map[string]bool, len(config.RedactPaths))
	for _, path := range config.RedactPaths {
		redactMap[path] = true
	}

	return func(c *gin.Context) {
		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		redacted := redactMap[c.Request.URL.Path]

		// Тело запроса вычитываем заранее и возвращаем обратно в Body.
		var requestBody string
		if config.LogRequestBody && !redacted {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			if len(bodyBytes) > 0 {
				requestBody = truncateBody(string(bodyBytes), config.MaxBodySize)
			}
		}

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		if config.LogResponseBody && !redacted {
			c.Writer = blw
		}

		c.Next()

		duration := time.Since(start)

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("query", c.Request.URL.RawQuery),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", duration),
			slog.String("request_id", GetRequestID(c)),
			slog.String("client_ip", c.ClientIP()),
			slog.Int("response_size", c.Writer.Size()),
		}

		if userID := GetAuthUserID(c); userID != uuid.Nil {
			attrs = append(attrs, slog.String("user_id", userID.String()))
		}

		if requestBody != "" {
			attrs = append(attrs, slog.String("request_body", requestBody))
		}
		if config.LogResponseBody && !redacted && blw.body.Len() > 0 {
			attrs = append(attrs, slog.String("response_body",
				truncateBody(blw.body.String(), config.MaxBodySize)))
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		} else if c.Writer.Status() >= 400 {
			level = slog.LevelWarn
		}

		config.Logger.LogAttrs(c.Request.Context(), level, "http request", attrs...)
	}
}

// bodyLogWriter дублирует ответ в буфер для лога.
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// truncateBody обрезает тело до предела конфигурации.
func truncateBody(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...[truncated]"
}
