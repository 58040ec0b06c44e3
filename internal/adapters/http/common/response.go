// Package common содержит общие типы для HTTP слоя.
//
// Вынесен в отдельный пакет чтобы избежать циклических импортов
// между handlers и основным http пакетом.
package common

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/mypark/parkwallet/internal/domain/errors"
)

// ============================================
// Standard API Response Format
// ============================================

// APIResponse - стандартный формат ответа API.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *APIMeta    `json:"meta,omitempty"`
	RequestID string      `json:"request_id"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIMeta - мета-информация для пагинации.
type APIMeta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

// APIError - структура ошибки API.
type APIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Fields     []FieldError           `json:"fields,omitempty"`
	RetryAfter int                    `json:"retry_after,omitempty"`
}

// FieldError - ошибка конкретного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ============================================
// Error Codes
// ============================================

const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeTooManyRequests   = "TOO_MANY_REQUESTS"
	ErrCodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrCodeAlreadyPaid       = "ALREADY_PAID"
	ErrCodeSessionComplete   = "SESSION_NOT_ONGOING"
	ErrCodePaymentIncomplete = "PAYMENT_INCOMPLETE"
	ErrCodeUpstream          = "UPSTREAM_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeConcurrency       = "CONCURRENCY_ERROR"
)

// ============================================
// Request ID
// ============================================

const RequestIDKey = "X-Request-ID"

// GetRequestID возвращает Request ID из контекста.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		return id.(string)
	}
	return ""
}

// SetRequestID устанавливает Request ID в контекст.
func SetRequestID(c *gin.Context, id string) {
	c.Set(RequestIDKey, id)
	c.Header(RequestIDKey, id)
}

// ============================================
// Response Helpers
// ============================================

// Success отправляет успешный ответ.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success:   true,
		Data:      data,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// SuccessWithMeta отправляет успешный ответ с мета-информацией.
func SuccessWithMeta(c *gin.Context, statusCode int, data interface{}, meta *APIMeta) {
	c.JSON(statusCode, APIResponse{
		Success:   true,
		Data:      data,
		Meta:      meta,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// Error отправляет ответ с ошибкой.
func Error(c *gin.Context, statusCode int, apiError *APIError) {
	c.JSON(statusCode, APIResponse{
		Success:   false,
		Error:     apiError,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}

// ============================================
// Error Response Helpers
// ============================================

// ValidationErrorResponse создаёт ответ для ошибок валидации.
func ValidationErrorResponse(c *gin.Context, fields []FieldError) {
	Error(c, http.StatusBadRequest, &APIError{
		Code:    ErrCodeValidation,
		Message: "Request validation failed",
		Fields:  fields,
	})
}

// NotFoundResponse создаёт ответ для 404.
func NotFoundResponse(c *gin.Context, resource string) {
	Error(c, http.StatusNotFound, &APIError{
		Code:    ErrCodeNotFound,
		Message: resource + " not found",
		Details: map[string]interface{}{
			"resource": resource,
		},
	})
}

// BadRequestResponse создаёт ответ для некорректного запроса.
func BadRequestResponse(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
	})
}

// UnauthorizedResponse создаёт ответ для 401.
func UnauthorizedResponse(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	})
}

// ForbiddenResponse создаёт ответ для 403.
func ForbiddenResponse(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, &APIError{
		Code:    ErrCodeForbidden,
		Message: message,
	})
}

// ConflictResponse создаёт ответ для 409.
func ConflictResponse(c *gin.Context, message string) {
	Error(c, http.StatusConflict, &APIError{
		Code:    ErrCodeConflict,
		Message: message,
	})
}

// TooManyRequestsResponse создаёт ответ для rate limiting.
func TooManyRequestsResponse(c *gin.Context, retryAfter int) {
	Error(c, http.StatusTooManyRequests, &APIError{
		Code:       ErrCodeTooManyRequests,
		Message:    "Too many requests, please try again later",
		RetryAfter: retryAfter,
	})
}

// InternalErrorResponse создаёт ответ для внутренней ошибки.
func InternalErrorResponse(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, &APIError{
		Code:    ErrCodeInternal,
		Message: message,
	})
}

// ============================================
// Domain Error to HTTP Error Mapper
// ============================================

// HandleDomainError преобразует domain error в HTTP response.
//
// Порядок проверок важен: retryable-конфликт - тоже ConflictError,
// auth-ошибки - тоже sentinel'ы, поэтому специфичные случаи идут первыми.
func HandleDomainError(c *gin.Context, err error) {
	switch {
	// 1. Валидация входа: 400 c пофилдовыми ошибками.
	case domainerrors.IsValidation(err):
		if fields := extractFieldErrors(err); len(fields) > 0 {
			ValidationErrorResponse(c, fields)
			return
		}
		BadRequestResponse(c, err.Error())

	// 2. Аутентификация и авторизация.
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		UnauthorizedResponse(c, "Invalid email or password")
	case errors.Is(err, domainerrors.ErrNotAuthorized):
		ForbiddenResponse(c, "Not authorized for this operation")

	// 3. Нарушения бизнес-правил: 422, состояние корректно, но операция
	//    невозможна.
	case errors.Is(err, domainerrors.ErrInsufficientFunds):
		Error(c, http.StatusUnprocessableEntity, &APIError{
			Code:    ErrCodeInsufficientFunds,
			Message: "Insufficient wallet balance",
		})
	case errors.Is(err, domainerrors.ErrSamanAlreadyPaid):
		Error(c, http.StatusUnprocessableEntity, &APIError{
			Code:    ErrCodeAlreadyPaid,
			Message: "Saman has already been paid",
		})
	case errors.Is(err, domainerrors.ErrSessionNotOngoing):
		Error(c, http.StatusUnprocessableEntity, &APIError{
			Code:    ErrCodeSessionComplete,
			Message: "Parking session is not ongoing",
		})
	case errors.Is(err, domainerrors.ErrPaymentIncomplete):
		Error(c, http.StatusUnprocessableEntity, &APIError{
			Code:    ErrCodePaymentIncomplete,
			Message: "Payment was not completed at the gateway",
		})

	// 4. Конкурентные конфликты: retryable первыми.
	case domainerrors.IsRetryableConflict(err):
		Error(c, http.StatusConflict, &APIError{
			Code:    ErrCodeConcurrency,
			Message: "Resource was modified by another request, please retry",
			Details: map[string]interface{}{
				"retryable": true,
			},
		})
	case domainerrors.IsConflict(err):
		ConflictResponse(c, err.Error())

	// 5. Not found.
	case domainerrors.IsNotFound(err):
		NotFoundResponse(c, "Resource")

	// 6. Внешние сервисы: 502, клиент может повторить позже.
	case errors.Is(err, domainerrors.ErrAmountMissing):
		Error(c, http.StatusBadGateway, &APIError{
			Code:    ErrCodeUpstream,
			Message: "Gateway confirmed the payment without an amount",
		})
	case domainerrors.IsExternal(err):
		Error(c, http.StatusBadGateway, &APIError{
			Code:    ErrCodeUpstream,
			Message: "Upstream service is unavailable, please try again",
		})

	// 7. Default: Internal Server Error. Текст ошибки наружу не уходит.
	default:
		InternalErrorResponse(c, "An unexpected error occurred")
	}
}

// extractFieldErrors извлекает пофилдовые ошибки из цепочки ошибок.
// Поддерживает как одиночный ValidationError, так и пачку ValidationErrors.
func extractFieldErrors(err error) []FieldError {
	var valErrs domainerrors.ValidationErrors
	if errors.As(err, &valErrs) {
		fields := make([]FieldError, 0, len(valErrs))
		for _, ve := range valErrs {
			fields = append(fields, FieldError{Field: ve.Field, Message: ve.Message, Code: "invalid"})
		}
		return fields
	}

	var valErr domainerrors.ValidationError
	if errors.As(err, &valErr) {
		return []FieldError{{Field: valErr.Field, Message: valErr.Message, Code: "invalid"}}
	}
	return nil
}
