package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	domainerrors "github.com/mypark/parkwallet/internal/domain/errors"
)

func setupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(RequestIDKey, "test-request-123")
	return c, w
}

// ============================================
// Test Request ID Functions
// ============================================

func TestGetRequestID(t *testing.T) {
	t.Run("ReturnsRequestID", func(t *testing.T) {
		c, _ := setupTestContext()
		id := GetRequestID(c)
		assert.Equal(t, "test-request-123", id)
	})

	t.Run("ReturnsEmptyWhenNotSet", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		id := GetRequestID(c)
		assert.Empty(t, id)
	})
}

func TestSetRequestID(t *testing.T) {
	c, w := setupTestContext()
	SetRequestID(c, "new-id-456")

	assert.Equal(t, "new-id-456", GetRequestID(c))
	assert.Equal(t, "new-id-456", w.Header().Get(RequestIDKey))
}

// ============================================
// Test Success Responses
// ============================================

func TestSuccess(t *testing.T) {
	c, w := setupTestContext()

	data := map[string]string{"status": "ok", "message": "success"}
	Success(c, http.StatusOK, data)

	assert.Equal(t, http.StatusOK, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.True(t, response.Success)
	assert.NotNil(t, response.Data)
	assert.Equal(t, "test-request-123", response.RequestID)
	assert.False(t, response.Timestamp.IsZero())
}

func TestSuccessWithMeta(t *testing.T) {
	c, w := setupTestContext()

	data := []string{"item1", "item2"}
	meta := &APIMeta{
		Page:       1,
		PerPage:    20,
		Total:      100,
		TotalPages: 5,
	}

	SuccessWithMeta(c, http.StatusOK, data, meta)

	assert.Equal(t, http.StatusOK, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.True(t, response.Success)
	assert.NotNil(t, response.Meta)
	assert.Equal(t, 1, response.Meta.Page)
	assert.Equal(t, 100, response.Meta.Total)
}

// ============================================
// Test Error Responses
// ============================================

func TestError(t *testing.T) {
	c, w := setupTestContext()

	apiError := &APIError{
		Code:    ErrCodeValidation,
		Message: "Validation failed",
	}

	Error(c, http.StatusBadRequest, apiError)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.False(t, response.Success)
	assert.NotNil(t, response.Error)
	assert.Equal(t, ErrCodeValidation, response.Error.Code)
}

func TestValidationErrorResponse(t *testing.T) {
	c, w := setupTestContext()

	fields := []FieldError{
		{Field: "email", Message: "Invalid format", Code: "email"},
		{Field: "name", Message: "Required", Code: "required"},
	}

	ValidationErrorResponse(c, fields)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.False(t, response.Success)
	assert.Equal(t, ErrCodeValidation, response.Error.Code)
	assert.Len(t, response.Error.Fields, 2)
}

func TestNotFoundResponse(t *testing.T) {
	c, w := setupTestContext()

	NotFoundResponse(c, "User")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.False(t, response.Success)
	assert.Equal(t, ErrCodeNotFound, response.Error.Code)
	assert.Contains(t, response.Error.Message, "User")
}

func TestBadRequestResponse(t *testing.T) {
	c, w := setupTestContext()

	BadRequestResponse(c, "Invalid input")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.Equal(t, ErrCodeBadRequest, response.Error.Code)
}

func TestUnauthorizedResponse(t *testing.T) {
	c, w := setupTestContext()

	UnauthorizedResponse(c, "Token expired")

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.Equal(t, ErrCodeUnauthorized, response.Error.Code)
}

func TestForbiddenResponse(t *testing.T) {
	c, w := setupTestContext()

	ForbiddenResponse(c, "Access denied")

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.Equal(t, ErrCodeForbidden, response.Error.Code)
}

func TestConflictResponse(t *testing.T) {
	c, w := setupTestContext()

	ConflictResponse(c, "Resource already exists")

	assert.Equal(t, http.StatusConflict, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.Equal(t, ErrCodeConflict, response.Error.Code)
}

func TestTooManyRequestsResponse(t *testing.T) {
	c, w := setupTestContext()

	TooManyRequestsResponse(c, 60)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.Equal(t, ErrCodeTooManyRequests, response.Error.Code)
	assert.Equal(t, 60, response.Error.RetryAfter)
}

func TestInternalErrorResponse(t *testing.T) {
	c, w := setupTestContext()

	InternalErrorResponse(c, "Database error")

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response APIResponse
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.Equal(t, ErrCodeInternal, response.Error.Code)
}

// ============================================
// Test HandleDomainError
// ============================================

func TestHandleDomainError(t *testing.T) {
	t.Run("ValidationError", func(t *testing.T) {
		c, w := setupTestContext()

		err := domainerrors.ValidationError{
			Field:   "email",
			Message: "invalid format",
		}

		HandleDomainError(c, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response APIResponse
		json.Unmarshal(w.Body.Bytes(), &response)

		assert.Equal(t, ErrCodeValidation, response.Error.Code)
		assert.Len(t, response.Error.Fields, 1)
		assert.Equal(t, "email", response.Error.Fields[0].Field)
	})

	t.Run("ValidationErrors_MultipleFields", func(t *testing.T) {
		c, w := setupTestContext()

		var errs domainerrors.ValidationErrors
		errs.Add("email", "invalid format")
		errs.Add("phone", "required")

		HandleDomainError(c, errs)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response APIResponse
		json.Unmarshal(w.Body.Bytes(), &response)

		assert.Len(t, response.Error.Fields, 2)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		c, w := setupTestContext()

		HandleDomainError(c, domainerrors.ErrInvalidCredentials)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("NotAuthorized", func(t *testing.T) {
		c, w := setupTestContext()

		HandleDomainError(c, fmt.Errorf("complete session: %w", domainerrors.ErrNotAuthorized))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		c, w := setupTestContext()

		HandleDomainError(c, domainerrors.ErrInsufficientFunds)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response APIResponse
		json.Unmarshal(w.Body.Bytes(), &response)

		assert.Equal(t, ErrCodeInsufficientFunds, response.Error.Code)
	})

	t.Run("SamanAlreadyPaid", func(t *testing.T) {
		c, w := setupTestContext()

		HandleDomainError(c, domainerrors.ErrSamanAlreadyPaid)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response APIResponse
		json.Unmarshal(w.Body.Bytes(), &response)

		assert.Equal(t, ErrCodeAlreadyPaid, response.Error.Code)
	})

	t.Run("RetryableConflict", func(t *testing.T) {
		c, w := setupTestContext()

		err := domainerrors.NewTransientConflict("User", "wallet was modified concurrently")

		HandleDomainError(c, err)

		assert.Equal(t, http.StatusConflict, w.Code)

		var response APIResponse
		json.Unmarshal(w.Body.Bytes(), &response)

		assert.Equal(t, ErrCodeConcurrency, response.Error.Code)
		assert.Equal(t, true, response.Error.Details["retryable"])
	})

	t.Run("NonRetryableConflict", func(t *testing.T) {
		c, w := setupTestContext()

		err := domainerrors.NewConflict("User", "email is already registered")

		HandleDomainError(c, err)

		assert.Equal(t, http.StatusConflict, w.Code)

		var response APIResponse
		json.Unmarshal(w.Body.Bytes(), &response)

		assert.Equal(t, ErrCodeConflict, response.Error.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		c, w := setupTestContext()

		HandleDomainError(c, fmt.Errorf("pay saman: %w", domainerrors.ErrSamanNotFound))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ExternalService", func(t *testing.T) {
		c, w := setupTestContext()

		err := domainerrors.NewExternalServiceError("paypal", "gateway timeout", nil)

		HandleDomainError(c, err)

		assert.Equal(t, http.StatusBadGateway, w.Code)

		var response APIResponse
		json.Unmarshal(w.Body.Bytes(), &response)

		assert.Equal(t, ErrCodeUpstream, response.Error.Code)
	})

	t.Run("UnknownError", func(t *testing.T) {
		c, w := setupTestContext()

		HandleDomainError(c, errors.New("something broke"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var response APIResponse
		json.Unmarshal(w.Body.Bytes(), &response)

		assert.Equal(t, ErrCodeInternal, response.Error.Code)
		// Текст внутренней ошибки не должен утекать клиенту.
		assert.NotContains(t, response.Error.Message, "something broke")
	})
}

// ============================================
// Test Error Extractors
// ============================================

func TestExtractFieldErrors(t *testing.T) {
	t.Run("SingleError", func(t *testing.T) {
		valErr := domainerrors.ValidationError{Field: "email", Message: "invalid"}
		fields := extractFieldErrors(valErr)
		assert.Len(t, fields, 1)
		assert.Equal(t, "email", fields[0].Field)
	})

	t.Run("Wrapped", func(t *testing.T) {
		valErr := domainerrors.ValidationError{Field: "plate", Message: "too short"}
		fields := extractFieldErrors(fmt.Errorf("register vehicle: %w", valErr))
		assert.Len(t, fields, 1)
		assert.Equal(t, "plate", fields[0].Field)
	})

	t.Run("NotValidation", func(t *testing.T) {
		assert.Nil(t, extractFieldErrors(errors.New("boom")))
	})
}
