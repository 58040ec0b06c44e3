// Package handlers - Auth HTTP handlers: регистрация и вход.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mypark/parkwallet/internal/adapters/http/common"
	"github.com/mypark/parkwallet/internal/application/dtos"
)

// ============================================
// Use Case Interfaces
// ============================================

// RegisterUserUseCase - интерфейс для регистрации пользователя.
type RegisterUserUseCase interface {
	Execute(ctx context.Context, cmd dtos.RegisterUserCommand) (*dtos.UserDTO, error)
}

// AuthenticateUseCase - интерфейс для входа по email/паролю.
type AuthenticateUseCase interface {
	Execute(ctx context.Context, cmd dtos.AuthenticateCommand) (*dtos.AuthResultDTO, error)
}

// ============================================
// Auth Handler
// ============================================

// AuthHandler обрабатывает публичные auth-запросы.
//
// Оба маршрута не требуют bearer-токена: это единственные
// endpoint'ы, через которые токен можно получить.
type AuthHandler struct {
	registerUser RegisterUserUseCase
	authenticate AuthenticateUseCase
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(registerUser RegisterUserUseCase, authenticate AuthenticateUseCase) *AuthHandler {
	return &AuthHandler{
		registerUser: registerUser,
		authenticate: authenticate,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// RegisterRequest - запрос на регистрацию.
//
// @Description Register request body
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone" binding:"required,e164"`
}

// LoginRequest - запрос на вход.
//
// @Description Login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ============================================
// HTTP Handlers
// ============================================

// Register регистрирует нового пользователя.
//
// @Summary Register a new user
// @Description Create an account with a zero wallet balance
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} common.APIResponse{data=dtos.UserDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Failure 500 {object} common.APIResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.RegisterUserCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}

	result, err := h.registerUser.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, result)
}

// Login аутентифицирует пользователя и выдаёт JWT.
//
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} common.APIResponse{data=dtos.AuthResultDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Failure 500 {object} common.APIResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.AuthenticateCommand{
		Email:    req.Email,
		Password: req.Password,
	}

	result, err := h.authenticate.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RegisterRoutes регистрирует маршруты для AuthHandler.
//
// Routes:
// - POST /auth/register - Register user
// - POST /auth/login    - Log in
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}
