// Package handlers - User HTTP handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mypark/parkwallet/internal/adapters/http/common"
	"github.com/mypark/parkwallet/internal/adapters/http/middleware"
	"github.com/mypark/parkwallet/internal/application/dtos"
)

// ============================================
// Use Case Interfaces
// ============================================

// GetUserUseCase - интерфейс для получения пользователя (query).
type GetUserUseCase interface {
	Execute(ctx context.Context, query dtos.GetUserQuery) (*dtos.UserDTO, error)
}

// ListUsersUseCase - интерфейс для получения списка пользователей.
type ListUsersUseCase interface {
	Execute(ctx context.Context, query dtos.ListUsersQuery) (*dtos.UserListDTO, error)
}

// UpdateProfileUseCase - интерфейс для обновления профиля.
type UpdateProfileUseCase interface {
	Execute(ctx context.Context, cmd dtos.UpdateProfileCommand) (*dtos.UserDTO, error)
}

// AssignRoleUseCase - интерфейс для назначения роли (admin-only).
type AssignRoleUseCase interface {
	Execute(ctx context.Context, cmd dtos.AssignRoleCommand) (*dtos.UserDTO, error)
}

// SetDefaultVehicleUseCase - интерфейс для выбора машины по умолчанию.
type SetDefaultVehicleUseCase interface {
	Execute(ctx context.Context, cmd dtos.SetDefaultVehicleCommand) (*dtos.UserDTO, error)
}

// ============================================
// User Handler
// ============================================

// UserHandler обрабатывает HTTP запросы для пользователей.
//
// Pattern: Adapter (Hexagonal Architecture)
// - Преобразует HTTP запросы в Use Case вызовы
// - Преобразует результаты в HTTP ответы
type UserHandler struct {
	getUser           GetUserUseCase
	listUsers         ListUsersUseCase
	updateProfile     UpdateProfileUseCase
	assignRole        AssignRoleUseCase
	setDefaultVehicle SetDefaultVehicleUseCase
}

// NewUserHandler создаёт новый UserHandler.
func NewUserHandler(
	getUser GetUserUseCase,
	listUsers ListUsersUseCase,
	updateProfile UpdateProfileUseCase,
	assignRole AssignRoleUseCase,
	setDefaultVehicle SetDefaultVehicleUseCase,
) *UserHandler {
	return &UserHandler{
		getUser:           getUser,
		listUsers:         listUsers,
		updateProfile:     updateProfile,
		assignRole:        assignRole,
		setDefaultVehicle: setDefaultVehicle,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// UpdateProfileRequest - запрос на обновление профиля.
//
// @Description Update profile request body
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Phone string `json:"phone" binding:"required,e164"`
}

// AssignRoleRequest - запрос на смену роли пользователя.
//
// @Description Assign role request body
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,user_role"`
}

// SetDefaultVehicleRequest - запрос на выбор машины по умолчанию.
//
// @Description Set default vehicle request body
type SetDefaultVehicleRequest struct {
	VehicleID string `json:"vehicle_id" binding:"required,uuid"`
}

// UserIDParam - параметр ID пользователя из URL.
type UserIDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ============================================
// HTTP Handlers
// ============================================

// GetMe возвращает профиль текущего пользователя.
//
// @Summary Get current user profile
// @Tags Users
// @Produce json
// @Success 200 {object} common.APIResponse{data=dtos.UserDTO}
// @Failure 401 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	query := dtos.GetUserQuery{UserID: middleware.GetAuthUserID(c).String()}

	result, err := h.getUser.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// UpdateMe обновляет профиль текущего пользователя.
//
// @Summary Update current user profile
// @Tags Users
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile data"
// @Success 200 {object} common.APIResponse{data=dtos.UserDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Router /api/v1/users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.UpdateProfileCommand{
		UserID: middleware.GetAuthUserID(c).String(),
		Name:   req.Name,
		Phone:  req.Phone,
	}

	result, err := h.updateProfile.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// SetDefaultVehicle выбирает машину по умолчанию для текущего пользователя.
//
// @Summary Set default vehicle
// @Tags Users
// @Accept json
// @Produce json
// @Param request body SetDefaultVehicleRequest true "Vehicle choice"
// @Success 200 {object} common.APIResponse{data=dtos.UserDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/users/me/default-vehicle [put]
func (h *UserHandler) SetDefaultVehicle(c *gin.Context) {
	var req SetDefaultVehicleRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.SetDefaultVehicleCommand{
		UserID:    middleware.GetAuthUserID(c).String(),
		VehicleID: req.VehicleID,
	}

	result, err := h.setDefaultVehicle.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// GetUser возвращает пользователя по ID (admin-only).
//
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Success 200 {object} common.APIResponse{data=dtos.UserDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	var params UserIDParam
	if !BindURI(c, &params) {
		return
	}

	query := dtos.GetUserQuery{UserID: params.ID}

	result, err := h.getUser.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListUsers возвращает список пользователей с пагинацией (admin-only).
//
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20) maximum(100)
// @Success 200 {object} common.APIResponse{data=dtos.UserListDTO}
// @Router /api/v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	pagination := ParsePagination(c)

	query := dtos.ListUsersQuery{
		Offset: pagination.Offset(),
		Limit:  pagination.PerPage,
	}

	result, err := h.listUsers.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// AssignRole назначает роль пользователю (admin-only).
//
// @Summary Assign a role to a user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param request body AssignRoleRequest true "Role"
// @Success 200 {object} common.APIResponse{data=dtos.UserDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/users/{id}/role [post]
func (h *UserHandler) AssignRole(c *gin.Context) {
	var params UserIDParam
	if !BindURI(c, &params) {
		return
	}

	var req AssignRoleRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.AssignRoleCommand{
		ActorID: middleware.GetAuthUserID(c).String(),
		UserID:  params.ID,
		Role:    req.Role,
	}

	result, err := h.assignRole.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RegisterRoutes регистрирует маршруты для UserHandler.
//
// Routes:
// - GET  /users/me                  - Current user profile
// - PUT  /users/me                  - Update profile
// - PUT  /users/me/default-vehicle  - Choose default vehicle
// - GET  /users                     - List users (admin)
// - GET  /users/:id                 - Get user by ID (admin)
// - POST /users/:id/role            - Assign role (admin)
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/me", h.GetMe)
		users.PUT("/me", h.UpdateMe)
		users.PUT("/me/default-vehicle", h.SetDefaultVehicle)
	}

	admin := router.Group("/users", middleware.RequireRole("admin"))
	{
		admin.GET("", h.ListUsers)
		admin.GET("/:id", h.GetUser)
		admin.POST("/:id/role", h.AssignRole)
	}
}
