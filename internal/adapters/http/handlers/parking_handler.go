// Package handlers - Parking HTTP handlers: жизненный цикл сессий.
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

// StartSessionUseCase - интерфейс для старта парковочной сессии.
type StartSessionUseCase interface {
	Execute(ctx context.Context, cmd dtos.StartSessionCommand) (*dtos.SessionStartedDTO, error)
}

// ExtendSessionUseCase - интерфейс для продления сессии.
type ExtendSessionUseCase interface {
	Execute(ctx context.Context, cmd dtos.ExtendSessionCommand) (*dtos.SessionStartedDTO, error)
}

// TerminateSessionUseCase - интерфейс для досрочного завершения.
type TerminateSessionUseCase interface {
	Execute(ctx context.Context, cmd dtos.TerminateSessionCommand) (*dtos.SessionDTO, error)
}

// GetSessionUseCase - интерфейс для получения сессии.
type GetSessionUseCase interface {
	Execute(ctx context.Context, query dtos.GetSessionQuery) (*dtos.SessionDTO, error)
}

// ListSessionsUseCase - интерфейс для списка сессий пользователя.
type ListSessionsUseCase interface {
	Execute(ctx context.Context, query dtos.ListSessionsQuery) (*dtos.SessionListDTO, error)
}

// ============================================
// Parking Handler
// ============================================

// ParkingHandler обрабатывает HTTP запросы для парковочных сессий.
//
// Старт и продление списывают деньги с кошелька в той же
// транзакции, что и запись сессии.
type ParkingHandler struct {
	startSession     StartSessionUseCase
	extendSession    ExtendSessionUseCase
	terminateSession TerminateSessionUseCase
	getSession       GetSessionUseCase
	listSessions     ListSessionsUseCase
}

// NewParkingHandler создаёт новый ParkingHandler.
func NewParkingHandler(
	startSession StartSessionUseCase,
	extendSession ExtendSessionUseCase,
	terminateSession TerminateSessionUseCase,
	getSession GetSessionUseCase,
	listSessions ListSessionsUseCase,
) *ParkingHandler {
	return &ParkingHandler{
		startSession:     startSession,
		extendSession:    extendSession,
		terminateSession: terminateSession,
		getSession:       getSession,
		listSessions:     listSessions,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// StartSessionRequest - запрос на старт сессии.
//
// @Description Start parking session request body
type StartSessionRequest struct {
	VehicleID       string `json:"vehicle_id" binding:"required,uuid"`
	AuthorityID     string `json:"authority_id" binding:"required,uuid"`
	StartingTime    string `json:"starting_time" binding:"omitempty"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=1440"`
	Price           string `json:"price" binding:"required,money_amount"`
}

// ExtendSessionRequest - запрос на продление сессии.
//
// @Description Extend parking session request body
type ExtendSessionRequest struct {
	AdditionalMinutes int    `json:"additional_minutes" binding:"required,min=1,max=1440"`
	Price             string `json:"price" binding:"required,money_amount"`
}

// SessionIDParam - параметр ID сессии из URL.
type SessionIDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ============================================
// HTTP Handlers
// ============================================

// StartSession стартует парковочную сессию.
//
// @Summary Start a parking session
// @Description Start a session and debit the wallet in one transaction
// @Tags Parking
// @Accept json
// @Produce json
// @Param request body StartSessionRequest true "Session data"
// @Success 201 {object} common.APIResponse{data=dtos.SessionStartedDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Router /api/v1/sessions [post]
func (h *ParkingHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.StartSessionCommand{
		UserID:          middleware.GetAuthUserID(c).String(),
		VehicleID:       req.VehicleID,
		AuthorityID:     req.AuthorityID,
		StartingTime:    req.StartingTime,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
	}

	result, err := h.startSession.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, result)
}

// ExtendSession продлевает ongoing-сессию.
//
// @Summary Extend an ongoing session
// @Tags Parking
// @Accept json
// @Produce json
// @Param id path string true "Session ID" format(uuid)
// @Param request body ExtendSessionRequest true "Extension data"
// @Success 200 {object} common.APIResponse{data=dtos.SessionStartedDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Router /api/v1/sessions/{id}/extend [post]
func (h *ParkingHandler) ExtendSession(c *gin.Context) {
	var params SessionIDParam
	if !BindURI(c, &params) {
		return
	}

	var req ExtendSessionRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.ExtendSessionCommand{
		UserID:            middleware.GetAuthUserID(c).String(),
		SessionID:         params.ID,
		AdditionalMinutes: req.AdditionalMinutes,
		Price:             req.Price,
	}

	result, err := h.extendSession.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// TerminateSession завершает сессию досрочно.
//
// Повторное завершение - no-op: возвращается текущее состояние.
//
// @Summary Terminate a session early
// @Tags Parking
// @Produce json
// @Param id path string true "Session ID" format(uuid)
// @Success 200 {object} common.APIResponse{data=dtos.SessionDTO}
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/sessions/{id}/terminate [post]
func (h *ParkingHandler) TerminateSession(c *gin.Context) {
	var params SessionIDParam
	if !BindURI(c, &params) {
		return
	}

	cmd := dtos.TerminateSessionCommand{
		UserID:    middleware.GetAuthUserID(c).String(),
		SessionID: params.ID,
	}

	result, err := h.terminateSession.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// GetSession возвращает сессию по ID.
//
// @Summary Get session by ID
// @Tags Parking
// @Produce json
// @Param id path string true "Session ID" format(uuid)
// @Success 200 {object} common.APIResponse{data=dtos.SessionDTO}
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/sessions/{id} [get]
func (h *ParkingHandler) GetSession(c *gin.Context) {
	var params SessionIDParam
	if !BindURI(c, &params) {
		return
	}

	query := dtos.GetSessionQuery{SessionID: params.ID}

	result, err := h.getSession.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListSessions возвращает сессии текущего пользователя.
//
// @Summary List my sessions
// @Tags Parking
// @Produce json
// @Param status query string false "Filter by status (ongoing|complete)"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20) maximum(100)
// @Success 200 {object} common.APIResponse{data=dtos.SessionListDTO}
// @Router /api/v1/sessions [get]
func (h *ParkingHandler) ListSessions(c *gin.Context) {
	pagination := ParsePagination(c)

	query := dtos.ListSessionsQuery{
		UserID: middleware.GetAuthUserID(c).String(),
		Status: c.Query("status"),
		Offset: pagination.Offset(),
		Limit:  pagination.PerPage,
	}

	result, err := h.listSessions.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RegisterRoutes регистрирует маршруты для ParkingHandler.
//
// Routes:
// - POST /sessions               - Start session
// - GET  /sessions               - List my sessions
// - GET  /sessions/:id           - Get session by ID
// - POST /sessions/:id/extend    - Extend session
// - POST /sessions/:id/terminate - Terminate session early
func (h *ParkingHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.POST("", h.StartSession)
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/extend", h.ExtendSession)
		sessions.POST("/:id/terminate", h.TerminateSession)
	}
}
