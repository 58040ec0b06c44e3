// Package handlers - LocalAuthority HTTP handlers: CRUD и отчёты по доходам.
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

// CreateAuthorityUseCase - интерфейс для регистрации authority.
type CreateAuthorityUseCase interface {
	Execute(ctx context.Context, cmd dtos.CreateAuthorityCommand) (*dtos.AuthorityDTO, error)
}

// UpdateAuthorityUseCase - интерфейс для обновления реквизитов.
type UpdateAuthorityUseCase interface {
	Execute(ctx context.Context, cmd dtos.UpdateAuthorityCommand) (*dtos.AuthorityDTO, error)
}

// ResetIncomeUseCase - интерфейс для payout-checkpoint.
type ResetIncomeUseCase interface {
	Execute(ctx context.Context, cmd dtos.ResetIncomeCommand) (*dtos.AuthorityDTO, error)
}

// DeleteAuthorityUseCase - интерфейс для удаления authority.
type DeleteAuthorityUseCase interface {
	Execute(ctx context.Context, cmd dtos.DeleteAuthorityCommand) error
}

// GetAuthorityUseCase - интерфейс для получения authority.
type GetAuthorityUseCase interface {
	Execute(ctx context.Context, query dtos.GetAuthorityQuery) (*dtos.AuthorityDTO, error)
}

// ListAuthoritiesUseCase - интерфейс для списка authorities.
type ListAuthoritiesUseCase interface {
	Execute(ctx context.Context, query dtos.ListAuthoritiesQuery) (*dtos.AuthorityListDTO, error)
}

// DailyIncomeUseCase - интерфейс для отчёта по доходу за сутки.
type DailyIncomeUseCase interface {
	Execute(ctx context.Context, query dtos.DailyIncomeQuery) (*dtos.DailyIncomeDTO, error)
}

// IncomeReportUseCase - интерфейс платформенного отчёта по кредитам.
type IncomeReportUseCase interface {
	Execute(ctx context.Context, query dtos.IncomeReportQuery) (*dtos.IncomeReportDTO, error)
}

// ============================================
// Authority Handler
// ============================================

// AuthorityHandler обрабатывает HTTP запросы для local authorities.
//
// Чтение открыто всем авторизованным (список нужен для старта
// сессии), мутации - только админам.
type AuthorityHandler struct {
	createAuthority CreateAuthorityUseCase
	updateAuthority UpdateAuthorityUseCase
	resetIncome     ResetIncomeUseCase
	deleteAuthority DeleteAuthorityUseCase
	getAuthority    GetAuthorityUseCase
	listAuthorities ListAuthoritiesUseCase
	dailyIncome     DailyIncomeUseCase
	incomeReport    IncomeReportUseCase
}

// NewAuthorityHandler создаёт новый AuthorityHandler.
func NewAuthorityHandler(
	createAuthority CreateAuthorityUseCase,
	updateAuthority UpdateAuthorityUseCase,
	resetIncome ResetIncomeUseCase,
	deleteAuthority DeleteAuthorityUseCase,
	getAuthority GetAuthorityUseCase,
	listAuthorities ListAuthoritiesUseCase,
	dailyIncome DailyIncomeUseCase,
	incomeReport IncomeReportUseCase,
) *AuthorityHandler {
	return &AuthorityHandler{
		createAuthority: createAuthority,
		updateAuthority: updateAuthority,
		resetIncome:     resetIncome,
		deleteAuthority: deleteAuthority,
		getAuthority:    getAuthority,
		listAuthorities: listAuthorities,
		dailyIncome:     dailyIncome,
		incomeReport:    incomeReport,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// AuthorityRequest - запрос на создание/обновление authority.
//
// @Description Authority request body
type AuthorityRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Nickname string `json:"nickname,omitempty" binding:"omitempty,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Area     string `json:"area,omitempty"`
	State    string `json:"state,omitempty"`
}

// AuthorityIDParam - параметр ID authority из URL.
type AuthorityIDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// DailyIncomeParams - query-параметры отчёта по доходу.
type DailyIncomeParams struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// IncomeReportParams - query-параметры платформенного отчёта.
type IncomeReportParams struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// ============================================
// HTTP Handlers
// ============================================

// CreateAuthority регистрирует новый local authority (admin-only).
//
// @Summary Create a local authority
// @Tags Authorities
// @Accept json
// @Produce json
// @Param request body AuthorityRequest true "Authority data"
// @Success 201 {object} common.APIResponse{data=dtos.AuthorityDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/authorities [post]
func (h *AuthorityHandler) CreateAuthority(c *gin.Context) {
	var req AuthorityRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.CreateAuthorityCommand{
		ActorID:  middleware.GetAuthUserID(c).String(),
		Name:     req.Name,
		Nickname: req.Nickname,
		Email:    req.Email,
		Phone:    req.Phone,
		Area:     req.Area,
		State:    req.State,
	}

	result, err := h.createAuthority.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, result)
}

// UpdateAuthority обновляет реквизиты authority (admin-only).
//
// @Summary Update a local authority
// @Tags Authorities
// @Accept json
// @Produce json
// @Param id path string true "Authority ID" format(uuid)
// @Param request body AuthorityRequest true "Authority data"
// @Success 200 {object} common.APIResponse{data=dtos.AuthorityDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/authorities/{id} [put]
func (h *AuthorityHandler) UpdateAuthority(c *gin.Context) {
	var params AuthorityIDParam
	if !BindURI(c, &params) {
		return
	}

	var req AuthorityRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.UpdateAuthorityCommand{
		ActorID:     middleware.GetAuthUserID(c).String(),
		AuthorityID: params.ID,
		Name:        req.Name,
		Nickname:    req.Nickname,
		Email:       req.Email,
		Phone:       req.Phone,
		Area:        req.Area,
		State:       req.State,
	}

	result, err := h.updateAuthority.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ResetIncome обнуляет running income (payout-checkpoint, admin-only).
//
// Lifetime total_income не меняется.
//
// @Summary Reset running income
// @Tags Authorities
// @Produce json
// @Param id path string true "Authority ID" format(uuid)
// @Success 200 {object} common.APIResponse{data=dtos.AuthorityDTO}
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/authorities/{id}/reset-income [post]
func (h *AuthorityHandler) ResetIncome(c *gin.Context) {
	var params AuthorityIDParam
	if !BindURI(c, &params) {
		return
	}

	cmd := dtos.ResetIncomeCommand{
		ActorID:     middleware.GetAuthUserID(c).String(),
		AuthorityID: params.ID,
	}

	result, err := h.resetIncome.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// DeleteAuthority удаляет authority (admin-only).
//
// Журнал транзакций при этом сохраняется: исторические отчёты
// по доходам остаются доступными.
//
// @Summary Delete a local authority
// @Tags Authorities
// @Produce json
// @Param id path string true "Authority ID" format(uuid)
// @Success 204 {object} nil
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/authorities/{id} [delete]
func (h *AuthorityHandler) DeleteAuthority(c *gin.Context) {
	var params AuthorityIDParam
	if !BindURI(c, &params) {
		return
	}

	cmd := dtos.DeleteAuthorityCommand{
		ActorID:     middleware.GetAuthUserID(c).String(),
		AuthorityID: params.ID,
	}

	if err := h.deleteAuthority.Execute(c.Request.Context(), cmd); err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetAuthority возвращает authority по ID.
//
// @Summary Get authority by ID
// @Tags Authorities
// @Produce json
// @Param id path string true "Authority ID" format(uuid)
// @Success 200 {object} common.APIResponse{data=dtos.AuthorityDTO}
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/authorities/{id} [get]
func (h *AuthorityHandler) GetAuthority(c *gin.Context) {
	var params AuthorityIDParam
	if !BindURI(c, &params) {
		return
	}

	query := dtos.GetAuthorityQuery{AuthorityID: params.ID}

	result, err := h.getAuthority.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListAuthorities возвращает список authorities.
//
// @Summary List local authorities
// @Tags Authorities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20) maximum(100)
// @Success 200 {object} common.APIResponse{data=dtos.AuthorityListDTO}
// @Router /api/v1/authorities [get]
func (h *AuthorityHandler) ListAuthorities(c *gin.Context) {
	pagination := ParsePagination(c)

	query := dtos.ListAuthoritiesQuery{
		Offset: pagination.Offset(),
		Limit:  pagination.PerPage,
	}

	result, err := h.listAuthorities.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// DailyIncome возвращает доход authority за календарные сутки (UTC).
//
// @Summary Daily income report
// @Tags Authorities
// @Produce json
// @Param id path string true "Authority ID" format(uuid)
// @Param date query string true "Day in YYYY-MM-DD"
// @Success 200 {object} common.APIResponse{data=dtos.DailyIncomeDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/authorities/{id}/income [get]
func (h *AuthorityHandler) DailyIncome(c *gin.Context) {
	var params AuthorityIDParam
	if !BindURI(c, &params) {
		return
	}

	var q DailyIncomeParams
	if !BindQuery(c, &q) {
		return
	}

	query := dtos.DailyIncomeQuery{
		AuthorityID: params.ID,
		Date:        q.Date,
	}

	result, err := h.dailyIncome.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// IncomeReport возвращает кредиты платформы, сгруппированные по дням.
//
// @Summary Platform income report grouped by day
// @Tags Authorities
// @Produce json
// @Param from query string false "Start date (inclusive)" format(date)
// @Param to query string false "End date (inclusive)" format(date)
// @Success 200 {object} common.APIResponse{data=dtos.IncomeReportDTO}
// @Failure 400 {object} common.APIResponse
// @Router /api/v1/reports/income [get]
func (h *AuthorityHandler) IncomeReport(c *gin.Context) {
	var params IncomeReportParams
	if !BindQuery(c, &params) {
		return
	}

	query := dtos.IncomeReportQuery{From: params.From, To: params.To}

	result, err := h.incomeReport.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RegisterRoutes регистрирует маршруты для AuthorityHandler.
//
// Routes:
// - GET    /authorities                  - List authorities
// - GET    /authorities/:id              - Get authority by ID
// - GET    /authorities/:id/income       - Daily income report (admin)
// - POST   /authorities                  - Create authority (admin)
// - PUT    /authorities/:id              - Update authority (admin)
// - POST   /authorities/:id/reset-income - Reset running income (admin)
// - DELETE /authorities/:id              - Delete authority (admin)
// - GET    /reports/income               - Platform income by day (admin)
func (h *AuthorityHandler) RegisterRoutes(router *gin.RouterGroup) {
	authorities := router.Group("/authorities")
	{
		authorities.GET("", h.ListAuthorities)
		authorities.GET("/:id", h.GetAuthority)
	}

	admin := router.Group("/authorities", middleware.RequireRole("admin"))
	{
		admin.POST("", h.CreateAuthority)
		admin.PUT("/:id", h.UpdateAuthority)
		admin.POST("/:id/reset-income", h.ResetIncome)
		admin.DELETE("/:id", h.DeleteAuthority)
		admin.GET("/:id/income", h.DailyIncome)
	}

	reports := router.Group("/reports", middleware.RequireRole("admin"))
	{
		reports.GET("/income", h.IncomeReport)
	}
}
