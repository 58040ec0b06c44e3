// Package handlers - Saman HTTP handlers: выписка и оплата штрафов.
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

// IssueSamanUseCase - интерфейс для выписки штрафа (warden/admin).
type IssueSamanUseCase interface {
	Execute(ctx context.Context, cmd dtos.IssueSamanCommand) (*dtos.SamanDTO, error)
}

// PaySamanUseCase - интерфейс для оплаты штрафа из кошелька.
type PaySamanUseCase interface {
	Execute(ctx context.Context, cmd dtos.PaySamanCommand) (*dtos.SamanPaidDTO, error)
}

// GetSamanUseCase - интерфейс для получения штрафа.
type GetSamanUseCase interface {
	Execute(ctx context.Context, query dtos.GetSamanQuery) (*dtos.SamanDTO, error)
}

// FineHistoryUseCase - интерфейс для истории штрафов пользователя.
type FineHistoryUseCase interface {
	Execute(ctx context.Context, query dtos.FineHistoryQuery) (*dtos.SamanListDTO, error)
}

// ============================================
// Saman Handler
// ============================================

// SamanHandler обрабатывает HTTP запросы для штрафов.
type SamanHandler struct {
	issueSaman  IssueSamanUseCase
	paySaman    PaySamanUseCase
	getSaman    GetSamanUseCase
	fineHistory FineHistoryUseCase
}

// NewSamanHandler создаёт новый SamanHandler.
func NewSamanHandler(
	issueSaman IssueSamanUseCase,
	paySaman PaySamanUseCase,
	getSaman GetSamanUseCase,
	fineHistory FineHistoryUseCase,
) *SamanHandler {
	return &SamanHandler{
		issueSaman:  issueSaman,
		paySaman:    paySaman,
		getSaman:    getSaman,
		fineHistory: fineHistory,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// IssueSamanRequest - запрос на выписку штрафа.
//
// Машина идентифицируется тройкой, как её видит warden на улице.
// Пустой price означает фиксированный тариф по умолчанию.
//
// @Description Issue saman request body
type IssueSamanRequest struct {
	LicensePlate string `json:"license_plate" binding:"required"`
	Brand        string `json:"brand" binding:"required"`
	Color        string `json:"color" binding:"required"`
	AuthorityID  string `json:"authority_id" binding:"required,uuid"`
	Offense      string `json:"offense" binding:"required,min=3,max=500"`
	Price        string `json:"price,omitempty" binding:"omitempty,money_amount"`
}

// SamanIDParam - параметр ID штрафа из URL.
type SamanIDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ============================================
// HTTP Handlers
// ============================================

// IssueSaman выписывает штраф (warden/admin only).
//
// @Summary Issue a saman
// @Tags Samans
// @Accept json
// @Produce json
// @Param request body IssueSamanRequest true "Saman data"
// @Success 201 {object} common.APIResponse{data=dtos.SamanDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/samans [post]
func (h *SamanHandler) IssueSaman(c *gin.Context) {
	var req IssueSamanRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.IssueSamanCommand{
		ActorID:      middleware.GetAuthUserID(c).String(),
		LicensePlate: req.LicensePlate,
		Brand:        req.Brand,
		Color:        req.Color,
		AuthorityID:  req.AuthorityID,
		Offense:      req.Offense,
		Price:        req.Price,
	}

	result, err := h.issueSaman.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, result)
}

// PaySaman оплачивает штраф из кошелька.
//
// Оплаченный штраф повторно оплатить нельзя.
//
// @Summary Pay a saman from the wallet
// @Tags Samans
// @Produce json
// @Param id path string true "Saman ID" format(uuid)
// @Success 200 {object} common.APIResponse{data=dtos.SamanPaidDTO}
// @Failure 404 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Router /api/v1/samans/{id}/pay [post]
func (h *SamanHandler) PaySaman(c *gin.Context) {
	var params SamanIDParam
	if !BindURI(c, &params) {
		return
	}

	cmd := dtos.PaySamanCommand{
		UserID:  middleware.GetAuthUserID(c).String(),
		SamanID: params.ID,
	}

	result, err := h.paySaman.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// GetSaman возвращает штраф по ID.
//
// @Summary Get saman by ID
// @Tags Samans
// @Produce json
// @Param id path string true "Saman ID" format(uuid)
// @Success 200 {object} common.APIResponse{data=dtos.SamanDTO}
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/samans/{id} [get]
func (h *SamanHandler) GetSaman(c *gin.Context) {
	var params SamanIDParam
	if !BindURI(c, &params) {
		return
	}

	query := dtos.GetSamanQuery{SamanID: params.ID}

	result, err := h.getSaman.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListMySamans возвращает штрафы по всем машинам текущего пользователя.
//
// @Summary List samans for my vehicles
// @Tags Samans
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20) maximum(100)
// @Success 200 {object} common.APIResponse{data=dtos.SamanListDTO}
// @Router /api/v1/samans [get]
func (h *SamanHandler) ListMySamans(c *gin.Context) {
	pagination := ParsePagination(c)

	query := dtos.FineHistoryQuery{
		UserID: middleware.GetAuthUserID(c).String(),
		Offset: pagination.Offset(),
		Limit:  pagination.PerPage,
	}

	result, err := h.fineHistory.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RegisterRoutes регистрирует маршруты для SamanHandler.
//
// Routes:
// - POST /samans         - Issue saman (warden/admin)
// - GET  /samans         - My fine history
// - GET  /samans/:id     - Get saman by ID
// - POST /samans/:id/pay - Pay saman
func (h *SamanHandler) RegisterRoutes(router *gin.RouterGroup) {
	samans := router.Group("/samans")
	{
		samans.GET("", h.ListMySamans)
		samans.GET("/:id", h.GetSaman)
		samans.POST("/:id/pay", h.PaySaman)
	}

	issuing := router.Group("/samans", middleware.RequireRole("traffic_warden", "admin"))
	{
		issuing.POST("", h.IssueSaman)
	}
}
