// Package handlers - Wallet HTTP handlers: пополнение через PayPal и журнал.
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

// InitiateTopUpUseCase - интерфейс для создания ордера на пополнение.
type InitiateTopUpUseCase interface {
	Execute(ctx context.Context, cmd dtos.InitiateTopUpCommand) (*dtos.TopUpInitiatedDTO, error)
}

// CaptureTopUpUseCase - интерфейс для подтверждения одобренного ордера.
type CaptureTopUpUseCase interface {
	Execute(ctx context.Context, cmd dtos.CaptureTopUpCommand) (*dtos.TopUpCapturedDTO, error)
}

// GetWalletUseCase - интерфейс для получения баланса.
type GetWalletUseCase interface {
	Execute(ctx context.Context, query dtos.GetWalletQuery) (*dtos.WalletDTO, error)
}

// ListTransactionsUseCase - интерфейс для журнала транзакций.
type ListTransactionsUseCase interface {
	Execute(ctx context.Context, query dtos.ListTransactionsQuery) (*dtos.TransactionListDTO, error)
}

// ============================================
// Wallet Handler
// ============================================

// WalletHandler обрабатывает HTTP запросы для кошелька.
//
// Пополнение - двухфазное: Initiate создаёт ордер у шлюза и возвращает
// approval-ссылку, Capture подтверждает одобренный ордер и зачисляет
// деньги. Capture идемпотентен по order_id.
type WalletHandler struct {
	initiateTopUp    InitiateTopUpUseCase
	captureTopUp     CaptureTopUpUseCase
	getWallet        GetWalletUseCase
	listTransactions ListTransactionsUseCase
}

// NewWalletHandler создаёт новый WalletHandler.
func NewWalletHandler(
	initiateTopUp InitiateTopUpUseCase,
	captureTopUp CaptureTopUpUseCase,
	getWallet GetWalletUseCase,
	listTransactions ListTransactionsUseCase,
) *WalletHandler {
	return &WalletHandler{
		initiateTopUp:    initiateTopUp,
		captureTopUp:     captureTopUp,
		getWallet:        getWallet,
		listTransactions: listTransactions,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// InitiateTopUpRequest - запрос на создание ордера.
//
// @Description Initiate top-up request body
type InitiateTopUpRequest struct {
	Amount string `json:"amount" binding:"required,money_amount"`
}

// CaptureTopUpRequest - запрос на подтверждение ордера.
//
// @Description Capture top-up request body
type CaptureTopUpRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// TransactionRangeParams - опциональный диапазон дат журнала
// (включительно, UTC).
type TransactionRangeParams struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// ============================================
// HTTP Handlers
// ============================================

// GetWallet возвращает баланс кошелька текущего пользователя.
//
// @Summary Get wallet balance
// @Tags Wallet
// @Produce json
// @Success 200 {object} common.APIResponse{data=dtos.WalletDTO}
// @Failure 401 {object} common.APIResponse
// @Router /api/v1/wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	query := dtos.GetWalletQuery{UserID: middleware.GetAuthUserID(c).String()}

	result, err := h.getWallet.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// InitiateTopUp создаёт ордер на пополнение у платёжного шлюза.
//
// Кошелёк на этом шаге не меняется: пользователь должен одобрить
// платёж по approval-ссылке, после чего вызывается Capture.
//
// @Summary Initiate a wallet top-up
// @Tags Wallet
// @Accept json
// @Produce json
// @Param request body InitiateTopUpRequest true "Amount"
// @Success 201 {object} common.APIResponse{data=dtos.TopUpInitiatedDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 502 {object} common.APIResponse
// @Router /api/v1/wallet/topup [post]
func (h *WalletHandler) InitiateTopUp(c *gin.Context) {
	var req InitiateTopUpRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.InitiateTopUpCommand{
		UserID: middleware.GetAuthUserID(c).String(),
		Amount: req.Amount,
	}

	result, err := h.initiateTopUp.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, result)
}

// CaptureTopUp подтверждает одобренный ордер и зачисляет деньги.
//
// Повторный capture того же ордера возвращает исходную транзакцию
// с already_captured=true и не меняет баланс.
//
// @Summary Capture an approved top-up order
// @Tags Wallet
// @Accept json
// @Produce json
// @Param request body CaptureTopUpRequest true "Order ID"
// @Success 200 {object} common.APIResponse{data=dtos.TopUpCapturedDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Failure 502 {object} common.APIResponse
// @Router /api/v1/wallet/topup/capture [post]
func (h *WalletHandler) CaptureTopUp(c *gin.Context) {
	var req CaptureTopUpRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.CaptureTopUpCommand{
		UserID:  middleware.GetAuthUserID(c).String(),
		OrderID: req.OrderID,
	}

	result, err := h.captureTopUp.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListTransactions возвращает журнал кошелька текущего пользователя.
//
// @Summary List wallet transactions
// @Tags Wallet
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20) maximum(100)
// @Param from query string false "Start date (inclusive)" format(date)
// @Param to query string false "End date (inclusive)" format(date)
// @Success 200 {object} common.APIResponse{data=dtos.TransactionListDTO}
// @Router /api/v1/wallet/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	var rng TransactionRangeParams
	if !BindQuery(c, &rng) {
		return
	}

	pagination := ParsePagination(c)

	query := dtos.ListTransactionsQuery{
		UserID: middleware.GetAuthUserID(c).String(),
		From:   rng.From,
		To:     rng.To,
		Offset: pagination.Offset(),
		Limit:  pagination.PerPage,
	}

	result, err := h.listTransactions.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RegisterRoutes регистрирует маршруты для WalletHandler.
//
// Routes:
// - GET  /wallet               - Wallet balance
// - POST /wallet/topup         - Initiate top-up
// - POST /wallet/topup/capture - Capture approved order
// - GET  /wallet/transactions  - Transaction journal
func (h *WalletHandler) RegisterRoutes(router *gin.RouterGroup) {
	wallet := router.Group("/wallet")
	{
		wallet.GET("", h.GetWallet)
		wallet.POST("/topup", h.InitiateTopUp)
		wallet.POST("/topup/capture", h.CaptureTopUp)
		wallet.GET("/transactions", h.ListTransactions)
	}
}
