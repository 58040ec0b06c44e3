// Package handlers - Vehicle HTTP handlers: регистрация, отвязка,
// enforcement-lookup для warden'ов.
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

// RegisterVehicleUseCase - интерфейс для привязки автомобиля.
type RegisterVehicleUseCase interface {
	Execute(ctx context.Context, cmd dtos.RegisterVehicleCommand) (*dtos.VehicleDTO, error)
}

// UnlinkVehicleUseCase - интерфейс для отвязки автомобиля.
type UnlinkVehicleUseCase interface {
	Execute(ctx context.Context, cmd dtos.UnlinkVehicleCommand) error
}

// ListVehiclesUseCase - интерфейс для списка автомобилей пользователя.
type ListVehiclesUseCase interface {
	Execute(ctx context.Context, query dtos.ListVehiclesQuery) (*dtos.VehicleListDTO, error)
}

// LookupVehicleUseCase - интерфейс для enforcement-проверки.
type LookupVehicleUseCase interface {
	Execute(ctx context.Context, query dtos.LookupVehicleQuery) (*dtos.EnforcementDTO, error)
}

// ============================================
// Vehicle Handler
// ============================================

// VehicleHandler обрабатывает HTTP запросы для автомобилей.
type VehicleHandler struct {
	registerVehicle RegisterVehicleUseCase
	unlinkVehicle   UnlinkVehicleUseCase
	listVehicles    ListVehiclesUseCase
	lookupVehicle   LookupVehicleUseCase
}

// NewVehicleHandler создаёт новый VehicleHandler.
func NewVehicleHandler(
	registerVehicle RegisterVehicleUseCase,
	unlinkVehicle UnlinkVehicleUseCase,
	listVehicles ListVehiclesUseCase,
	lookupVehicle LookupVehicleUseCase,
) *VehicleHandler {
	return &VehicleHandler{
		registerVehicle: registerVehicle,
		unlinkVehicle:   unlinkVehicle,
		listVehicles:    listVehicles,
		lookupVehicle:   lookupVehicle,
	}
}

// ============================================
// Request DTOs (HTTP layer)
// ============================================

// RegisterVehicleRequest - запрос на привязку автомобиля.
//
// @Description Register vehicle request body
type RegisterVehicleRequest struct {
	LicensePlate string `json:"license_plate" binding:"required,min=2,max=16"`
	Brand        string `json:"brand" binding:"required,min=2,max=50"`
	Color        string `json:"color" binding:"required,min=2,max=30"`
}

// LookupVehicleRequest - enforcement-запрос по тройке.
//
// @Description Enforcement lookup request body
type LookupVehicleRequest struct {
	LicensePlate string `json:"license_plate" binding:"required"`
	Brand        string `json:"brand" binding:"required"`
	Color        string `json:"color" binding:"required"`
}

// VehicleIDParam - параметр ID автомобиля из URL.
type VehicleIDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ============================================
// HTTP Handlers
// ============================================

// RegisterVehicle привязывает автомобиль к текущему пользователю.
//
// @Summary Register a vehicle
// @Description Link a vehicle to the current user; an existing plate triple gains a co-owner
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param request body RegisterVehicleRequest true "Vehicle data"
// @Success 201 {object} common.APIResponse{data=dtos.VehicleDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/vehicles [post]
func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	var req RegisterVehicleRequest
	if !BindJSON(c, &req) {
		return
	}

	cmd := dtos.RegisterVehicleCommand{
		UserID:       middleware.GetAuthUserID(c).String(),
		LicensePlate: req.LicensePlate,
		Brand:        req.Brand,
		Color:        req.Color,
	}

	result, err := h.registerVehicle.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, result)
}

// ListVehicles возвращает автомобили текущего пользователя.
//
// @Summary List my vehicles
// @Tags Vehicles
// @Produce json
// @Success 200 {object} common.APIResponse{data=dtos.VehicleListDTO}
// @Router /api/v1/vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	query := dtos.ListVehiclesQuery{UserID: middleware.GetAuthUserID(c).String()}

	result, err := h.listVehicles.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// UnlinkVehicle отвязывает автомобиль от текущего пользователя.
//
// Сам автомобиль переживает отвязку: совладельцы и история штрафов
// остаются. Конкурентные правки того же автомобиля ретраятся
// ограниченное число раз внутри use case.
//
// @Summary Unlink a vehicle
// @Tags Vehicles
// @Produce json
// @Param id path string true "Vehicle ID" format(uuid)
// @Success 204 {object} nil
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /api/v1/vehicles/{id} [delete]
func (h *VehicleHandler) UnlinkVehicle(c *gin.Context) {
	var params VehicleIDParam
	if !BindURI(c, &params) {
		return
	}

	cmd := dtos.UnlinkVehicleCommand{
		UserID:    middleware.GetAuthUserID(c).String(),
		VehicleID: params.ID,
	}

	if err := h.unlinkVehicle.Execute(c.Request.Context(), cmd); err != nil {
		common.HandleDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Lookup выполняет enforcement-проверку по тройке (warden/admin only).
//
// @Summary Enforcement lookup
// @Description Check whether a vehicle has an ongoing parking session
// @Tags Vehicles
// @Accept json
// @Produce json
// @Param request body LookupVehicleRequest true "Vehicle triple"
// @Success 200 {object} common.APIResponse{data=dtos.EnforcementDTO}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/v1/enforcement/lookup [post]
func (h *VehicleHandler) Lookup(c *gin.Context) {
	var req LookupVehicleRequest
	if !BindJSON(c, &req) {
		return
	}

	query := dtos.LookupVehicleQuery{
		LicensePlate: req.LicensePlate,
		Brand:        req.Brand,
		Color:        req.Color,
	}

	result, err := h.lookupVehicle.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RegisterRoutes регистрирует маршруты для VehicleHandler.
//
// Routes:
// - POST   /vehicles           - Register vehicle
// - GET    /vehicles           - List my vehicles
// - DELETE /vehicles/:id       - Unlink vehicle
// - POST   /enforcement/lookup - Enforcement check (warden/admin)
func (h *VehicleHandler) RegisterRoutes(router *gin.RouterGroup) {
	vehicles := router.Group("/vehicles")
	{
		vehicles.POST("", h.RegisterVehicle)
		vehicles.GET("", h.ListVehicles)
		vehicles.DELETE("/:id", h.UnlinkVehicle)
	}

	enforcement := router.Group("/enforcement", middleware.RequireRole("traffic_warden", "admin"))
	{
		enforcement.POST("/lookup", h.Lookup)
	}
}
