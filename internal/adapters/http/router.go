// Package http - Router configuration for REST API.
//
// Router собирает все handlers и middleware в единую точку входа.
//
// Pattern: Composition Root
// - Все зависимости собираются здесь
// - Handlers получают только нужные им use cases
// - Middleware применяется к соответствующим группам routes
package http

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mypark/parkwallet/internal/adapters/http/common"
	"github.com/mypark/parkwallet/internal/adapters/http/handlers"
	"github.com/mypark/parkwallet/internal/adapters/http/middleware"
	"github.com/mypark/parkwallet/internal/application/ports"
)

// ============================================
// Router Configuration
// ============================================

// RouterConfig - конфигурация роутера.
type RouterConfig struct {
	// Logger для middleware
	Logger *slog.Logger
	// Database pool для health checks
	Pool *pgxpool.Pool
	// Redis client для health checks (nil, если кэш выключен)
	Redis *redis.Client
	// Version приложения
	Version string
	// BuildTime время сборки
	BuildTime string
	// Environment (development, staging, production)
	Environment string
	// AllowedOrigins для CORS (production)
	AllowedOrigins []string
	// TokenValidator - функция валидации токена.
	// Обычно это ports.TokenService.Validate.
	TokenValidator func(token string) (*ports.TokenClaims, error)
}

// DefaultRouterConfig - конфигурация по умолчанию для development.
// TokenValidator должен быть установлен отдельно.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:         slog.Default(),
		Version:        "dev",
		BuildTime:      "unknown",
		Environment:    "development",
		AllowedOrigins: []string{"*"},
	}
}

// ============================================
// Use Case Providers
// ============================================

// AuthUseCases - provider для публичных auth use cases.
type AuthUseCases struct {
	RegisterUser handlers.RegisterUserUseCase
	Authenticate handlers.AuthenticateUseCase
}

// UserUseCases - provider для user use cases.
type UserUseCases struct {
	GetUser           handlers.GetUserUseCase
	ListUsers         handlers.ListUsersUseCase
	UpdateProfile     handlers.UpdateProfileUseCase
	AssignRole        handlers.AssignRoleUseCase
	SetDefaultVehicle handlers.SetDefaultVehicleUseCase
}

// VehicleUseCases - provider для vehicle use cases.
type VehicleUseCases struct {
	RegisterVehicle handlers.RegisterVehicleUseCase
	UnlinkVehicle   handlers.UnlinkVehicleUseCase
	ListVehicles    handlers.ListVehiclesUseCase
	LookupVehicle   handlers.LookupVehicleUseCase
}

// WalletUseCases - provider для wallet use cases.
type WalletUseCases struct {
	InitiateTopUp    handlers.InitiateTopUpUseCase
	CaptureTopUp     handlers.CaptureTopUpUseCase
	GetWallet        handlers.GetWalletUseCase
	ListTransactions handlers.ListTransactionsUseCase
}

// ParkingUseCases - provider для parking use cases.
type ParkingUseCases struct {
	StartSession     handlers.StartSessionUseCase
	ExtendSession    handlers.ExtendSessionUseCase
	TerminateSession handlers.TerminateSessionUseCase
	GetSession       handlers.GetSessionUseCase
	ListSessions     handlers.ListSessionsUseCase
}

// SamanUseCases - provider для saman use cases.
type SamanUseCases struct {
	IssueSaman  handlers.IssueSamanUseCase
	PaySaman    handlers.PaySamanUseCase
	GetSaman    handlers.GetSamanUseCase
	FineHistory handlers.FineHistoryUseCase
}

// AuthorityUseCases - provider для authority use cases.
type AuthorityUseCases struct {
	CreateAuthority handlers.CreateAuthorityUseCase
	UpdateAuthority handlers.UpdateAuthorityUseCase
	ResetIncome     handlers.ResetIncomeUseCase
	DeleteAuthority handlers.DeleteAuthorityUseCase
	GetAuthority    handlers.GetAuthorityUseCase
	ListAuthorities handlers.ListAuthoritiesUseCase
	DailyIncome     handlers.DailyIncomeUseCase
	IncomeReport    handlers.IncomeReportUseCase
}

// ============================================
// Router Builder
// ============================================

// RouterBuilder - builder для создания роутера.
//
// Pattern: Builder
// - Позволяет пошагово настроить роутер
// - Проще тестировать
// - Можно переиспользовать части конфигурации
type RouterBuilder struct {
	config      *RouterConfig
	auth        *AuthUseCases
	users       *UserUseCases
	vehicles    *VehicleUseCases
	wallets     *WalletUseCases
	parking     *ParkingUseCases
	samans      *SamanUseCases
	authorities *AuthorityUseCases
}

// NewRouterBuilder создаёт новый builder.
func NewRouterBuilder(config *RouterConfig) *RouterBuilder {
	if config == nil {
		config = DefaultRouterConfig()
	}
	return &RouterBuilder{
		config: config,
	}
}

// WithAuthUseCases добавляет auth use cases.
func (b *RouterBuilder) WithAuthUseCases(useCases *AuthUseCases) *RouterBuilder {
	b.auth = useCases
	return b
}

// WithUserUseCases добавляет user use cases.
func (b *RouterBuilder) WithUserUseCases(useCases *UserUseCases) *RouterBuilder {
	b.users = useCases
	return b
}

// WithVehicleUseCases добавляет vehicle use cases.
func (b *RouterBuilder) WithVehicleUseCases(useCases *VehicleUseCases) *RouterBuilder {
	b.vehicles = useCases
	return b
}

// WithWalletUseCases добавляет wallet use cases.
func (b *RouterBuilder) WithWalletUseCases(useCases *WalletUseCases) *RouterBuilder {
	b.wallets = useCases
	return b
}

// WithParkingUseCases добавляет parking use cases.
func (b *RouterBuilder) WithParkingUseCases(useCases *ParkingUseCases) *RouterBuilder {
	b.parking = useCases
	return b
}

// WithSamanUseCases добавляет saman use cases.
func (b *RouterBuilder) WithSamanUseCases(useCases *SamanUseCases) *RouterBuilder {
	b.samans = useCases
	return b
}

// WithAuthorityUseCases добавляет authority use cases.
func (b *RouterBuilder) WithAuthorityUseCases(useCases *AuthorityUseCases) *RouterBuilder {
	b.authorities = useCases
	return b
}

// Build создаёт сконфигурированный Gin Engine.
func (b *RouterBuilder) Build() *gin.Engine {
	// Настраиваем режим Gin
	if b.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Создаём router без default middleware
	router := gin.New()

	// Настраиваем кастомные валидаторы
	handlers.SetupValidator()

	// ============================================
	// Global Middleware
	// ============================================

	// 1. Recovery - должен быть первым
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           b.config.Logger,
		EnableStackTrace: b.config.Environment != "production",
	}))

	// 2. Request ID
	router.Use(middleware.RequestID())

	// 3. CORS
	if b.config.Environment == "production" {
		router.Use(middleware.CORS(middleware.ProductionCORSConfig(b.config.AllowedOrigins)))
	} else {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}

	// 4. Logging
	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    b.config.Logger,
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}))

	// 5. Rate Limiting (global)
	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	// 6. Metrics (Prometheus)
	router.Use(middleware.Metrics())

	// ============================================
	// Metrics Endpoint (no auth)
	// ============================================

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ============================================
	// Health Check Routes (no auth)
	// ============================================

	healthHandler := handlers.NewHealthHandler(
		b.config.Pool,
		b.config.Redis,
		b.config.Version,
		b.config.BuildTime,
	)
	healthHandler.RegisterRoutes(router)

	// ============================================
	// API v1 Routes
	// ============================================

	v1 := router.Group("/api/v1")

	// Public routes (no auth required)
	if b.auth != nil {
		authHandler := handlers.NewAuthHandler(b.auth.RegisterUser, b.auth.Authenticate)

		// Login/register - под анти-brute-force лимитом
		authGroup := v1.Group("")
		authGroup.Use(middleware.AuthRateLimit())
		authHandler.RegisterRoutes(authGroup)
	}

	// Protected routes (auth required)
	tokenValidator := b.config.TokenValidator
	if tokenValidator == nil {
		tokenValidator = func(string) (*ports.TokenClaims, error) {
			return nil, errors.New("token validator is not configured")
		}
	}

	protectedGroup := v1.Group("")
	protectedGroup.Use(middleware.Auth(&middleware.AuthConfig{
		TokenValidator: tokenValidator,
	}))
	{
		if b.users != nil {
			userHandler := handlers.NewUserHandler(
				b.users.GetUser,
				b.users.ListUsers,
				b.users.UpdateProfile,
				b.users.AssignRole,
				b.users.SetDefaultVehicle,
			)
			userHandler.RegisterRoutes(protectedGroup)
		}

		if b.vehicles != nil {
			vehicleHandler := handlers.NewVehicleHandler(
				b.vehicles.RegisterVehicle,
				b.vehicles.UnlinkVehicle,
				b.vehicles.ListVehicles,
				b.vehicles.LookupVehicle,
			)
			vehicleHandler.RegisterRoutes(protectedGroup)
		}

		if b.wallets != nil {
			walletHandler := handlers.NewWalletHandler(
				b.wallets.InitiateTopUp,
				b.wallets.CaptureTopUp,
				b.wallets.GetWallet,
				b.wallets.ListTransactions,
			)

			// Денежные операции - с более строгим rate limit
			walletGroup := protectedGroup.Group("")
			walletGroup.Use(middleware.TransactionRateLimit())
			walletHandler.RegisterRoutes(walletGroup)
		}

		if b.parking != nil {
			parkingHandler := handlers.NewParkingHandler(
				b.parking.StartSession,
				b.parking.ExtendSession,
				b.parking.TerminateSession,
				b.parking.GetSession,
				b.parking.ListSessions,
			)
			parkingHandler.RegisterRoutes(protectedGroup)
		}

		if b.samans != nil {
			samanHandler := handlers.NewSamanHandler(
				b.samans.IssueSaman,
				b.samans.PaySaman,
				b.samans.GetSaman,
				b.samans.FineHistory,
			)
			samanHandler.RegisterRoutes(protectedGroup)
		}

		if b.authorities != nil {
			authorityHandler := handlers.NewAuthorityHandler(
				b.authorities.CreateAuthority,
				b.authorities.UpdateAuthority,
				b.authorities.ResetIncome,
				b.authorities.DeleteAuthority,
				b.authorities.GetAuthority,
				b.authorities.ListAuthorities,
				b.authorities.DailyIncome,
				b.authorities.IncomeReport,
			)
			authorityHandler.RegisterRoutes(protectedGroup)
		}
	}

	// ============================================
	// 404 Handler
	// ============================================

	router.NoRoute(func(c *gin.Context) {
		common.Error(c, 404, &common.APIError{
			Code:    common.ErrCodeNotFound,
			Message: "Endpoint not found",
			Details: map[string]interface{}{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			},
		})
	})

	return router
}

// ============================================
// Quick Setup Functions
// ============================================

// NewRouter создаёт роутер с базовой конфигурацией (для простых случаев).
func NewRouter(config *RouterConfig) *gin.Engine {
	return NewRouterBuilder(config).Build()
}

// NewProductionRouter создаёт роутер для production окружения.
func NewProductionRouter(
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	version string,
	allowedOrigins []string,
	tokenValidator func(token string) (*ports.TokenClaims, error),
) *gin.Engine {
	config := &RouterConfig{
		Logger:         slog.Default(),
		Pool:           pool,
		Redis:          redisClient,
		Version:        version,
		Environment:    "production",
		AllowedOrigins: allowedOrigins,
		TokenValidator: tokenValidator,
	}
	return NewRouter(config)
}
