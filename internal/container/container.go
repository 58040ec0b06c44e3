// Package container - Dependency Injection container for the application.
//
// Container управляет жизненным циклом всех зависимостей:
// - Создание (lazy initialization)
// - Доступ (getters)
// - Закрытие (cleanup)
//
// Pattern: Composition Root
// - Все зависимости собираются в одном месте
// - Легко тестировать
// - Легко заменять реализации
package container

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mypark/parkwallet/internal/adapters/http"
	"github.com/mypark/parkwallet/internal/application/ports"
	"github.com/mypark/parkwallet/internal/application/usecases/authority"
	"github.com/mypark/parkwallet/internal/application/usecases/parking"
	"github.com/mypark/parkwallet/internal/application/usecases/saman"
	"github.com/mypark/parkwallet/internal/application/usecases/user"
	"github.com/mypark/parkwallet/internal/application/usecases/vehicle"
	"github.com/mypark/parkwallet/internal/application/usecases/wallet"
	"github.com/mypark/parkwallet/internal/config"
	"github.com/mypark/parkwallet/internal/infrastructure/auth"
	"github.com/mypark/parkwallet/internal/infrastructure/cache"
	"github.com/mypark/parkwallet/internal/infrastructure/gateway/paypal"
	natsinfra "github.com/mypark/parkwallet/internal/infrastructure/messaging/nats"
	"github.com/mypark/parkwallet/internal/infrastructure/notify"
	"github.com/mypark/parkwallet/internal/infrastructure/persistence/postgres"
	"github.com/mypark/parkwallet/internal/pkg/logger"
)

// ============================================
// Container
// ============================================

// Container - DI контейнер приложения.
type Container struct {
	config *config.Config
	logger *slog.Logger

	// Infrastructure
	pool        *pgxpool.Pool
	redisClient *redis.Client
	publisher   *natsinfra.Publisher
	poller      *natsinfra.OutboxPoller

	// Repositories
	userRepo      ports.UserRepository
	vehicleRepo   ports.VehicleRepository
	sessionRepo   ports.ParkingSessionRepository
	samanRepo     ports.SamanRepository
	txRepo        ports.TransactionRepository
	authorityRepo ports.AuthorityRepository
	orderRepo     ports.PaymentOrderRepository
	outboxRepo    *postgres.OutboxRepository

	// Unit of Work
	uow ports.UnitOfWork

	// Services
	hasher           ports.PasswordHasher
	tokens           *auth.JWTService
	gateway          ports.PaymentGateway
	notifier         ports.Notifier
	enforcementCache ports.EnforcementCache

	// Use Cases
	registerUserUC      *user.RegisterUserUseCase
	authenticateUC      *user.AuthenticateUseCase
	getUserUC           *user.GetUserUseCase
	listUsersUC         *user.ListUsersUseCase
	updateProfileUC     *user.UpdateProfileUseCase
	assignRoleUC        *user.AssignRoleUseCase
	setDefaultVehicleUC *user.SetDefaultVehicleUseCase

	registerVehicleUC *vehicle.RegisterVehicleUseCase
	unlinkVehicleUC   *vehicle.UnlinkVehicleUseCase
	listVehiclesUC    *vehicle.ListVehiclesUseCase
	lookupVehicleUC   *vehicle.LookupVehicleUseCase

	initiateTopUpUC    *wallet.InitiateTopUpUseCase
	captureTopUpUC     *wallet.CaptureTopUpUseCase
	getWalletUC        *wallet.GetWalletUseCase
	listTransactionsUC *wallet.ListTransactionsUseCase

	startSessionUC     *parking.StartSessionUseCase
	extendSessionUC    *parking.ExtendSessionUseCase
	terminateSessionUC *parking.TerminateSessionUseCase
	getSessionUC       *parking.GetSessionUseCase
	listSessionsUC     *parking.ListSessionsUseCase
	expireSessionsUC   *parking.ExpireSessionsUseCase

	issueSamanUC  *saman.IssueSamanUseCase
	paySamanUC    *saman.PaySamanUseCase
	getSamanUC    *saman.GetSamanUseCase
	fineHistoryUC *saman.FineHistoryUseCase

	createAuthorityUC *authority.CreateAuthorityUseCase
	updateAuthorityUC *authority.UpdateAuthorityUseCase
	resetIncomeUC     *authority.ResetIncomeUseCase
	deleteAuthorityUC *authority.DeleteAuthorityUseCase
	getAuthorityUC    *authority.GetAuthorityUseCase
	listAuthoritiesUC *authority.ListAuthoritiesUseCase
	dailyIncomeUC     *authority.DailyIncomeUseCase
	incomeReportUC    *authority.IncomeReportUseCase

	// HTTP
	httpServer *http.Server

	// Background workers
	workersWG sync.WaitGroup
}

// New создаёт новый контейнер с заданной конфигурацией.
func New(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// ============================================
// Initialization
// ============================================

// Initialize инициализирует все зависимости.
func (c *Container) Initialize(ctx context.Context) error {
	c.logger = c.initLogger()
	c.logger.Info("Initializing application container...")

	// 1. Database
	if err := c.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database connected")

	// 2. Redis (опционально)
	c.initRedis()

	// 3. NATS
	if err := c.initMessaging(); err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	c.logger.Info("Messaging initialized")

	// 4. Repositories
	c.initRepositories()
	c.logger.Info("Repositories initialized")

	// 5. Infrastructure services
	c.initServices()
	c.logger.Info("Services initialized")

	// 6. Use Cases
	c.initUseCases()
	c.logger.Info("Use cases initialized")

	// 7. HTTP Server
	c.initHTTPServer()
	c.logger.Info("HTTP server initialized")

	c.logger.Info("Container initialization complete")
	return nil
}

// initLogger инициализирует логгер.
func (c *Container) initLogger() *slog.Logger {
	log := logger.New(&logger.Config{
		Level:     c.config.Log.Level,
		Format:    c.config.Log.Format,
		Output:    os.Stdout,
		AddSource: c.config.App.Debug,
	})
	slog.SetDefault(log)
	return log
}

// initDatabase инициализирует подключение к БД.
func (c *Container) initDatabase(ctx context.Context) error {
	pool, err := postgres.NewConnectionPool(ctx, postgres.Config{
		Host:            c.config.Database.Host,
		Port:            c.config.Database.Port,
		Database:        c.config.Database.Database,
		User:            c.config.Database.User,
		Password:        c.config.Database.Password,
		SSLMode:         c.config.Database.SSLMode,
		MaxConns:        c.config.Database.MaxConnections,
		MinConns:        c.config.Database.MinConnections,
		MaxConnLifetime: c.config.Database.MaxConnLifetime,
		MaxConnIdleTime: c.config.Database.MaxConnIdleTime,
		ConnectTimeout:  5 * time.Second,
	})
	if err != nil {
		return err
	}

	c.pool = pool
	return nil
}

// initRedis инициализирует Redis-клиент.
//
// Redis - только кэш enforcement-статусов; без него lookup просто
// ходит в БД напрямую, поэтому выключенный Redis не ошибка.
func (c *Container) initRedis() {
	if !c.config.Redis.Enabled {
		c.logger.Info("Redis disabled, enforcement cache is off")
		return
	}

	c.redisClient = cache.NewClient(cache.Config{
		Addr:     c.config.Redis.Addr,
		Password: c.config.Redis.Password,
		DB:       c.config.Redis.DB,
	})
	c.enforcementCache = cache.NewRedisEnforcementCache(c.redisClient)
	c.logger.Info("Redis connected", slog.String("addr", c.config.Redis.Addr))
}

// initMessaging инициализирует NATS publisher и outbox poller.
func (c *Container) initMessaging() error {
	publisher, err := natsinfra.Connect(c.config.NATS.URL, c.config.NATS.SubjectPrefix)
	if err != nil {
		return err
	}
	c.publisher = publisher
	return nil
}

// initRepositories инициализирует репозитории.
func (c *Container) initRepositories() {
	c.userRepo = postgres.NewUserRepository(c.pool)
	c.vehicleRepo = postgres.NewVehicleRepository(c.pool)
	c.sessionRepo = postgres.NewSessionRepository(c.pool)
	c.samanRepo = postgres.NewSamanRepository(c.pool)
	c.txRepo = postgres.NewTransactionRepository(c.pool)
	c.authorityRepo = postgres.NewAuthorityRepository(c.pool)
	c.orderRepo = postgres.NewPaymentOrderRepository(c.pool)
	c.outboxRepo = postgres.NewOutboxRepository(c.pool)

	// Unit of Work
	c.uow = postgres.NewUnitOfWork(c.pool)
}

// initServices инициализирует инфраструктурные сервисы.
func (c *Container) initServices() {
	c.hasher = auth.NewBcryptHasher(c.config.Auth.BcryptCost)
	c.tokens = auth.NewJWTService(
		c.config.Auth.JWTSecret,
		c.config.Auth.JWTIssuer,
		c.config.Auth.AccessTokenExpiry,
	)

	c.gateway = paypal.NewClient(paypal.Config{
		BaseURL:      c.config.PayPal.BaseURL,
		ClientID:     c.config.PayPal.ClientID,
		ClientSecret: c.config.PayPal.ClientSecret,
		ReturnURL:    c.config.PayPal.ReturnURL,
		CancelURL:    c.config.PayPal.CancelURL,
		Timeout:      c.config.PayPal.Timeout,
	})

	// Каналы уведомлений собираются из включённых провайдеров.
	var sms notify.SMSSender
	if c.config.Twilio.Enabled {
		sms = notify.NewTwilioSMS(notify.TwilioConfig{
			AccountSID: c.config.Twilio.AccountSID,
			AuthToken:  c.config.Twilio.AuthToken,
			From:       c.config.Twilio.From,
			Timeout:    c.config.Twilio.Timeout,
		})
	}
	var email notify.EmailSender
	if c.config.SMTP.Enabled {
		email = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     c.config.SMTP.Host,
			Port:     c.config.SMTP.Port,
			Username: c.config.SMTP.Username,
			Password: c.config.SMTP.Password,
			From:     c.config.SMTP.From,
		})
	}
	c.notifier = notify.NewNotifier(sms, email, c.logger)

	c.poller = natsinfra.NewOutboxPoller(
		c.outboxRepo,
		c.uow,
		c.publisher,
		c.logger,
		c.config.NATS.OutboxInterval,
		c.config.NATS.OutboxBatchSize,
	)
}

// initUseCases инициализирует use cases.
func (c *Container) initUseCases() {
	// User
	c.registerUserUC = user.NewRegisterUserUseCase(c.userRepo, c.hasher, c.uow)
	c.authenticateUC = user.NewAuthenticateUseCase(c.userRepo, c.hasher, c.tokens)
	c.getUserUC = user.NewGetUserUseCase(c.userRepo)
	c.listUsersUC = user.NewListUsersUseCase(c.userRepo)
	c.updateProfileUC = user.NewUpdateProfileUseCase(c.userRepo, c.uow)
	c.assignRoleUC = user.NewAssignRoleUseCase(c.userRepo, c.uow)
	c.setDefaultVehicleUC = user.NewSetDefaultVehicleUseCase(c.userRepo, c.vehicleRepo, c.uow)

	// Vehicle
	c.registerVehicleUC = vehicle.NewRegisterVehicleUseCase(c.userRepo, c.vehicleRepo, c.outboxRepo, c.uow)
	c.unlinkVehicleUC = vehicle.NewUnlinkVehicleUseCase(c.userRepo, c.vehicleRepo, c.outboxRepo, c.uow)
	c.listVehiclesUC = vehicle.NewListVehiclesUseCase(c.vehicleRepo)
	c.lookupVehicleUC = vehicle.NewLookupVehicleUseCase(c.vehicleRepo, c.sessionRepo, c.enforcementCache)

	// Wallet
	c.initiateTopUpUC = wallet.NewInitiateTopUpUseCase(c.userRepo, c.orderRepo, c.gateway, c.outboxRepo, c.uow)
	c.captureTopUpUC = wallet.NewCaptureTopUpUseCase(c.userRepo, c.txRepo, c.orderRepo, c.gateway, c.outboxRepo, c.uow)
	c.getWalletUC = wallet.NewGetWalletUseCase(c.userRepo)
	c.listTransactionsUC = wallet.NewListTransactionsUseCase(c.userRepo, c.txRepo)

	// Parking
	c.startSessionUC = parking.NewStartSessionUseCase(
		c.userRepo, c.vehicleRepo, c.sessionRepo, c.txRepo, c.authorityRepo,
		c.outboxRepo, c.enforcementCache, c.uow,
	)
	c.extendSessionUC = parking.NewExtendSessionUseCase(
		c.userRepo, c.vehicleRepo, c.sessionRepo, c.txRepo, c.authorityRepo,
		c.outboxRepo, c.enforcementCache, c.uow,
	)
	c.terminateSessionUC = parking.NewTerminateSessionUseCase(
		c.vehicleRepo, c.sessionRepo, c.outboxRepo, c.enforcementCache, c.uow,
	)
	c.getSessionUC = parking.NewGetSessionUseCase(c.sessionRepo)
	c.listSessionsUC = parking.NewListSessionsUseCase(c.sessionRepo)
	c.expireSessionsUC = parking.NewExpireSessionsUseCase(c.sessionRepo, c.outboxRepo, c.uow)

	// Saman
	c.issueSamanUC = saman.NewIssueSamanUseCase(
		c.userRepo, c.vehicleRepo, c.samanRepo, c.authorityRepo,
		c.outboxRepo, c.notifier, c.uow,
	)
	c.paySamanUC = saman.NewPaySamanUseCase(
		c.userRepo, c.vehicleRepo, c.samanRepo, c.txRepo, c.authorityRepo,
		c.outboxRepo, c.uow,
	)
	c.getSamanUC = saman.NewGetSamanUseCase(c.samanRepo)
	c.fineHistoryUC = saman.NewFineHistoryUseCase(c.vehicleRepo, c.samanRepo)

	// Authority
	c.createAuthorityUC = authority.NewCreateAuthorityUseCase(c.userRepo, c.authorityRepo, c.uow)
	c.updateAuthorityUC = authority.NewUpdateAuthorityUseCase(c.userRepo, c.authorityRepo, c.uow)
	c.resetIncomeUC = authority.NewResetIncomeUseCase(c.userRepo, c.authorityRepo, c.uow)
	c.deleteAuthorityUC = authority.NewDeleteAuthorityUseCase(c.userRepo, c.authorityRepo, c.uow)
	c.getAuthorityUC = authority.NewGetAuthorityUseCase(c.authorityRepo)
	c.listAuthoritiesUC = authority.NewListAuthoritiesUseCase(c.authorityRepo)
	c.dailyIncomeUC = authority.NewDailyIncomeUseCase(c.authorityRepo, c.txRepo)
	c.incomeReportUC = authority.NewIncomeReportUseCase(c.txRepo)
}

// initHTTPServer инициализирует HTTP сервер.
func (c *Container) initHTTPServer() {
	routerConfig := &http.RouterConfig{
		Logger:         c.logger,
		Pool:           c.pool,
		Redis:          c.redisClient,
		Version:        c.config.App.Version,
		BuildTime:      c.config.App.BuildTime,
		Environment:    c.config.App.Environment,
		AllowedOrigins: c.config.CORS.AllowedOrigins,
		TokenValidator: c.tokens.Validate,
	}

	router := http.NewRouterBuilder(routerConfig).
		WithAuthUseCases(&http.AuthUseCases{
			RegisterUser: c.registerUserUC,
			Authenticate: c.authenticateUC,
		}).
		WithUserUseCases(&http.UserUseCases{
			GetUser:           c.getUserUC,
			ListUsers:         c.listUsersUC,
			UpdateProfile:     c.updateProfileUC,
			AssignRole:        c.assignRoleUC,
			SetDefaultVehicle: c.setDefaultVehicleUC,
		}).
		WithVehicleUseCases(&http.VehicleUseCases{
			RegisterVehicle: c.registerVehicleUC,
			UnlinkVehicle:   c.unlinkVehicleUC,
			ListVehicles:    c.listVehiclesUC,
			LookupVehicle:   c.lookupVehicleUC,
		}).
		WithWalletUseCases(&http.WalletUseCases{
			InitiateTopUp:    c.initiateTopUpUC,
			CaptureTopUp:     c.captureTopUpUC,
			GetWallet:        c.getWalletUC,
			ListTransactions: c.listTransactionsUC,
		}).
		WithParkingUseCases(&http.ParkingUseCases{
			StartSession:     c.startSessionUC,
			ExtendSession:    c.extendSessionUC,
			TerminateSession: c.terminateSessionUC,
			GetSession:       c.getSessionUC,
			ListSessions:     c.listSessionsUC,
		}).
		WithSamanUseCases(&http.SamanUseCases{
			IssueSaman:  c.issueSamanUC,
			PaySaman:    c.paySamanUC,
			GetSaman:    c.getSamanUC,
			FineHistory: c.fineHistoryUC,
		}).
		WithAuthorityUseCases(&http.AuthorityUseCases{
			CreateAuthority: c.createAuthorityUC,
			UpdateAuthority: c.updateAuthorityUC,
			ResetIncome:     c.resetIncomeUC,
			DeleteAuthority: c.deleteAuthorityUC,
			GetAuthority:    c.getAuthorityUC,
			ListAuthorities: c.listAuthoritiesUC,
			DailyIncome:     c.dailyIncomeUC,
			IncomeReport:    c.incomeReportUC,
		}).
		Build()

	serverConfig := &http.ServerConfig{
		Host:            c.config.Server.Host,
		Port:            fmt.Sprintf("%d", c.config.Server.Port),
		ReadTimeout:     c.config.Server.ReadTimeout,
		WriteTimeout:    c.config.Server.WriteTimeout,
		IdleTimeout:     c.config.Server.IdleTimeout,
		ShutdownTimeout: c.config.Server.ShutdownTimeout,
		Logger:          c.logger,
	}

	c.httpServer = http.NewServer(serverConfig, router)
}

// ============================================
// Background Workers
// ============================================

// Интервал между проходами фонового закрытия просроченных сессий.
const expireSweepInterval = time.Minute

// StartWorkers запускает фоновые процессы: outbox poller и
// закрытие просроченных сессий. Останавливаются отменой ctx.
func (c *Container) StartWorkers(ctx context.Context) {
	c.workersWG.Add(1)
	go func() {
		defer c.workersWG.Done()
		c.poller.Run(ctx)
	}()

	c.workersWG.Add(1)
	go func() {
		defer c.workersWG.Done()
		ticker := time.NewTicker(expireSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				expired, err := c.expireSessionsUC.Execute(ctx, c.config.NATS.OutboxBatchSize)
				if err != nil {
					c.logger.Error("session expiry sweep failed", slog.String("error", err.Error()))
					continue
				}
				if expired > 0 {
					c.logger.Info("expired parking sessions closed", slog.Int("count", expired))
				}
			}
		}
	}()
}

// ============================================
// Getters
// ============================================

// Config возвращает конфигурацию.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger возвращает логгер.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Pool возвращает пул соединений к БД.
func (c *Container) Pool() *pgxpool.Pool {
	return c.pool
}

// HTTPServer возвращает HTTP сервер.
func (c *Container) HTTPServer() *http.Server {
	return c.httpServer
}

// ============================================
// Repository Getters
// ============================================

// UserRepository возвращает репозиторий пользователей.
func (c *Container) UserRepository() ports.UserRepository {
	return c.userRepo
}

// VehicleRepository возвращает репозиторий автомобилей.
func (c *Container) VehicleRepository() ports.VehicleRepository {
	return c.vehicleRepo
}

// SamanRepository возвращает репозиторий штрафов.
func (c *Container) SamanRepository() ports.SamanRepository {
	return c.samanRepo
}

// TransactionRepository возвращает репозиторий транзакций.
func (c *Container) TransactionRepository() ports.TransactionRepository {
	return c.txRepo
}

// UnitOfWork возвращает Unit of Work.
func (c *Container) UnitOfWork() ports.UnitOfWork {
	return c.uow
}

// PasswordHasher возвращает хешер паролей.
func (c *Container) PasswordHasher() ports.PasswordHasher {
	return c.hasher
}

// ============================================
// Use Case Getters
// ============================================

// RegisterUserUseCase возвращает use case регистрации пользователя.
func (c *Container) RegisterUserUseCase() *user.RegisterUserUseCase {
	return c.registerUserUC
}

// AssignRoleUseCase возвращает use case назначения роли.
func (c *Container) AssignRoleUseCase() *user.AssignRoleUseCase {
	return c.assignRoleUC
}

// ExpireSessionsUseCase возвращает use case закрытия просроченных сессий.
func (c *Container) ExpireSessionsUseCase() *parking.ExpireSessionsUseCase {
	return c.expireSessionsUC
}

// OutboxPoller возвращает поллер transactional outbox.
func (c *Container) OutboxPoller() *natsinfra.OutboxPoller {
	return c.poller
}

// ============================================
// Shutdown
// ============================================

// Shutdown выполняет graceful shutdown всех компонентов.
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	var errs []error

	// 1. HTTP Server
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	// 2. Background workers (должны увидеть отмену своего ctx)
	workersDone := make(chan struct{})
	go func() {
		c.workersWG.Wait()
		close(workersDone)
	}()
	select {
	case <-workersDone:
	case <-ctx.Done():
		c.logger.Warn("Background workers stop timeout")
	}

	// 3. NATS
	if c.publisher != nil {
		c.publisher.Close()
		c.logger.Info("NATS connection closed")
	}

	// 4. Redis
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	// 5. Database (даём время на завершение транзакций)
	if c.pool != nil {
		done := make(chan struct{})
		go func() {
			c.pool.Close()
			close(done)
		}()

		select {
		case <-done:
			c.logger.Info("Database connection closed")
		case <-ctx.Done():
			c.logger.Warn("Database close timeout")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	c.logger.Info("Container shutdown complete")
	return nil
}

// ============================================
// Run
// ============================================

// Run запускает приложение и ожидает сигнал завершения.
func (c *Container) Run() error {
	c.logger.Info("Starting ParkWallet API Server",
		slog.String("version", c.config.App.Version),
		slog.String("environment", c.config.App.Environment),
		slog.String("address", c.config.Server.Address()),
	)

	return c.httpServer.Run()
}

// ============================================
// Builder Pattern (Alternative)
// ============================================

// ContainerBuilder - builder для создания контейнера с кастомными компонентами.
type ContainerBuilder struct {
	cfg              *config.Config
	logger           *slog.Logger
	pool             *pgxpool.Pool
	gateway          ports.PaymentGateway
	notifier         ports.Notifier
	enforcementCache ports.EnforcementCache
	publisher        *natsinfra.Publisher
}

// NewBuilder создаёт новый builder.
func NewBuilder(cfg *config.Config) *ContainerBuilder {
	return &ContainerBuilder{
		cfg: cfg,
	}
}

// WithLogger устанавливает кастомный логгер.
func (b *ContainerBuilder) WithLogger(logger *slog.Logger) *ContainerBuilder {
	b.logger = logger
	return b
}

// WithPool устанавливает готовый пул соединений.
func (b *ContainerBuilder) WithPool(pool *pgxpool.Pool) *ContainerBuilder {
	b.pool = pool
	return b
}

// WithPaymentGateway устанавливает кастомный платёжный шлюз.
// В тестах сюда передаётся фейковый PayPal.
func (b *ContainerBuilder) WithPaymentGateway(gw ports.PaymentGateway) *ContainerBuilder {
	b.gateway = gw
	return b
}

// WithNotifier устанавливает кастомный notifier.
func (b *ContainerBuilder) WithNotifier(n ports.Notifier) *ContainerBuilder {
	b.notifier = n
	return b
}

// WithEnforcementCache устанавливает кастомный кэш.
func (b *ContainerBuilder) WithEnforcementCache(cache ports.EnforcementCache) *ContainerBuilder {
	b.enforcementCache = cache
	return b
}

// WithPublisher устанавливает готовый NATS publisher.
func (b *ContainerBuilder) WithPublisher(p *natsinfra.Publisher) *ContainerBuilder {
	b.publisher = p
	return b
}

// Build создаёт контейнер.
func (b *ContainerBuilder) Build(ctx context.Context) (*Container, error) {
	c := New(b.cfg)

	// Use provided or initialize
	if b.logger != nil {
		c.logger = b.logger
	} else {
		c.logger = c.initLogger()
	}

	if b.pool != nil {
		c.pool = b.pool
	} else {
		if err := c.initDatabase(ctx); err != nil {
			return nil, err
		}
	}

	c.initRedis()

	if b.publisher != nil {
		c.publisher = b.publisher
	} else {
		if err := c.initMessaging(); err != nil {
			return nil, err
		}
	}

	c.initRepositories()
	c.initServices()

	// Кастомные реализации поверх дефолтных
	if b.gateway != nil {
		c.gateway = b.gateway
	}
	if b.notifier != nil {
		c.notifier = b.notifier
	}
	if b.enforcementCache != nil {
		c.enforcementCache = b.enforcementCache
	}

	c.initUseCases()
	c.initHTTPServer()

	return c, nil
}

// ============================================
// Health Check
// ============================================

// HealthStatus - статус здоровья приложения.
type HealthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  time.Duration     `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

// Health возвращает статус здоровья приложения.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:  "healthy",
		Version: c.config.App.Version,
		Checks:  make(map[string]string),
	}

	// Database check
	if err := c.pool.Ping(ctx); err != nil {
		status.Status = "unhealthy"
		status.Checks["database"] = "error: " + err.Error()
	} else {
		status.Checks["database"] = "ok"
	}

	// Redis check (кэш не валит статус, но виден в отчёте)
	if c.redisClient != nil {
		if err := c.redisClient.Ping(ctx).Err(); err != nil {
			status.Checks["redis"] = "error: " + err.Error()
		} else {
			status.Checks["redis"] = "ok"
		}
	}

	return status
}
