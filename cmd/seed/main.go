// Seed создаёт административные аккаунты из конфигурации.
//
// Роль admin назначается только здесь: список seed.admins в конфиге -
// единственный способ получить админа, регистрация всегда даёт role=user.
// Запуск идемпотентен: существующий пользователь получает роль admin,
// пароль и профиль ему не перезаписываются.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/mypark/parkwallet/internal/config"
	"github.com/mypark/parkwallet/internal/domain/entities"
	domainErrors "github.com/mypark/parkwallet/internal/domain/errors"
	"github.com/mypark/parkwallet/internal/infrastructure/auth"
	"github.com/mypark/parkwallet/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("configs", "config")
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	if len(cfg.Seed.Admins) == 0 {
		log.Println("No admin accounts configured under seed.admins, nothing to do")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewConnectionPool(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Database,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  5 * time.Second,
	})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	uow := postgres.NewUnitOfWork(pool)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	for _, admin := range cfg.Seed.Admins {
		if err := seedAdmin(ctx, userRepo, uow, hasher, admin); err != nil {
			log.Fatalf("Failed to seed admin %s: %v", admin.Email, err)
		}
	}

	log.Printf("Seeding complete: %d admin account(s) ensured", len(cfg.Seed.Admins))
}

func seedAdmin(
	ctx context.Context,
	userRepo *postgres.UserRepository,
	uow *postgres.UnitOfWork,
	hasher *auth.BcryptHasher,
	admin config.AdminSeed,
) error {
	return uow.Execute(ctx, func(txCtx context.Context) error {
		existing, err := userRepo.FindByEmail(txCtx, admin.Email)
		switch {
		case err == nil:
			if existing.Role() == entities.RoleAdmin {
				log.Printf("Admin %s already exists, skipping", admin.Email)
				return nil
			}
			if err := existing.AssignRole(entities.RoleAdmin); err != nil {
				return err
			}
			log.Printf("Promoted existing user %s to admin", admin.Email)
			return userRepo.Save(txCtx, existing)

		case errors.Is(err, domainErrors.ErrUserNotFound):
			hash, err := hasher.Hash(admin.Password)
			if err != nil {
				return err
			}
			user, err := entities.NewUser(admin.Name, admin.Email, hash, admin.Phone)
			if err != nil {
				return err
			}
			if err := user.AssignRole(entities.RoleAdmin); err != nil {
				return err
			}
			log.Printf("Created admin account %s", admin.Email)
			return userRepo.Save(txCtx, user)

		default:
			return err
		}
	})
}
