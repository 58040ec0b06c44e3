package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mypark/parkwallet/internal/config"
	"github.com/mypark/parkwallet/internal/container"
)

func main() {
	// .env удобен в разработке; в production переменные приходят из окружения
	_ = godotenv.Load()

	cfg, err := config.Load(getEnv("PARKWALLET_CONFIG_PATH", "configs"), "config")
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	c := container.New(cfg)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	if err := c.Initialize(initCtx); err != nil {
		log.Fatal("Failed to initialize container: ", err)
	}

	logger := c.Logger()

	// Фоновые процессы: outbox -> NATS и закрытие просроченных сессий.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	c.StartWorkers(workerCtx)

	// Run блокируется до SIGINT/SIGTERM и гасит HTTP сервер сам.
	if err := c.Run(); err != nil {
		logger.Error("Server error", slog.String("error", err.Error()))
	}

	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := c.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
