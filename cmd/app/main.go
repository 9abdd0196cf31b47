package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todomvc/internal/config"
	"github.com/BuzzLyutic/todomvc/internal/handler"
	"github.com/BuzzLyutic/todomvc/internal/logging"
	"github.com/BuzzLyutic/todomvc/internal/repo"
	"github.com/BuzzLyutic/todomvc/internal/server"
	"github.com/BuzzLyutic/todomvc/internal/service"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load(config.New())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Подключаем логгер
	logger, err := logging.NewServer(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Подключаем БД (postgres:// или file: для SQLite)
	ctx, cancelOpen := context.WithTimeout(context.Background(), 30*time.Second)
	entries, closeDB, err := repo.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	cancelOpen()
	if err != nil {
		logger.Fatal("Failed to open the Database", zap.Error(err))
	}
	defer closeDB()
	logger.Info("Successfully connected to the Database!")

	h := handler.NewEntryHandler(service.NewEntryService(entries), logger)
	r := server.NewRouter(h, logger, server.Options{StaticDir: cfg.StaticDir})

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
		return
	}
	logger.Info("Server stopped successfully!")
}
