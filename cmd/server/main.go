package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/app"
	"github.com/Freeeeeet/tutoring_admin/internal/config"
	"github.com/Freeeeeet/tutoring_admin/internal/controller"
	httpserver "github.com/Freeeeeet/tutoring_admin/internal/http-server"
	"github.com/Freeeeeet/tutoring_admin/internal/repository"
	"github.com/Freeeeeet/tutoring_admin/internal/service"
	"github.com/Freeeeeet/tutoring_admin/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tutoring admin API",
		zap.String("environment", cfg.Environment),
		zap.String("timezone", cfg.Timezone))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := app.NewPool(ctx, cfg.DBDSN, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := app.Migrate(ctx, pool, migrations.FS, logger); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	stores := service.NewStores(repository.NewRepositories(pool))
	tx := service.NewTransactor(repository.NewTxManager(pool))
	loc := cfg.Location()

	services := httpserver.Services{
		Accounts:    service.NewAccountService(stores, logger),
		Courses:     service.NewCourseService(stores, tx, loc, logger),
		Sessions:    service.NewSessionService(stores, logger),
		Pricing:     service.NewPricingService(stores, logger),
		Invoices:    service.NewInvoiceService(stores, tx, logger),
		Enrollments: service.NewEnrollmentService(stores, logger),
		Imports:     service.NewImportService(tx, logger),
	}

	if cfg.Telegram.Token != "" {
		go runBot(ctx, cfg.Telegram.Token, services, loc, logger)
	} else {
		logger.Info("TELEGRAM_TOKEN is empty, bot is disabled")
	}

	server := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      httpserver.NewRouter(logger, services, cfg.HTTPServer.Timeout),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		if err != nil {
			logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Shutdown finished, server stopped")
}

// runBot запускает long polling бота до отмены ctx
func runBot(ctx context.Context, token string, services httpserver.Services, loc *time.Location, logger *zap.Logger) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		logger.Error("Failed to create bot", zap.Error(err))
		return
	}

	botController := controller.NewBotController(b, services.Accounts, services.Sessions, loc, logger.Named("bot"))
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Bot started without commands menu", zap.Error(err))
	}

	if err := botController.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
	}
}
