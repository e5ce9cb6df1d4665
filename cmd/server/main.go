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

	"github.com/segyhp/debt-tracker/internal/bootstrap"
	"github.com/segyhp/debt-tracker/internal/config"
	"github.com/segyhp/debt-tracker/internal/handler"
	"github.com/segyhp/debt-tracker/internal/service"
	"github.com/segyhp/debt-tracker/internal/storage"
	"github.com/segyhp/debt-tracker/pkg/clock"
	"github.com/segyhp/debt-tracker/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	// Initialize database
	db, err := bootstrap.InitDB(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	redisClient := bootstrap.InitRedis(cfg, zapLogger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	appCache := bootstrap.NewCache(redisClient)

	files, err := storage.NewDiskStore(cfg.Storage.UploadDir, cfg.Storage.UploadMaxBytes)
	if err != nil {
		zapLogger.Fatal("Failed to initialize upload storage", zap.Error(err))
	}

	clk := clock.New()
	repos := bootstrap.NewRepositories(db)

	dispatcher, err := bootstrap.NewDispatcher(cfg, repos, clk, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize WhatsApp client", zap.Error(err))
	}

	// Initialize services
	authService := service.NewAuthService(repos.Users, cfg.Auth, clk, zapLogger)
	debtorService := service.NewDebtorService(repos.Debtors, appCache, clk, zapLogger)
	debtService := service.NewDebtService(repos.Debts, repos.Debtors, repos.Payments, repos.Collaterals, appCache, clk, zapLogger)
	paymentService := service.NewPaymentService(repos.Payments, repos.Debts, appCache, clk, zapLogger)
	collateralService := service.NewCollateralService(repos.Collaterals, repos.Debts, files, clk, zapLogger)
	notificationService := service.NewNotificationService(repos.Notifications, dispatcher)
	dashboardService := service.NewDashboardService(repos.Debtors, repos.Debts, repos.Payments, appCache, cfg.Cache.DashboardTTL, clk, zapLogger)
	reportService := service.NewReportService(repos.Users, repos.Debts, repos.Payments, clk, zapLogger)

	// Setup routes
	router := handler.NewRouter(handler.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Debtor:       handler.NewDebtorHandler(debtorService),
		Debt:         handler.NewDebtHandler(debtService),
		Payment:      handler.NewPaymentHandler(paymentService),
		Collateral:   handler.NewCollateralHandler(collateralService, cfg.Storage.UploadMaxBytes),
		Notification: handler.NewNotificationHandler(notificationService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Report:       handler.NewReportHandler(reportService),
		Health:       handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout),
	}, []byte(cfg.Auth.JWTSecret), zapLogger)

	// Start server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}
