package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/debt-tracker/internal/bootstrap"
	"github.com/segyhp/debt-tracker/internal/cache"
	"github.com/segyhp/debt-tracker/internal/config"
	"github.com/segyhp/debt-tracker/internal/notifier"
	"github.com/segyhp/debt-tracker/pkg/clock"
	"github.com/segyhp/debt-tracker/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const notifyLockKey = "scheduler:notify-cycle"

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

	zapLogger.Info("Starting notification scheduler...")

	db, err := bootstrap.InitDB(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := bootstrap.InitRedis(cfg, zapLogger)
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		zapLogger.Warn("Running without a distributed lock; start a single scheduler instance")
	}
	locker := bootstrap.NewCache(redisClient)

	repos := bootstrap.NewRepositories(db)
	dispatcher, err := bootstrap.NewDispatcher(cfg, repos, clock.New(), zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize WhatsApp client", zap.Error(err))
	}

	// Cancelled on shutdown so a running cycle stops between debts.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cronLogger := cron.PrintfLogger(zap.NewStdLog(zapLogger.Named("cron")))
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.Location()),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	if err := setupCronJobs(ctx, c, cfg, dispatcher, locker, zapLogger); err != nil {
		zapLogger.Fatal("Error scheduling notification job", zap.Error(err))
	}

	c.Start()
	zapLogger.Info("Scheduler started successfully",
		zap.String("cron", cfg.Scheduler.NotifyCron),
		zap.String("timezone", cfg.Scheduler.Timezone),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down scheduler...")
	cancel()
	<-c.Stop().Done()
	zapLogger.Info("Scheduler stopped")
}

func setupCronJobs(ctx context.Context, c *cron.Cron, cfg *config.Config, dispatcher *notifier.Dispatcher, locker cache.Locker, logger *zap.Logger) error {
	_, err := c.AddFunc(cfg.Scheduler.NotifyCron, func() {
		runNotificationCycle(ctx, dispatcher, locker, cfg, logger)
	})
	return err
}

// runNotificationCycle runs one dispatch cycle unless another instance holds the lock.
func runNotificationCycle(ctx context.Context, dispatcher *notifier.Dispatcher, locker cache.Locker, cfg *config.Config, logger *zap.Logger) {
	release, acquired, err := locker.Acquire(ctx, notifyLockKey, cfg.Scheduler.LockTTL)
	if err != nil {
		logger.Error("Failed to acquire scheduler lock", zap.Error(err))
		return
	}
	if !acquired {
		logger.Info("Notification cycle already running elsewhere, skipping")
		return
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to release scheduler lock", zap.Error(err))
		}
	}()

	logger.Info("Running notification cycle...")
	report, err := dispatcher.RunCycle(ctx)
	if err != nil {
		logger.Error("Notification cycle ended early", zap.Error(err))
	}
	if report != nil {
		logger.Info("Notification cycle complete",
			zap.Int("sent", report.Sent),
			zap.Int("failed", report.Failed),
			zap.Int("skipped", report.Skipped),
		)
	}
}
