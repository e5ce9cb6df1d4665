// Package bootstrap opens the connections shared by the server and the scheduler.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segyhp/debt-tracker/internal/cache"
	"github.com/segyhp/debt-tracker/internal/config"
	"github.com/segyhp/debt-tracker/internal/notifier"
	"github.com/segyhp/debt-tracker/internal/repository"
	"github.com/segyhp/debt-tracker/internal/whatsapp"
	"github.com/segyhp/debt-tracker/pkg/clock"

	"go.uber.org/zap"
)

const redisPingTimeout = 3 * time.Second

// Repositories bundles every postgres-backed repository.
type Repositories struct {
	Users         repository.UserRepository
	Debtors       repository.DebtorRepository
	Debts         repository.DebtRepository
	Payments      repository.PaymentRepository
	Collaterals   repository.CollateralRepository
	Notifications repository.NotificationRepository
}

func InitDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

// InitRedis returns a connected client, or nil when redis does not answer.
// Callers fall back to cache.Noop in that case.
func InitRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, caching and locking disabled", zap.String("addr", cfg.RedisAddr()), zap.Error(err))
		_ = client.Close()
		return nil
	}

	return client
}

// NewCache wraps client, or returns a no-op cache when client is nil.
func NewCache(client *redis.Client) interface {
	cache.Cache
	cache.Locker
} {
	if client == nil {
		return cache.Noop{}
	}
	return cache.NewRedisCache(client)
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:         repository.NewUserRepository(db),
		Debtors:       repository.NewDebtorRepository(db),
		Debts:         repository.NewDebtRepository(db),
		Payments:      repository.NewPaymentRepository(db),
		Collaterals:   repository.NewCollateralRepository(db),
		Notifications: repository.NewNotificationRepository(db),
	}
}

// NewDispatcher builds the WhatsApp client and the dispatcher on top of repos.
func NewDispatcher(cfg *config.Config, repos *Repositories, clk clock.Clock, logger *zap.Logger) (*notifier.Dispatcher, error) {
	client, err := whatsapp.NewClient(cfg.WhatsApp, logger)
	if err != nil {
		return nil, err
	}

	return notifier.NewDispatcher(repos.Debts, repos.Payments, repos.Notifications, repos.Users, client, clk, cfg, logger), nil
}
