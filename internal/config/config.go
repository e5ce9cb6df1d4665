package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server       ServerConfig       `mapstructure:",squash"`
	Database     DatabaseConfig     `mapstructure:",squash"`
	Redis        RedisConfig        `mapstructure:",squash"`
	Scheduler    SchedulerConfig    `mapstructure:",squash"`
	WhatsApp     WhatsAppConfig     `mapstructure:",squash"`
	Notification NotificationConfig `mapstructure:",squash"`
	Auth         AuthConfig         `mapstructure:",squash"`
	Storage      StorageConfig      `mapstructure:",squash"`
	Cache        CacheConfig        `mapstructure:",squash"`
	Logging      LoggingConfig      `mapstructure:",squash"`
	Health       HealthConfig       `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	NotifyCron string        `mapstructure:"NOTIFY_CRON"`
	Timezone   string        `mapstructure:"SCHEDULER_TIMEZONE"`
	LockTTL    time.Duration `mapstructure:"SCHEDULER_LOCK_TTL"`
}

type WhatsAppConfig struct {
	APIURL        string        `mapstructure:"WHATSAPP_API_URL"`
	Timeout       time.Duration `mapstructure:"WHATSAPP_TIMEOUT"`
	MaxAttempts   int           `mapstructure:"WHATSAPP_MAX_ATTEMPTS"`
	BackoffStep   time.Duration `mapstructure:"WHATSAPP_BACKOFF_STEP"`
	CountryPrefix string        `mapstructure:"WHATSAPP_COUNTRY_PREFIX"`
	CAFile        string        `mapstructure:"WHATSAPP_CA_FILE"`
}

type NotificationConfig struct {
	OverduePeriodicityDays int           `mapstructure:"NOTIFY_OVERDUE_PERIODICITY_DAYS"`
	DebtDelay              time.Duration `mapstructure:"NOTIFY_DEBT_DELAY"`
	SummaryDelay           time.Duration `mapstructure:"NOTIFY_SUMMARY_DELAY"`
	SendSummary            bool          `mapstructure:"NOTIFY_SEND_SUMMARY"`
	ClosingTag             string        `mapstructure:"NOTIFY_CLOSING_TAG"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"JWT_SECRET"`
	TokenTTL  time.Duration `mapstructure:"JWT_TTL"`
}

type StorageConfig struct {
	UploadDir      string `mapstructure:"UPLOAD_DIR"`
	UploadMaxBytes int64  `mapstructure:"UPLOAD_MAX_BYTES"`
}

type CacheConfig struct {
	DashboardTTL time.Duration `mapstructure:"DASHBOARD_CACHE_TTL"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                     "8080",
	"SERVER_HOST":                     "0.0.0.0",
	"ENV":                             "development",
	"SERVER_READ_TIMEOUT":             "15s",
	"SERVER_WRITE_TIMEOUT":            "30s",
	"DATABASE_URL":                    "",
	"DATABASE_MAX_OPEN_CONNS":         25,
	"DATABASE_MAX_IDLE_CONNS":         5,
	"DATABASE_CONN_MAX_LIFETIME":      "5m",
	"REDIS_HOST":                      "localhost",
	"REDIS_PORT":                      "6379",
	"REDIS_PASSWORD":                  "",
	"REDIS_DB":                        0,
	"NOTIFY_CRON":                     "0 0 9 * * *",
	"SCHEDULER_TIMEZONE":              "Africa/Maputo",
	"SCHEDULER_LOCK_TTL":              "1h",
	"WHATSAPP_API_URL":                "https://wtsapi.duckdns.org/enviar",
	"WHATSAPP_TIMEOUT":                "15s",
	"WHATSAPP_MAX_ATTEMPTS":           3,
	"WHATSAPP_BACKOFF_STEP":           "2s",
	"WHATSAPP_COUNTRY_PREFIX":         "258",
	"WHATSAPP_CA_FILE":                "",
	"NOTIFY_OVERDUE_PERIODICITY_DAYS": 2,
	"NOTIFY_DEBT_DELAY":               "5s",
	"NOTIFY_SUMMARY_DELAY":            "3s",
	"NOTIFY_SEND_SUMMARY":             true,
	"NOTIFY_CLOSING_TAG":              "#DEBTTRACKER",
	"JWT_SECRET":                      "",
	"JWT_TTL":                         "168h",
	"UPLOAD_DIR":                      "./uploads",
	"UPLOAD_MAX_BYTES":                10 << 20,
	"DASHBOARD_CACHE_TTL":             "5m",
	"LOG_LEVEL":                       "info",
	"LOG_FORMAT":                      "json",
	"HEALTH_CHECK_TIMEOUT":            "5s",
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// A missing .env is fine; real environment variables take precedence.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.IsDevelopment() && config.Auth.JWTSecret == "" {
		config.Auth.JWTSecret = "development-secret-change-me"
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be greater than 0")
	}

	if _, err := url.ParseRequestURI(c.WhatsApp.APIURL); err != nil {
		return fmt.Errorf("WHATSAPP_API_URL must be a valid URL: %w", err)
	}

	if c.WhatsApp.MaxAttempts <= 0 {
		return fmt.Errorf("WHATSAPP_MAX_ATTEMPTS must be greater than 0")
	}

	if c.WhatsApp.Timeout <= 0 {
		return fmt.Errorf("WHATSAPP_TIMEOUT must be greater than 0")
	}

	if c.Notification.OverduePeriodicityDays <= 0 {
		return fmt.Errorf("NOTIFY_OVERDUE_PERIODICITY_DAYS must be greater than 0")
	}

	if c.Storage.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be greater than 0")
	}

	// Validate scheduler expression
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Scheduler.NotifyCron); err != nil {
		return fmt.Errorf("NOTIFY_CRON must be a valid cron expression: %w", err)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid timezone: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// RedisAddr returns the redis host:port pair
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, c.Redis.Port)
}

// Location returns the scheduler timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
