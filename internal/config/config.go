package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RecurringService/internal/domain"
	"github.com/m04kA/SMC-RecurringService/pkg/types"
)

// ErrInvalidConfig возвращается при некорректных значениях конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config корневая конфигурация сервиса
type Config struct {
	Server         ServerConfig     `toml:"server"`
	Database       DatabaseConfig   `toml:"database"`
	Logs           LogsConfig       `toml:"logs"`
	Metrics        MetricsConfig    `toml:"metrics"`
	PricingService ServiceConfig    `toml:"pricing_service"`
	Generation     GenerationConfig `toml:"generation"`
	Scheduler      SchedulerConfig  `toml:"scheduler"`
	Redis          RedisConfig      `toml:"redis"`
	Cron           CronConfig       `toml:"cron"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к Postgres
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // пусто = stdout
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ServiceConfig настройки внешнего HTTP сервиса
type ServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// GenerationConfig бизнес-правила генерации бронирований
type GenerationConfig struct {
	ServiceFee            string   `toml:"service_fee"`
	CleanerCommissionRate string   `toml:"cleaner_commission_rate"`
	TeamServiceTypes      []string `toml:"team_service_types"`
	DefaultBookingTime    string   `toml:"default_booking_time"`
	RunTimeoutSeconds     int      `toml:"run_timeout_seconds"`
}

// SchedulerConfig встроенный ежедневный запуск генерации
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Spec     string `toml:"spec"`     // cron выражение, например "0 22 * * *"
	Timezone string `toml:"timezone"` // IANA, например "Africa/Johannesburg"
}

// RedisConfig настройки блокировки запуска
type RedisConfig struct {
	Enabled        bool   `toml:"enabled"`
	Addr           string `toml:"addr"`
	Password       string `toml:"password"`
	DB             int    `toml:"db"`
	LockTTLSeconds int    `toml:"lock_ttl_seconds"`
}

// CronConfig секрет для внешнего планировщика
type CronConfig struct {
	Secret string `toml:"secret"`
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию и переменные окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    300,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "smc-recurring-service",
		},
		PricingService: ServiceConfig{
			Timeout: 5,
		},
		Generation: GenerationConfig{
			ServiceFee:            domain.DefaultServiceFee,
			CleanerCommissionRate: domain.DefaultCleanerCommissionRate,
			TeamServiceTypes:      append([]string(nil), domain.DefaultTeamServiceTypes...),
			DefaultBookingTime:    domain.DefaultBookingTime,
			RunTimeoutSeconds:     domain.DefaultRunTimeoutSeconds,
		},
		Scheduler: SchedulerConfig{
			Spec:     "0 22 * * *",
			Timezone: "UTC",
		},
		Redis: RedisConfig{
			Addr:           "localhost:6379",
			LockTTLSeconds: 900,
		},
	}
}

// applyEnv переопределяет секреты из переменных окружения
func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("CRON_SECRET"); v != "" {
		c.Cron.Secret = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("PRICING_SERVICE_URL"); v != "" {
		c.PricingService.URL = v
	}
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port=%d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
	}
	if c.PricingService.URL == "" {
		return fmt.Errorf("%w: pricing_service.url is required", ErrInvalidConfig)
	}
	if c.PricingService.Timeout <= 0 {
		return fmt.Errorf("%w: pricing_service.timeout must be positive", ErrInvalidConfig)
	}
	if c.Generation.RunTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: generation.run_timeout_seconds must be positive", ErrInvalidConfig)
	}
	if _, err := c.Generation.Rules(); err != nil {
		return err
	}
	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.Spec); err != nil {
			return fmt.Errorf("%w: scheduler.spec: %v", ErrInvalidConfig, err)
		}
		if _, err := c.Scheduler.Location(); err != nil {
			return err
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	return nil
}

// Rules конвертирует секцию [generation] в доменные правила
func (g GenerationConfig) Rules() (domain.GenerationRules, error) {
	fee, err := decimal.NewFromString(g.ServiceFee)
	if err != nil || fee.IsNegative() {
		return domain.GenerationRules{}, fmt.Errorf("%w: generation.service_fee=%q", ErrInvalidConfig, g.ServiceFee)
	}

	rate, err := decimal.NewFromString(g.CleanerCommissionRate)
	if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return domain.GenerationRules{}, fmt.Errorf("%w: generation.cleaner_commission_rate=%q", ErrInvalidConfig, g.CleanerCommissionRate)
	}

	bookingTime, err := types.NewTimeStringFromString(g.DefaultBookingTime)
	if err != nil {
		return domain.GenerationRules{}, fmt.Errorf("%w: generation.default_booking_time: %v", ErrInvalidConfig, err)
	}

	return domain.GenerationRules{
		ServiceFee:            fee,
		CleanerCommissionRate: rate,
		TeamServiceTypes:      g.TeamServiceTypes,
		DefaultBookingTime:    bookingTime,
	}, nil
}

// RunTimeout общий дедлайн одного запуска генерации
func (g GenerationConfig) RunTimeout() time.Duration {
	return time.Duration(g.RunTimeoutSeconds) * time.Second
}

// Location часовой пояс, в котором определяется "последний день месяца"
func (s SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduler.timezone=%q: %v", ErrInvalidConfig, s.Timezone, err)
	}
	return loc, nil
}
