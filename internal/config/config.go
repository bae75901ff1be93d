package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// ErrInvalidConfig возвращается при невалидных значениях конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config корневая конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Scheduling    SchedulingConfig    `toml:"scheduling"`
	Redis         RedisConfig         `toml:"redis"`
	Kafka         KafkaConfig         `toml:"kafka"`
	RateLimit     RateLimitConfig     `toml:"rate_limit"`
	TenantService TenantServiceConfig `toml:"tenant_service"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

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
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, sslMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// SchedulingConfig параметры генерации слотов и создания бронирований
type SchedulingConfig struct {
	SlotStepMinutes         int                `toml:"slot_step_minutes"`
	MinBookingNoticeMinutes int                `toml:"min_booking_notice_minutes"`
	AdvanceBookingDays      int                `toml:"advance_booking_days"`
	CreateTimeoutMs         int                `toml:"create_timeout_ms"`
	TxMaxAttempts           int                `toml:"tx_max_attempts"`
	TxBaseBackoffMs         int                `toml:"tx_base_backoff_ms"`
	TxMaxBackoffMs          int                `toml:"tx_max_backoff_ms"`
	DefaultHours            DefaultHoursConfig `toml:"default_hours"`
}

// DefaultHoursConfig окно работы для дней недели без записи в operating_hours
type DefaultHoursConfig struct {
	Enabled bool   `toml:"enabled"`
	Open    string `toml:"open"`
	Close   string `toml:"close"`
}

func (s SchedulingConfig) CreateTimeout() time.Duration {
	return time.Duration(s.CreateTimeoutMs) * time.Millisecond
}

func (s SchedulingConfig) TxBaseBackoff() time.Duration {
	return time.Duration(s.TxBaseBackoffMs) * time.Millisecond
}

func (s SchedulingConfig) TxMaxBackoff() time.Duration {
	return time.Duration(s.TxMaxBackoffMs) * time.Millisecond
}

type RedisConfig struct {
	Enabled         bool   `toml:"enabled"`
	Address         string `toml:"address"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
}

func (r RedisConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

type TenantServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// Load читает TOML-файл, раскрывает ${ENV} ссылки, применяет переопределения
// из переменных окружения SCHEDULING_* и валидирует результат
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := defaults()
	if _, err := toml.Decode(os.ExpandEnv(string(raw)), cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "scheduling_service",
		},
		Scheduling: SchedulingConfig{
			SlotStepMinutes:         30,
			MinBookingNoticeMinutes: 60,
			CreateTimeoutMs:         3000,
			TxMaxAttempts:           3,
			TxBaseBackoffMs:         20,
			TxMaxBackoffMs:          200,
			DefaultHours: DefaultHoursConfig{
				Enabled: true,
				Open:    "08:00",
				Close:   "20:00",
			},
		},
		Redis:     RedisConfig{CacheTTLSeconds: 60},
		Kafka:     KafkaConfig{Topic: "booking-events"},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
		TenantService: TenantServiceConfig{
			Timeout: 5,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCHEDULING_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("SCHEDULING_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("SCHEDULING_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPPort = port
		}
	}
	if v := os.Getenv("SCHEDULING_REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("SCHEDULING_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SCHEDULING_TENANT_SERVICE_URL"); v != "" {
		cfg.TenantService.URL = v
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port=%d", ErrInvalidConfig, c.Server.HTTPPort)
	}

	s := c.Scheduling
	if s.SlotStepMinutes <= 0 || s.SlotStepMinutes > 60 {
		return fmt.Errorf("%w: scheduling.slot_step_minutes must be in (0, 60]", ErrInvalidConfig)
	}
	if s.TxMaxAttempts < 1 {
		return fmt.Errorf("%w: scheduling.tx_max_attempts must be >= 1", ErrInvalidConfig)
	}
	if s.MinBookingNoticeMinutes < 0 || s.AdvanceBookingDays < 0 {
		return fmt.Errorf("%w: scheduling notice/advance values must not be negative", ErrInvalidConfig)
	}
	if s.DefaultHours.Enabled {
		open, err := types.NewTimeStringFromString(s.DefaultHours.Open)
		if err != nil {
			return fmt.Errorf("%w: scheduling.default_hours.open: %v", ErrInvalidConfig, err)
		}
		closeTime, err := types.NewTimeStringFromString(s.DefaultHours.Close)
		if err != nil {
			return fmt.Errorf("%w: scheduling.default_hours.close: %v", ErrInvalidConfig, err)
		}
		if !open.IsBefore(closeTime) {
			return fmt.Errorf("%w: scheduling.default_hours open must be before close", ErrInvalidConfig)
		}
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("%w: redis.address is required when redis is enabled", ErrInvalidConfig)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("%w: kafka.brokers and kafka.topic are required when kafka is enabled", ErrInvalidConfig)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("%w: rate_limit.rps and rate_limit.burst must be positive", ErrInvalidConfig)
	}

	return nil
}
