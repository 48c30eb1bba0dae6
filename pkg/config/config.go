package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tourly/pkg/logger"
)

type Config struct {
	Port string

	DailyTourLimit int
	IdempotencyTTL time.Duration

	DefaultPageSize int
	MaxPageSize     int
	MaxPage         int

	RateLimitRPS   float64
	RateLimitBurst int

	RequestTimeout time.Duration
	MaxRequestSize int64

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		DailyTourLimit: getEnvNum(EnvDailyTourLimit, DefaultDailyTourLimit),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),

		DefaultPageSize: getEnvNum(EnvDefaultPageSize, DefaultDefaultPageSize),
		MaxPageSize:     getEnvNum(EnvMaxPageSize, DefaultMaxPageSize),
		MaxPage:         getEnvNum(EnvMaxPage, DefaultMaxPage),

		RateLimitRPS:   getEnvFloat(EnvRateLimitRPS, DefaultRateLimitRPS),
		RateLimitBurst: getEnvNum(EnvRateLimitBurst, DefaultRateLimitBurst),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: int64(getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize)),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		KafkaBrokers: getEnvList(EnvKafkaBrokers),
		KafkaTopic:   getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    "json",
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}
	if cfg.DailyTourLimit <= 0 {
		problems = append(problems, fmt.Sprintf("DailyTourLimit must be positive, got: %d", cfg.DailyTourLimit))
	}
	if cfg.IdempotencyTTL <= 0 {
		problems = append(problems, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.DefaultPageSize < 1 || cfg.DefaultPageSize > cfg.MaxPageSize {
		problems = append(problems, fmt.Sprintf("DefaultPageSize must be between 1 and MaxPageSize (%d), got: %d", cfg.MaxPageSize, cfg.DefaultPageSize))
	}
	if cfg.MaxPageSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxPageSize must be positive, got: %d", cfg.MaxPageSize))
	}
	if cfg.MaxPage <= 0 {
		problems = append(problems, fmt.Sprintf("MaxPage must be positive, got: %d", cfg.MaxPage))
	}
	if cfg.RateLimitRPS <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitRPS must be positive, got: %g", cfg.RateLimitRPS))
	}
	if cfg.RateLimitBurst <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitBurst must be positive, got: %d", cfg.RateLimitBurst))
	}
	if cfg.RequestTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		problems = append(problems, "KafkaTopic cannot be empty when KafkaBrokers is set")
	}

	if len(problems) > 0 {
		msg := "Configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"daily_tour_limit", cfg.DailyTourLimit,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"default_page_size", cfg.DefaultPageSize,
		"max_page_size", cfg.MaxPageSize,
		"max_page", cfg.MaxPage,
		"rate_limit_rps", cfg.RateLimitRPS,
		"rate_limit_burst", cfg.RateLimitBurst,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"kafka_enabled", len(cfg.KafkaBrokers) > 0,
		"kafka_topic", cfg.KafkaTopic,
	)
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
