package config

import "time"

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultDailyTourLimit = 3
	DefaultIdempotencyTTL = 24 * time.Hour

	DefaultDefaultPageSize = 20
	DefaultMaxPageSize     = 100
	DefaultMaxPage         = 1000

	DefaultRateLimitRPS   = 50.0
	DefaultRateLimitBurst = 100

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKafkaTopic = "tour-events"
)
