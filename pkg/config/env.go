package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvDailyTourLimit = "DAILY_TOUR_LIMIT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"

	EnvDefaultPageSize = "DEFAULT_PAGE_SIZE"
	EnvMaxPageSize     = "MAX_PAGE_SIZE"
	EnvMaxPage         = "MAX_PAGE"

	EnvRateLimitRPS   = "RATE_LIMIT_RPS"
	EnvRateLimitBurst = "RATE_LIMIT_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_TOPIC"
)
