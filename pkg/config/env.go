package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultOpenTime         = "DEFAULT_OPEN_TIME"
	EnvDefaultCloseTime        = "DEFAULT_CLOSE_TIME"
	EnvDefaultSlotIncrementMin = "DEFAULT_SLOT_INCREMENT_MIN"
	EnvDefaultDurationMin      = "DEFAULT_DURATION_MIN"
	EnvHoursEnforcement        = "HOURS_ENFORCEMENT"
	EnvBookingLockTTL          = "BOOKING_LOCK_TTL"
)
