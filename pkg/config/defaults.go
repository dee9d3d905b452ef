package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "slotify"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultDefaultOpenTime         = "09:00"
	DefaultDefaultCloseTime        = "17:00"
	DefaultDefaultSlotIncrementMin = 15
	DefaultDefaultDurationMin      = 60
	DefaultBookingLockTTL          = 10 * time.Second

	// HoursEnforcementReject hard-rejects bookings outside business hours;
	// HoursEnforcementWarn logs the violation and lets the booking through
	// (for staff overrides).
	HoursEnforcementReject = "reject"
	HoursEnforcementWarn   = "warn"
)
