package config

import "time"

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "gameden"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoTransactions = false
	DefaultStoreDriver       = StoreMongo

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRPS   = 5.0
	DefaultRateLimitBurst = 10

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotLockTTL = 45 * time.Second

	DefaultKafkaEnabled          = false
	DefaultKafkaBookingsTopic    = "bookings"
	DefaultKafkaBookingsDLQTopic = "dlq-bookings"
)
