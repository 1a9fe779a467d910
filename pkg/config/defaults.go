package config

import "time"

const (
	DefaultEnvironment = EnvironmentDevelopment

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "taskhire"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultJWTIssuer = "taskhire"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 20
	MaxPaginationLimit     = 100

	DefaultNotificationTransport = TransportDirect
	DefaultNotificationTopic     = "marketplace.notifications"
	DefaultNotificationDLQTopic  = "marketplace.notifications.dlq"
	DefaultNotificationGroupID   = "notifier"
	DefaultNotificationFeedLimit = 50

	DefaultDispatcherWorkers     = 4
	DefaultDispatcherQueueSize   = 256
	DefaultDispatcherTimeout     = 5 * time.Second
	DefaultDispatcherMaxAttempts = 3
	DefaultDispatcherBackoff     = 200 * time.Millisecond
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	TransportDirect = "direct"
	TransportKafka  = "kafka"
)
