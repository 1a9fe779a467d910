package config

const (
	EnvEnvironment = "APP_ENV"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTIssuer = "JWT_ISSUER"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvNotificationTransport = "NOTIFICATION_TRANSPORT"
	EnvNotificationTopic     = "NOTIFICATION_TOPIC"
	EnvNotificationDLQTopic  = "NOTIFICATION_DLQ_TOPIC"
	EnvNotificationGroupID   = "NOTIFICATION_GROUP_ID"
	EnvNotificationFeedLimit = "NOTIFICATION_FEED_LIMIT"

	EnvDispatcherWorkers     = "DISPATCHER_WORKERS"
	EnvDispatcherQueueSize   = "DISPATCHER_QUEUE_SIZE"
	EnvDispatcherTimeout     = "DISPATCHER_TIMEOUT"
	EnvDispatcherMaxAttempts = "DISPATCHER_MAX_ATTEMPTS"
	EnvDispatcherBackoff     = "DISPATCHER_BACKOFF"
)
