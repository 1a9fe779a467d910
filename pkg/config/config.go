package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"taskhire/pkg/client"
	"taskhire/pkg/logger"

	"github.com/joho/godotenv"
)

const minJWTSecretLength = 32

var (
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
)

type Config struct {
	Environment string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port      string
	LogLevel  string
	LogFormat string

	JWTSecret string
	JWTIssuer string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	NotificationTransport string
	NotificationTopic     string
	NotificationDLQTopic  string
	NotificationGroupID   string
	NotificationFeedLimit int

	DispatcherWorkers     int
	DispatcherQueueSize   int
	DispatcherTimeout     time.Duration
	DispatcherMaxAttempts int
	DispatcherBackoff     time.Duration

	Log    *logger.Logger
	Client *client.Client
}

// Load reads .env (when present) and the process environment, validates the
// result and exits on invalid configuration.
func Load(serviceName string) *Config {
	envFileErr := godotenv.Load()

	cfg := FromEnv()
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: !cfg.IsProduction(),
		Service:   serviceName,
	})
	cfg.Client = client.NewClient()

	if envFileErr != nil && !errors.Is(envFileErr, fs.ErrNotExist) {
		cfg.Log.Warn("Failed to load .env file", "error", envFileErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config from environment variables and defaults without
// validating it or creating collaborators.
func FromEnv() *Config {
	return &Config{
		Environment: strings.ToLower(getEnvStr(EnvEnvironment, DefaultEnvironment)),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),
		JWTIssuer: getEnvStr(EnvJWTIssuer, DefaultJWTIssuer),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		NotificationTransport: strings.ToLower(getEnvStr(EnvNotificationTransport, DefaultNotificationTransport)),
		NotificationTopic:     getEnvStr(EnvNotificationTopic, DefaultNotificationTopic),
		NotificationDLQTopic:  getEnvStr(EnvNotificationDLQTopic, DefaultNotificationDLQTopic),
		NotificationGroupID:   getEnvStr(EnvNotificationGroupID, DefaultNotificationGroupID),
		NotificationFeedLimit: getEnvNum(EnvNotificationFeedLimit, DefaultNotificationFeedLimit),

		DispatcherWorkers:     getEnvNum(EnvDispatcherWorkers, DefaultDispatcherWorkers),
		DispatcherQueueSize:   getEnvNum(EnvDispatcherQueueSize, DefaultDispatcherQueueSize),
		DispatcherTimeout:     getEnvDuration(EnvDispatcherTimeout, DefaultDispatcherTimeout),
		DispatcherMaxAttempts: getEnvNum(EnvDispatcherMaxAttempts, DefaultDispatcherMaxAttempts),
		DispatcherBackoff:     getEnvDuration(EnvDispatcherBackoff, DefaultDispatcherBackoff),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) IsProduction() bool {
	return cfg.Environment == EnvironmentProduction
}

func (cfg *Config) Validate() error {
	var errs []string

	if cfg.Environment != EnvironmentDevelopment && cfg.Environment != EnvironmentProduction {
		errs = append(errs, fmt.Sprintf("Environment must be one of [development, production], got: %s", cfg.Environment))
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !mongoURIRegex.MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"DispatcherTimeout", cfg.DispatcherTimeout},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}
	if cfg.DispatcherBackoff < 0 {
		errs = append(errs, fmt.Sprintf("DispatcherBackoff cannot be negative, got: %s", cfg.DispatcherBackoff))
	}

	positiveInts := []struct {
		name  string
		value int
	}{
		{"RateLimitRequests", cfg.RateLimitRequests},
		{"MaxRequestSize", cfg.MaxRequestSize},
		{"NotificationFeedLimit", cfg.NotificationFeedLimit},
		{"DispatcherWorkers", cfg.DispatcherWorkers},
		{"DispatcherQueueSize", cfg.DispatcherQueueSize},
		{"DispatcherMaxAttempts", cfg.DispatcherMaxAttempts},
	}
	for _, n := range positiveInts {
		if n.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %d", n.name, n.value))
		}
	}

	switch cfg.NotificationTransport {
	case TransportDirect:
	case TransportKafka:
		if cfg.NotificationTopic == "" {
			errs = append(errs, "NotificationTopic cannot be empty when transport is kafka")
		}
	default:
		errs = append(errs, fmt.Sprintf("NotificationTransport must be one of [direct, kafka], got: %s", cfg.NotificationTransport))
	}

	return joinValidation(errs)
}

// ValidateAuth checks the settings needed by services that verify bearer
// tokens. Jobs that never authenticate requests skip it.
func (cfg *Config) ValidateAuth() error {
	var errs []string
	if len(cfg.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Sprintf("JWTSecret must be at least %d characters", minJWTSecretLength))
	}
	if cfg.JWTIssuer == "" {
		errs = append(errs, "JWTIssuer cannot be empty")
	}
	return joinValidation(errs)
}

func joinValidation(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	errMsg := "Configuration validation failed:\n"
	for i, err := range errs {
		errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
	}
	return fmt.Errorf("%s", errMsg)
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"environment", cfg.Environment,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_issuer", cfg.JWTIssuer,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"notification_transport", cfg.NotificationTransport,
		"notification_topic", cfg.NotificationTopic,
		"notification_feed_limit", cfg.NotificationFeedLimit,
		"dispatcher_workers", cfg.DispatcherWorkers,
		"dispatcher_queue_size", cfg.DispatcherQueueSize,
		"dispatcher_timeout", cfg.DispatcherTimeout,
		"dispatcher_max_attempts", cfg.DispatcherMaxAttempts,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return DefaultPaginationLimit
	}
	return min(limit, MaxPaginationLimit)
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
