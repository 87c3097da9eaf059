package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	QueueBackendRedis = "redis"
	QueueBackendSQS   = "sqs"
)

type Config struct {
	Env        string `envconfig:"APP_ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	QueueBackend     string `envconfig:"QUEUE_BACKEND" default:"redis"`
	QueueKey         string `envconfig:"QUEUE_KEY" default:"event-relay:jobs"`
	SQSQueueURL      string `envconfig:"SQS_QUEUE_URL"`
	SQSDeadLetterURL string `envconfig:"SQS_DEAD_LETTER_URL"`

	SessionSecret     string        `envconfig:"SESSION_SECRET"`
	SessionMaxAge     time.Duration `envconfig:"SESSION_MAX_AGE" default:"168h"`
	AdminEmail        string        `envconfig:"ADMIN_EMAIL"`
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`

	AirmeetBaseURL   string `envconfig:"AIRMEET_BASE_URL" default:"https://api-gateway.airmeet.com/prod"`
	AirmeetAccessKey string `envconfig:"AIRMEET_ACCESS_KEY"`
	AirmeetSecretKey string `envconfig:"AIRMEET_SECRET_KEY"`
	// requests per minute, shared by every worker process
	AirmeetRateLimit int `envconfig:"AIRMEET_RATE_LIMIT" default:"60"`

	WorkerConcurrency int           `envconfig:"WORKER_CONCURRENCY" default:"5"`
	JobMaxAttempts    int           `envconfig:"JOB_MAX_ATTEMPTS" default:"5"`
	JobTimeout        time.Duration `envconfig:"JOB_TIMEOUT" default:"5m"`
	LockTTL           time.Duration `envconfig:"LOCK_TTL" default:"6m"` // at least JobTimeout
	ScheduleSpec      string        `envconfig:"SCHEDULE_SPEC" default:"0 */6 * * *"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.QueueBackend {
	case QueueBackendRedis:
		if c.QueueKey == "" {
			return fmt.Errorf("QUEUE_KEY is required for the redis queue backend")
		}
	case QueueBackendSQS:
		if c.SQSQueueURL == "" {
			return fmt.Errorf("SQS_QUEUE_URL is required for the sqs queue backend")
		}
	default:
		return fmt.Errorf("invalid QUEUE_BACKEND: %s (must be redis or sqs)", c.QueueBackend)
	}

	return nil
}

// ValidateAPI checks the settings only the admin server needs.
func (c *Config) ValidateAPI() error {
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	if c.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive")
	}
	return nil
}

// ValidateWorker checks the settings only the job worker needs.
func (c *Config) ValidateWorker() error {
	if c.AirmeetAccessKey == "" {
		return fmt.Errorf("AIRMEET_ACCESS_KEY is required")
	}
	if c.AirmeetSecretKey == "" {
		return fmt.Errorf("AIRMEET_SECRET_KEY is required")
	}
	if c.LockTTL < c.JobTimeout {
		return fmt.Errorf("LOCK_TTL (%s) must be at least JOB_TIMEOUT (%s)", c.LockTTL, c.JobTimeout)
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1")
	}
	if c.JobMaxAttempts < 1 {
		return fmt.Errorf("JOB_MAX_ATTEMPTS must be at least 1")
	}
	if c.AirmeetRateLimit < 1 {
		return fmt.Errorf("AIRMEET_RATE_LIMIT must be at least 1")
	}
	return nil
}
