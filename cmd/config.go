package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"ordermanagement/internal/adapters/out/postgres"
	"ordermanagement/internal/adapters/rabbitmq"
	"ordermanagement/internal/jobs"
	"ordermanagement/internal/pkg/tracing"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort       string
	WorkerHTTPPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBPath     string

	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQVHost    string
	OrderQueue       string

	WorkerProcessingDelay   time.Duration
	WorkerReconnectInterval time.Duration
	StaleOrderThreshold     time.Duration
	StaleOrderSchedule      string

	TracingExporterURL string
	TracingSampleRate  float64

	LogLevel slog.Level
}

// LoadConfig reads .env when present and then the process environment.
// Unset variables take their defaults; malformed durations and log levels
// are reported together.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	config := Config{
		HTTPPort:       envOr("HTTP_PORT", "8080"),
		WorkerHTTPPort: envOr("WORKER_HTTP_PORT", "8081"),

		DBDriver:   envOr("DB_DRIVER", postgres.DriverPostgres),
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     envOr("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     envOr("DB_NAME", "orders"),
		DBSslMode:  envOr("DB_SSLMODE", "disable"),
		DBPath:     envOr("DB_PATH", "orders.db"),

		RabbitMQHost:     envOr("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     envOr("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     envOr("RABBITMQ_USER", "guest"),
		RabbitMQPassword: envOr("RABBITMQ_PASSWORD", "guest"),
		RabbitMQVHost:    envOr("RABBITMQ_VHOST", rabbitmq.DefaultVHost),
		OrderQueue:       envOr("ORDER_QUEUE", rabbitmq.DefaultQueue),

		StaleOrderSchedule: envOr("STALE_ORDER_SCHEDULE", jobs.DefaultStaleOrderSchedule),

		TracingExporterURL: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	var errDelay, errReconnect, errThreshold, errSampleRate, errLevel error
	config.WorkerProcessingDelay, errDelay = durationOr("WORKER_PROCESSING_DELAY", 2*time.Second)
	config.WorkerReconnectInterval, errReconnect = durationOr("WORKER_RECONNECT_INTERVAL", jobs.DefaultReconnectInterval)
	config.StaleOrderThreshold, errThreshold = durationOr("STALE_ORDER_THRESHOLD", jobs.DefaultStaleOrderThreshold)
	config.TracingSampleRate, errSampleRate = ratioOr("TRACE_SAMPLE_RATE", 1)
	errLevel = config.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "INFO")))
	if errLevel != nil {
		errLevel = fmt.Errorf("LOG_LEVEL: %w", errLevel)
	}

	if err := errors.Join(errDelay, errReconnect, errThreshold, errSampleRate, errLevel); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Database returns the storage settings.
func (c Config) Database() postgres.Config {
	return postgres.Config{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSslMode,
		Path:     c.DBPath,
	}
}

// Tracing returns the tracer provider settings for service.
func (c Config) Tracing(service string) tracing.Config {
	return tracing.Config{
		ServiceName: service,
		ExporterURL: c.TracingExporterURL,
		SampleRate:  c.TracingSampleRate,
	}
}

// Broker returns the RabbitMQ settings.
func (c Config) Broker() rabbitmq.Config {
	return rabbitmq.Config{
		Host:     c.RabbitMQHost,
		Port:     c.RabbitMQPort,
		User:     c.RabbitMQUser,
		Password: c.RabbitMQPassword,
		VHost:    c.RabbitMQVHost,
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: %s is negative", key, raw)
	}
	return d, nil
}

func ratioOr(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if ratio < 0 || ratio > 1 {
		return 0, fmt.Errorf("%s: %s is outside [0, 1]", key, raw)
	}
	return ratio, nil
}
