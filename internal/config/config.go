package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	// GRPCPort serves the gRPC health protocol; empty disables it.
	GRPCPort        string
	HealthInterval  time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	SeedDemoData    bool

	// SlotBackend is "memory" or "redis".
	SlotBackend   string
	RedisAddr     string
	RedisPassword string

	// OrderBackend is "memory" or "postgres".
	OrderBackend string
	Postgres     Postgres

	// CommentBackend is "memory" or "mongo".
	CommentBackend string
	MongoURI       string
	MongoDBName    string

	// CatalogDB is a SQLite path; empty serves the built-in catalog.
	CatalogDB string

	KafkaBrokers []string
	KafkaTopic   string

	// PaymentGateway is "mock" (always approves) or "random".
	PaymentGateway string

	Latency Latency
}

type Postgres struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// Latency holds the simulated round trip of every mock remote call.
type Latency struct {
	Login         time.Duration
	Register      time.Duration
	Restore       time.Duration
	OrderCreate   time.Duration
	OrderGet      time.Duration
	OrderList     time.Duration
	OrderUpdate   time.Duration
	Payment       time.Duration
	CommentList   time.Duration
	CommentAdd    time.Duration
	CommentLike   time.Duration
	CommentDelete time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var errs []error
	durations := func(key string, def time.Duration) time.Duration {
		d, err := getDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	pgPort, err := getInt("DB_PORT", 5432)
	if err != nil {
		errs = append(errs, err)
	}
	seed, err := getBool("SEED_DEMO_DATA", true)
	if err != nil {
		errs = append(errs, err)
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		GRPCPort:        getEnvAllowEmpty("GRPC_PORT", "50051"),
		HealthInterval:  durations("HEALTH_INTERVAL", 15*time.Second),
		RequestTimeout:  durations("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: durations("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SeedDemoData:    seed,

		SlotBackend:   getEnv("SLOT_BACKEND", "memory"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		OrderBackend: getEnv("ORDER_BACKEND", "memory"),
		Postgres: Postgres{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     pgPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "storefront"),
		},

		CommentBackend: getEnv("COMMENT_BACKEND", "memory"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "storefront"),

		CatalogDB: getEnv("CATALOG_DB", ""),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-orders"),

		PaymentGateway: getEnv("PAYMENT_GATEWAY", "mock"),

		Latency: Latency{
			Login:         durations("MOCK_LATENCY_LOGIN", time.Second),
			Register:      durations("MOCK_LATENCY_REGISTER", time.Second),
			Restore:       durations("MOCK_LATENCY_RESTORE", 500*time.Millisecond),
			OrderCreate:   durations("MOCK_LATENCY_ORDER_CREATE", time.Second),
			OrderGet:      durations("MOCK_LATENCY_ORDER_GET", 500*time.Millisecond),
			OrderList:     durations("MOCK_LATENCY_ORDER_LIST", 800*time.Millisecond),
			OrderUpdate:   durations("MOCK_LATENCY_ORDER_UPDATE", 800*time.Millisecond),
			Payment:       durations("MOCK_LATENCY_PAYMENT", 2*time.Second),
			CommentList:   durations("MOCK_LATENCY_COMMENT_LIST", 500*time.Millisecond),
			CommentAdd:    durations("MOCK_LATENCY_COMMENT_ADD", 800*time.Millisecond),
			CommentLike:   durations("MOCK_LATENCY_COMMENT_LIKE", 300*time.Millisecond),
			CommentDelete: durations("MOCK_LATENCY_COMMENT_DELETE", 500*time.Millisecond),
		},
	}

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.SlotBackend != "memory" && c.SlotBackend != "redis" {
		errs = append(errs, fmt.Errorf("SLOT_BACKEND must be memory or redis, got %q", c.SlotBackend))
	}
	if c.OrderBackend != "memory" && c.OrderBackend != "postgres" {
		errs = append(errs, fmt.Errorf("ORDER_BACKEND must be memory or postgres, got %q", c.OrderBackend))
	}
	if c.CommentBackend != "memory" && c.CommentBackend != "mongo" {
		errs = append(errs, fmt.Errorf("COMMENT_BACKEND must be memory or mongo, got %q", c.CommentBackend))
	}
	if c.PaymentGateway != "mock" && c.PaymentGateway != "random" {
		errs = append(errs, fmt.Errorf("PAYMENT_GATEWAY must be mock or random, got %q", c.PaymentGateway))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty keeps an explicitly empty value instead of the default.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
