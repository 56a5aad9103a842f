package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	StoreDriver string
	MongoURL    string
	MongoUser   string
	MongoPass   string
	PostgresURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	MetricsEnabled  bool
	MetricsPath     string
	TracingEnabled  bool
	OTLPEndpoint    string
	TracingInsecure bool
	SentryDSN       string

	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGODB_URL", "mongodb://localhost:27017/user")
	v.SetDefault("POSTGRES_URL", "postgres://localhost:5432/user?sslmode=disable")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_INSECURE", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetString("PORT"),
		Env:             v.GetString("ENV"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		StoreDriver:     v.GetString("STORE_DRIVER"),
		MongoURL:        v.GetString("MONGODB_URL"),
		MongoUser:       v.GetString("MONGODB_ADMIN_NAME"),
		MongoPass:       v.GetString("MONGODB_ADMIN_PASS"),
		PostgresURL:     v.GetString("POSTGRES_URL"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		MetricsEnabled:  v.GetBool("METRICS_ENABLED"),
		MetricsPath:     v.GetString("METRICS_PATH"),
		TracingEnabled:  v.GetBool("TRACING_ENABLED"),
		OTLPEndpoint:    v.GetString("OTLP_ENDPOINT"),
		TracingInsecure: v.GetBool("TRACING_INSECURE"),
		SentryDSN:       v.GetString("SENTRY_DSN"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	switch cfg.StoreDriver {
	case DriverMongo, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.TracingEnabled && cfg.OTLPEndpoint == "" {
		return nil, fmt.Errorf("OTLP_ENDPOINT must be set when TRACING_ENABLED is true")
	}
	return cfg, nil
}
