package config

import (
	"os"
	"strconv"
	"time"
)

// Config is everything the binaries need, read once at startup so main stays
// lean. Postgres and Redis are optional; when unset the services run on
// in-memory stores, which is the development default.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Importer Importer
}

type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	WebhookTimeout  time.Duration
}

type Postgres struct {
	// DSN in lib/pq key=value or URL form. Empty disables Postgres.
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type Redis struct {
	// URL in redis:// form. Empty disables Redis.
	URL string
}

type Importer struct {
	FeedURL     string
	FeedTimeout time.Duration
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("CUSTOMS_ADDR", ":8080"),
			ShutdownTimeout: envDuration("CUSTOMS_SHUTDOWN_TIMEOUT", 10*time.Second),
			WebhookTimeout:  envDuration("CUSTOMS_WEBHOOK_TIMEOUT", 30*time.Second),
		},
		Postgres: Postgres{
			DSN:          os.Getenv("CUSTOMS_POSTGRES_DSN"),
			MaxOpenConns: envInt("CUSTOMS_POSTGRES_MAX_OPEN", 10),
			MaxIdleConns: envInt("CUSTOMS_POSTGRES_MAX_IDLE", 5),
		},
		Redis: Redis{
			URL: os.Getenv("CUSTOMS_REDIS_URL"),
		},
		Importer: Importer{
			FeedURL:     os.Getenv("CUSTOMS_FEED_URL"),
			FeedTimeout: envDuration("CUSTOMS_FEED_TIMEOUT", 60*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
