// Package config centralizes environment-driven configuration so main stays
// lean. An optional .env file is honored for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime configuration areas.
type Config struct {
	Server  Server
	DB      DB
	Redis   Redis
	Payment Payment
	Files   Files
	Auth    Auth
	Events  Events
	Notify  Notify
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// DB configures the relational store.
type DB struct {
	DSN     string
	Timeout time.Duration
}

// Redis configures the optional course-catalog cache. Empty URL disables it.
type Redis struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CatalogTTL   time.Duration
}

// Payment configures the Razorpay gateway and the flat application fee.
// The fee deliberately mirrors the fixed amount the admission office charges
// today; it is not derived from Course.Fee.
type Payment struct {
	KeyID     string
	KeySecret string
	// FeePaise is the application fee in the gateway's minor unit.
	FeePaise int64
	Currency string
}

// Files configures the on-disk blob store.
type Files struct {
	Root string
}

// Auth configures role-token issuance. Actors holds "name:role:bcrypt-hash"
// triples, comma separated.
type Auth struct {
	JWTSigningKey string
	TokenTTL      time.Duration
	Actors        []string
}

// Events configures the optional lifecycle event stream. Empty brokers
// disables publishing.
type Events struct {
	Brokers []string
	Topic   string
}

// Notify controls notification read scoping. When Scoped is false every
// applicant sees the full feed, matching the legacy behavior.
type Notify struct {
	Scoped bool
}

// FromEnv builds a Config from environment variables, loading .env first if
// present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Server: Server{
			Addr:            envOr("ADMITFLOW_ADDR", ":8080"),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		DB: DB{
			DSN:     envOr("DATABASE_URL", "postgres://localhost:5432/admitflow?sslmode=disable"),
			Timeout: envDuration("DB_TIMEOUT", 5*time.Second),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CatalogTTL:   envDuration("COURSE_CACHE_TTL", 5*time.Minute),
		},
		Payment: Payment{
			KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
			FeePaise:  envInt64("APPLICATION_FEE_PAISE", 100*100),
			Currency:  envOr("PAYMENT_CURRENCY", "INR"),
		},
		Files: Files{
			Root: envOr("UPLOAD_ROOT", "uploads"),
		},
		Auth: Auth{
			JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			TokenTTL:      envDuration("TOKEN_TTL", 8*time.Hour),
			Actors:        splitList(os.Getenv("ACTOR_ACCOUNTS")),
		},
		Events: Events{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_TOPIC", "admission.lifecycle"),
		},
		Notify: Notify{
			Scoped: os.Getenv("NOTIFY_SCOPED") == "true",
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
