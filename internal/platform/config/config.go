package config

import (
	"os"
	"strconv"
	"time"

	"crmcore/internal/audit"
	"crmcore/internal/notification"
)

// Config captures everything the server process needs from the environment so
// main stays lean.
type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string

	Redis RedisConfig

	// AuditRetention is how long audit records live before the retention
	// sweep may remove them.
	AuditRetention         time.Duration
	RetentionSweepInterval time.Duration

	// NotificationCleanupAge is how long read notifications survive.
	NotificationCleanupAge time.Duration
	CleanupSweepInterval   time.Duration

	UnreadCacheTTL time.Duration
}

// RedisConfig holds Redis connection settings. An empty URL means Redis is
// not configured and the unread cache is skipped.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables with sane defaults.
func FromEnv() Config {
	return Config{
		Addr:          envString("CRMCORE_ADDR", ":8080"),
		DatabaseURL:   envString("DATABASE_URL", "postgres://localhost:5432/crmcore?sslmode=disable"),
		JWTSigningKey: envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		AuditRetention:         envDuration("AUDIT_RETENTION", audit.DefaultRetentionHorizon),
		RetentionSweepInterval: envDuration("AUDIT_RETENTION_SWEEP_INTERVAL", time.Hour),
		NotificationCleanupAge: envDuration("NOTIFICATION_CLEANUP_AGE", notification.DefaultCleanupAge),
		CleanupSweepInterval:   envDuration("NOTIFICATION_CLEANUP_SWEEP_INTERVAL", time.Hour),
		UnreadCacheTTL:         envDuration("UNREAD_CACHE_TTL", 30*time.Second),
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
