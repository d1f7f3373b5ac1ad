// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"log/slog"
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr              string
	PostgresURL       string
	Redis             RedisConfig
	JWTSigningKey     string
	OperatorTokenHash string
	LogLevel          slog.Level
}

// RedisConfig holds connection settings for the taxonomy dropdown cache.
// An empty URL disables the cache; reads then fall through to the store.
type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// TaxonomyCacheTTL bounds staleness of cached dropdown options. Writes
// invalidate eagerly; the TTL is a backstop against missed invalidations.
var TaxonomyCacheTTL = 10 * time.Minute

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("KINSHIP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	return Server{
		Addr:              addr,
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		JWTSigningKey:     jwtSigningKey,
		OperatorTokenHash: os.Getenv("OPERATOR_TOKEN_HASH"),
		LogLevel:          level,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}
