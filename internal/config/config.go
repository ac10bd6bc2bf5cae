package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAppName       = "Shoplight"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultShutdownDelay = 10 * time.Second

	// Protocol windows: session tokens live for months, reset tokens for
	// minutes, verification codes for ten minutes.
	defaultSessionTTL    = 90 * 24 * time.Hour
	defaultResetTokenTTL = 3 * time.Minute
	defaultCodeTTL       = 10 * time.Minute

	defaultIdempotencyTTL = 24 * time.Hour
	defaultCodeRateLimit  = 5
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName     string
	AppEnv      string
	Port        string
	LogLevel    string
	DatabaseURL string
	RedisURL    string

	// TicketSecret seals verification tickets; TokenSecret signs bearer
	// tokens. Independent process-wide secrets, required at startup,
	// never logged.
	TicketSecret []byte
	TokenSecret  []byte

	BcryptCost    int
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	CodeTTL       time.Duration

	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	CodeRateLimit  int
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		TicketSecret:   []byte(os.Getenv("TICKET_SECRET")),
		TokenSecret:    []byte(os.Getenv("TOKEN_SECRET")),
		BcryptCost:     bcrypt.DefaultCost,
		SessionTTL:     defaultSessionTTL,
		ResetTokenTTL:  defaultResetTokenTTL,
		CodeTTL:        defaultCodeTTL,
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
		CodeRateLimit:  defaultCodeRateLimit,
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
		cfg.BcryptCost = cost
	}

	if v := os.Getenv("CODE_RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CODE_RATE_LIMIT: %w", err)
		}
		cfg.CodeRateLimit = limit
	}

	durations := []struct {
		envVar string
		dst    *time.Duration
	}{
		{"SESSION_TTL", &cfg.SessionTTL},
		{"RESET_TOKEN_TTL", &cfg.ResetTokenTTL},
		{"CODE_TTL", &cfg.CodeTTL},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownPeriod},
		{"IDEMPOTENCY_TTL", &cfg.IdempotencyTTL},
	}
	for _, d := range durations {
		v := os.Getenv(d.envVar)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", d.envVar, err)
		}
		*d.dst = parsed
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}
	if len(cfg.TicketSecret) == 0 {
		return Config{}, fmt.Errorf("TICKET_SECRET must be set")
	}
	if len(cfg.TokenSecret) == 0 {
		return Config{}, fmt.Errorf("TOKEN_SECRET must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
