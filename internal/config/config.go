package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers selectable with STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	StorageDriver string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	JWTSecret          string
	RefreshTokenSecret string
	JWTIssuer          string
	JWTTTL             time.Duration
	RefreshTTL         time.Duration

	CORSOrigins []string
	LogLevel    string
	LogFormat   string

	CartMaxAttempts        int
	BlacklistPruneSchedule string
	CartReconcileSchedule  string
	CartConvertingGrace    time.Duration
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		StorageDriver: strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), DriverPostgres)),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MongoURI:      strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDatabase: fallback(os.Getenv("MONGO_DATABASE"), "storefront"),

		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "storefront-backend"),
		JWTTTL:      time.Duration(positiveInt(os.Getenv("JWT_TTL_MINUTES"), 180)) * time.Minute,
		RefreshTTL:  time.Duration(positiveInt(os.Getenv("REFRESH_TTL_HOURS"), 168)) * time.Hour,
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		LogLevel:    fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:   fallback(os.Getenv("LOG_FORMAT"), "json"),

		CartMaxAttempts:        positiveInt(os.Getenv("CART_MAX_ATTEMPTS"), 5),
		BlacklistPruneSchedule: fallback(os.Getenv("BLACKLIST_PRUNE_SCHEDULE"), "@every 1h"),
		CartReconcileSchedule:  fallback(os.Getenv("CART_RECONCILE_SCHEDULE"), "@every 5m"),
		CartConvertingGrace:    time.Duration(positiveInt(os.Getenv("CART_CONVERTING_GRACE_MINUTES"), 10)) * time.Minute,
	}
	cfg.RefreshTokenSecret = fallback(os.Getenv("REFRESH_TOKEN_SECRET"), cfg.JWTSecret)

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			return Config{}, errors.New("MONGO_URI is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
