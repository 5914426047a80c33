package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

// Authorization policies.
const (
	AuthPolicyReal = "real"
	AuthPolicyTest = "test"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	StorageDriver       string
	DatabaseURL         string
	SQLitePath          string
	MigrationsPath      string
	DBConnectMaxElapsed time.Duration

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	AuthPolicy        string

	UnlockRateLimit    string
	CORSAllowedOrigins []string
	HistoryMaxLimit    int

	KafkaBrokers     []string
	KafkaLedgerTopic string
	OutboxEnabled    bool

	PosthogAPIKey   string
	PosthogEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", "ned_credits.db")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("DB_CONNECT_MAX_ELAPSED", "30s")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "ned-credits")
	v.SetDefault("AUTH_POLICY", AuthPolicyReal)
	v.SetDefault("UNLOCK_RATE_LIMIT", "30-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("HISTORY_MAX_LIMIT", 100)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_LEDGER_TOPIC", "ledger.entries")
	v.SetDefault("OUTBOX_ENABLED", true)
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		StorageDriver:    strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:      v.GetString("PGSQL_URL"),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		MigrationsPath:   v.GetString("MIGRATIONS_PATH"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		AuthPolicy:       strings.ToLower(v.GetString("AUTH_POLICY")),
		UnlockRateLimit:  v.GetString("UNLOCK_RATE_LIMIT"),
		HistoryMaxLimit:  v.GetInt("HISTORY_MAX_LIMIT"),
		KafkaLedgerTopic: v.GetString("KAFKA_LEDGER_TOPIC"),
		OutboxEnabled:    v.GetBool("OUTBOX_ENABLED"),
		PosthogAPIKey:    v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:  v.GetString("POSTHOG_ENDPOINT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTExpiryDuration = parseDuration(v, "JWT_EXPIRY_DURATION", time.Hour)
	cfg.DBConnectMaxElapsed = parseDuration(v, "DB_CONNECT_MAX_ELAPSED", 30*time.Second)
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))

	if cfg.HistoryMaxLimit <= 0 {
		cfg.HistoryMaxLimit = 100
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER is %q", StoragePostgres)
		}
	case StorageSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required when STORAGE_DRIVER is %q", StorageSQLite)
		}
	case StorageMemory:
		log.Println("Warning: STORAGE_DRIVER is memory. Ledger data will not survive a restart.")
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	switch cfg.AuthPolicy {
	case AuthPolicyReal:
	case AuthPolicyTest:
		if cfg.IsProduction {
			return nil, fmt.Errorf("AUTH_POLICY %q is not allowed when IS_PRODUCTION is set", AuthPolicyTest)
		}
		log.Println("Warning: AUTH_POLICY is test. Every authenticated caller is authorized.")
	default:
		return nil, fmt.Errorf("unsupported AUTH_POLICY %q", cfg.AuthPolicy)
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
