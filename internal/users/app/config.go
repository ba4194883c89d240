package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is read from the TOML file named by USERS_CONFIG_FILE, if any, and
// then overridden by environment variables.
type Config struct {
	Issuer          string        `toml:"issuer"`           // issuer claim for tokens (default: usergate)
	DefaultAudience string        `toml:"default_audience"` // audience when X-Auth-Audience is absent (default: default)
	TokenTTL        time.Duration `toml:"token_ttl"`        // session token lifetime (default: 24h)

	MFAIssuer  string        `toml:"mfa_issuer"`  // issuer shown in authenticator apps (default: Issuer)
	PendingTTL time.Duration `toml:"pending_ttl"` // how long a generated TOTP secret waits for attach (default: 10m)

	Algorithm     string `toml:"algorithm"`        // JWT signing algorithm (RS256, ES256, EdDSA) (default: EdDSA)
	RSABits       int    `toml:"rsa_bits"`         // RSA key size for RS256 (default: 4096)
	NumKeys       int    `toml:"num_keys"`         // ephemeral signing keys (default: 3)
	KeyFile       string `toml:"signing_key_file"` // PEM signing key; empty means ephemeral keys
	MasterKeyFile string `toml:"master_key_file"`  // seals KeyFile at rest when set

	StoreDriver   string        `toml:"store_driver"`   // sqlite or redis (default: sqlite)
	DatabaseFile  string        `toml:"database_file"`  // SQLite file (default: users.db)
	RedisAddr     string        `toml:"redis_addr"`     // default: localhost:6379
	RedisPassword string        `toml:"redis_password"` //
	RedisDB       int           `toml:"redis_db"`       //
	RedisTimeout  time.Duration `toml:"redis_timeout"`  // default: 2s
	RedisPrefix   string        `toml:"redis_prefix"`   // default: usergate:

	PepperFile           string        `toml:"pepper_file"`           // default: pepper
	Env                  string        `toml:"env"`                   // dev, staging, prod (default: dev)
	LogLevel             string        `toml:"log_level"`             // debug, info, warn, error (default: info)
	LogFormat            string        `toml:"log_format"`            // json, text (default: json)
	Port                 int           `toml:"port"`                  // default: 8080
	ShutdownGracePeriod  time.Duration `toml:"shutdown_grace_period"` // default: 10s
	HousekeepingInterval time.Duration `toml:"housekeeping_interval"` // default: 1h
}

func defaultConfig() Config {
	return Config{
		Issuer:               "usergate",
		DefaultAudience:      "default",
		TokenTTL:             24 * time.Hour,
		PendingTTL:           10 * time.Minute,
		Algorithm:            "EdDSA",
		StoreDriver:          "sqlite",
		DatabaseFile:         "users.db",
		RedisAddr:            "localhost:6379",
		RedisTimeout:         2 * time.Second,
		RedisPrefix:          "usergate:",
		PepperFile:           "pepper",
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
	}
}

// LoadConfig builds the configuration. Only an unreadable or invalid config
// file is an error; unparsable environment values fall back silently.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("USERS_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	cfg.Issuer = getEnvOrDefault("USERS_ISSUER", cfg.Issuer)
	cfg.DefaultAudience = getEnvOrDefault("USERS_DEFAULT_AUDIENCE", cfg.DefaultAudience)
	cfg.TokenTTL = getEnvDurationOrDefault("USERS_TOKEN_TTL", cfg.TokenTTL)
	cfg.MFAIssuer = getEnvOrDefault("USERS_MFA_ISSUER", cfg.MFAIssuer)
	cfg.PendingTTL = getEnvDurationOrDefault("USERS_MFA_PENDING_TTL", cfg.PendingTTL)

	cfg.Algorithm = getEnvOrDefault("USERS_ALGORITHM", cfg.Algorithm)
	cfg.RSABits = getEnvIntOrDefault("USERS_RSA_BITS", cfg.RSABits)
	cfg.NumKeys = getEnvIntOrDefault("USERS_NUM_KEYS", cfg.NumKeys)
	cfg.KeyFile = getEnvOrDefault("USERS_SIGNING_KEY_FILE", cfg.KeyFile)
	cfg.MasterKeyFile = getEnvOrDefault("USERS_MASTER_KEY_FILE", cfg.MasterKeyFile)

	cfg.StoreDriver = getEnvOrDefault("USERS_STORE_DRIVER", cfg.StoreDriver)
	cfg.DatabaseFile = getEnvOrDefault("USERS_DATABASE_FILE", cfg.DatabaseFile)
	cfg.RedisAddr = getEnvOrDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvIntOrDefault("REDIS_DB", cfg.RedisDB)
	cfg.RedisTimeout = getEnvDurationOrDefault("REDIS_TIMEOUT", cfg.RedisTimeout)
	cfg.RedisPrefix = getEnvOrDefault("REDIS_PREFIX", cfg.RedisPrefix)

	cfg.PepperFile = getEnvOrDefault("USERS_PEPPER_FILE", cfg.PepperFile)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
	cfg.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)

	if cfg.MFAIssuer == "" {
		cfg.MFAIssuer = cfg.Issuer
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	if c.PendingTTL <= 0 {
		return fmt.Errorf("mfa pending ttl must be positive, got %s", c.PendingTTL)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
