package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/agrienergy/connect/internal/pkg/token"
)

const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config is the API tier configuration.
type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	PhoneRegion string `env:"PHONE_REGION, default=ZA"`
	Seed        bool   `env:"SEED_DATA,    default=false"`

	JWT     JWTConfig
	Store   StoreConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Lockout LockoutConfig
}

type JWTConfig struct {
	Key         string `env:"JWT_KEY, required"`
	Issuer      string `env:"JWT_ISSUER,       default=AgriEnergyAPI"`
	Audience    string `env:"JWT_AUDIENCE,     default=AgriEnergyWeb"`
	ExpiryHours int    `env:"JWT_EXPIRY_HOURS, default=3"`
}

type StoreConfig struct {
	Driver    string `env:"STORE_DRIVER, default=sqlite"`
	SQLiteDSN string `env:"SQLITE_DSN,   default=file:agrienergy.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=agrienergy"`
}

// RedisConfig: an empty Addr disables the login lockout.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type LockoutConfig struct {
	MaxFailures int           `env:"LOCKOUT_MAX_FAILURES, default=5"`
	Window      time.Duration `env:"LOCKOUT_WINDOW,       default=15m"`
}

// TokenConfig builds the immutable token configuration shared by the issuer
// and the verifier.
func (c *Config) TokenConfig() token.Config {
	return token.Config{
		Key:      []byte(c.JWT.Key),
		Issuer:   c.JWT.Issuer,
		Audience: c.JWT.Audience,
		Lifetime: time.Duration(c.JWT.ExpiryHours) * time.Hour,
	}
}

func (c *Config) validate() error {
	if len(c.JWT.Key) < 32 {
		return fmt.Errorf("JWT_KEY must be at least 32 bytes")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive")
	}
	switch c.Store.Driver {
	case StoreSQLite, StoreMongo:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreSQLite, StoreMongo, c.Store.Driver)
	}
	return nil
}

// WebConfig is the web tier configuration.
type WebConfig struct {
	Port          string `env:"WEB_PORT,      default=8081"`
	Env           string `env:"ENV,           default=development"`
	LogLevel      string `env:"LOG_LEVEL,     default=info"`
	APIBaseURL    string `env:"API_BASE_URL,  default=http://localhost:8080"`
	SessionKey    string `env:"SESSION_KEY,   required"`
	SecureCookies bool   `env:"COOKIE_SECURE, default=true"`
}

func (c *WebConfig) validate() error {
	if len(c.SessionKey) < 32 {
		return fmt.Errorf("SESSION_KEY must be at least 32 bytes")
	}
	return nil
}

// LoadFrom reads the API configuration through the given lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadWebFrom reads the web tier configuration through the given lookuper.
func LoadWebFrom(ctx context.Context, l envconfig.Lookuper) (*WebConfig, error) {
	var cfg WebConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Load reads the API configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWeb reads the web tier configuration from environment variables.
func LoadWeb() *WebConfig {
	cfg, err := LoadWebFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}
