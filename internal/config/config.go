package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	AppEnv       string `env:"APP_ENV" envDefault:"dev"`
	IsProduction bool
	ProdOrigins  string `env:"PROD_ORIGINS"`
	HTTPAddr     string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// StoreDriver selects the user record store: "postgres" or "memory".
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DBDSN       string `env:"DB_DSN"`
	DB          DB     `envPrefix:"DB_"`

	JWTSecret         string        `env:"JWT_SECRET"`
	JWTAccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"15m"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"12"`
	CookieSecure      bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// Optional bootstrap account, created on startup when missing.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	Storage Storage `envPrefix:"STORAGE_"`
	S3      S3      `envPrefix:"S3_"`
}

// DB tunes the postgres connection pool. Zero keeps the pgxpool default.
type DB struct {
	MaxConns        int32         `env:"MAX_CONNS" envDefault:"0"`
	MinConns        int32         `env:"MIN_CONNS" envDefault:"0"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"0"`
}

// Storage configures where uploaded profile images are written.
type Storage struct {
	Driver         string `env:"DRIVER" envDefault:"local"`
	LocalPath      string `env:"LOCAL_PATH" envDefault:"./data"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
}

// S3 configures the S3-compatible object store used when Storage.Driver is "s3".
type S3 struct {
	Region       string `env:"REGION" envDefault:"us-east-1"`
	BaseEndpoint string `env:"BASE_ENDPOINT"`
	Bucket       string `env:"BUCKET"`
	AccessKey    string `env:"ACCESS_KEY"`
	SecretKey    string `env:"SECRET_KEY"`
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing env config: %w", err)
	}

	cfg.IsProduction = cfg.AppEnv == PROD_STRING

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		// Database DSN is required
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.StoreDriver)
	}

	if c.IsProduction && strings.TrimSpace(c.ProdOrigins) == "" {
		return fmt.Errorf("PROD_ORIGINS is required in production")
	}

	// JWT secret is required for signing tokens
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWTAccessTokenTTL <= 0 {
		return fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: must be positive")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("invalid BCRYPT_COST: %d out of range [4, 31]", c.BcryptCost)
	}

	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	switch c.Storage.Driver {
	case StorageDriverLocal:
		if c.Storage.LocalPath == "" {
			return fmt.Errorf("STORAGE_LOCAL_PATH is required")
		}
	case StorageDriverS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required")
		}
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q", c.Storage.Driver)
	}

	return nil
}
