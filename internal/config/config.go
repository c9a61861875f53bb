package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Database is shared by every binary that talks to Postgres.
type Database struct {
	DSN           string `env:"DB_DSN"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"db/migrations"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
}

// API configures cmd/api.
type API struct {
	Addr               string        `env:"APP_ADDR" envDefault:":8080"`
	CatalogPath        string        `env:"CATALOG_PATH,required,notEmpty"`
	CatalogWatch       bool          `env:"CATALOG_WATCH" envDefault:"false"`
	RateLimitRPS       float64       `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	TrustedProxies     []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	EnableHSTS         bool          `env:"ENABLE_HSTS" envDefault:"false"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Auth     Auth
	Database Database
}

// LoadEnvFiles reads .env and .env.local if present. Variables already set
// in the process environment are never overridden.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads env files and parses the environment into a T.
func Load[T any]() (T, error) {
	LoadEnvFiles()
	var cfg T
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
