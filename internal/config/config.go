package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration. It is loaded once at startup
// and handed to each component by value.
type Config struct {
	ServerPort     int           `env:"PORT" envDefault:"8080"`
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"./auth.db"`
	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Audit events older than EventRetention are pruned on EventPruneSchedule.
	EventRetention     time.Duration `env:"EVENT_RETENTION" envDefault:"720h"`
	EventPruneSchedule string        `env:"EVENT_PRUNE_SCHEDULE" envDefault:"@daily"`
}

// Load loads configuration from environment variables or sets defaults.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses configuration from the given environment map instead of
// the process environment. A nil map reads the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that struct tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.ServerPort))
	}
	if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.EventRetention <= 0 {
		errs = append(errs, fmt.Errorf("EVENT_RETENTION must be positive, got %s", c.EventRetention))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}
