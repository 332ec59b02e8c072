package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"digital-library/library"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment.
type Config struct {
	Backend     string `env:"LIBRARY_BACKEND" envDefault:"sqlite"`
	SQLitePath  string `env:"LIBRARY_SQLITE_PATH" envDefault:"library.db"`
	PostgresDSN string `env:"LIBRARY_POSTGRES_DSN"`

	S3Bucket    string `env:"LIBRARY_S3_BUCKET"`
	S3Region    string `env:"LIBRARY_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"LIBRARY_S3_ENDPOINT"`
	S3Prefix    string `env:"LIBRARY_S3_PREFIX"`
	S3PathStyle bool   `env:"LIBRARY_S3_PATH_STYLE"`

	CatalogSize int `env:"LIBRARY_CATALOG_SIZE" envDefault:"1000"`
	// CatalogSeed fixes the catalog generator. Zero draws a random seed.
	CatalogSeed       int64 `env:"LIBRARY_CATALOG_SEED"`
	PendingWindowDays int   `env:"LIBRARY_PENDING_WINDOW_DAYS" envDefault:"3"`

	HTTPAddr string `env:"LIBRARY_HTTP_ADDR" envDefault:":8080"`
}

// Load reads an optional .env file and then parses the environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the library would otherwise replace with its
// defaults, so an explicit setting is never silently ignored.
func (c Config) Validate() error {
	if c.CatalogSize < 1 {
		return fmt.Errorf("LIBRARY_CATALOG_SIZE must be at least 1, got %d", c.CatalogSize)
	}
	if c.PendingWindowDays < 1 {
		return fmt.Errorf("LIBRARY_PENDING_WINDOW_DAYS must be at least 1, got %d", c.PendingWindowDays)
	}
	return nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// GatewayConfig selects and configures the storage backend.
func (c Config) GatewayConfig() library.GatewayConfig {
	return library.GatewayConfig{
		Backend:     library.Backend(c.Backend),
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
		S3: library.S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			Prefix:    c.S3Prefix,
			Endpoint:  c.S3Endpoint,
			PathStyle: c.S3PathStyle,
		},
	}
}

// ManagerOptions builds the manager options. A zero CatalogSeed leaves the
// random source nil so the manager seeds it from crypto/rand.
func (c Config) ManagerOptions() library.Options {
	opts := library.Options{
		CatalogSize:       c.CatalogSize,
		PendingWindowDays: c.PendingWindowDays,
	}
	if c.CatalogSeed != 0 {
		opts.Rand = library.NewRand(c.CatalogSeed)
	}
	return opts
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
