package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type DatabaseType string

const (
	MongoDB DatabaseType = "mongodb"
	SQLite  DatabaseType = "sqlite"
)

// MinSessionSecret is the minimum SESSION_SECRET length in bytes.
const MinSessionSecret = 32

type Config struct {
	// PocketBaseURL is the root of the records backend.
	PocketBaseURL  string        `env:"PB_URL,required"`
	Port           string        `env:"PORT" envDefault:"8080"`
	SessionSecret  string        `env:"SESSION_SECRET,required"`
	SessionSecure  bool          `env:"SESSION_SECURE" envDefault:"false"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	SlidesFile     string        `env:"SLIDES_FILE"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseType DatabaseType `env:"DATABASE_TYPE" envDefault:"sqlite"`
	DatabaseName string       `env:"DATABASE_NAME" envDefault:"ecom"`
	// MongoDB config
	MongoURI string `env:"MONGODB_URI"`
	// SQLite config
	SQLitePath string `env:"SQLITE_PATH"`
}

// LoadConfig loads envFile (when it exists) into the process environment and
// parses the result. An explicitly named file that is missing is an error.
func LoadConfig(envFile string) (*Config, error) {
	path := envFile
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if envFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.normalize()
}

// FromMap parses configuration from an explicit variable set.
func FromMap(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.normalize()
}

func (c *Config) normalize() error {
	c.PocketBaseURL = strings.TrimRight(strings.TrimSpace(c.PocketBaseURL), "/")
	u, err := url.Parse(c.PocketBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PB_URL %q is not an http(s) url", c.PocketBaseURL)
	}

	if len(c.SessionSecret) < MinSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecret)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	switch c.DatabaseType {
	case MongoDB:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is not set")
		}
	case SQLite:
		if c.SQLitePath == "" {
			c.SQLitePath = filepath.Join("data", fmt.Sprintf("%s.db", c.DatabaseName))
		}
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE: %s", c.DatabaseType)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
