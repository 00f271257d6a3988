package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the service configuration. Values come from an optional
// YAML file, overridden by DISPATCH_* environment variables.
type Config struct {
	Environment string
	HTTPPort    int
	SQLiteDSN   string
	SessionTTL  time.Duration
}

// fileConfig is the YAML shape. Durations are strings ("12h") because
// yaml.v3 has no native duration decoding.
type fileConfig struct {
	Environment string `yaml:"environment"`
	HTTPPort    int    `yaml:"http_port"`
	SQLiteDSN   string `yaml:"sqlite_dsn"`
	SessionTTL  string `yaml:"session_ttl"`
}

// Default returns the configuration used when neither file nor environment
// says otherwise.
func Default() Config {
	return Config{
		Environment: "production",
		HTTPPort:    8080,
		SQLiteDSN:   "file:dispatch.db?_pragma=foreign_keys(1)",
		SessionTTL:  12 * time.Hour,
	}
}

// Load reads the YAML file at path (when non-empty), then applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var file fileConfig
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if file.Environment != "" {
			cfg.Environment = file.Environment
		}
		if file.HTTPPort != 0 {
			cfg.HTTPPort = file.HTTPPort
		}
		if file.SQLiteDSN != "" {
			cfg.SQLiteDSN = file.SQLiteDSN
		}
		if file.SessionTTL != "" {
			ttl, err := time.ParseDuration(file.SessionTTL)
			if err != nil {
				return Config{}, fmt.Errorf("config: session_ttl: %w", err)
			}
			cfg.SessionTTL = ttl
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if env := strings.TrimSpace(os.Getenv("DISPATCH_ENVIRONMENT")); env != "" {
		cfg.Environment = env
	}
	if portValue := strings.TrimSpace(os.Getenv("DISPATCH_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil {
			return fmt.Errorf("config: DISPATCH_HTTP_PORT: %w", err)
		}
		cfg.HTTPPort = port
	}
	if dsn := strings.TrimSpace(os.Getenv("DISPATCH_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	if ttlValue := strings.TrimSpace(os.Getenv("DISPATCH_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil {
			return fmt.Errorf("config: DISPATCH_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	return nil
}

func (c Config) validate() error {
	var problems []string
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("http_port %d is out of range", c.HTTPPort))
	}
	if strings.TrimSpace(c.SQLiteDSN) == "" {
		problems = append(problems, "sqlite_dsn is required")
	}
	if c.SessionTTL <= 0 {
		problems = append(problems, "session_ttl must be positive")
	}
	if len(problems) > 0 {
		return errors.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// ListenAddr renders the HTTP bind address.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
