// Package config loads sigcalc settings from defaults, an optional YAML
// file and SIGCALC_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

type Config struct {
	Server            ServerConfig `yaml:"server"`
	DBPath            string       `yaml:"db_path"`
	Locale            string       `yaml:"locale"`
	DefaultConfidence string       `yaml:"default_confidence"`
	Log               LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// AdminToken protects sample management endpoints. A random token
	// is generated at startup when empty.
	AdminToken string `yaml:"admin_token"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		DBPath:            "./sigcalc.db",
		Locale:            "en",
		DefaultConfidence: string(stats.DefaultConfidence),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if p := os.Getenv("SIGCALC_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid SIGCALC_PORT %q: %w", p, err)
		}
		c.Server.Port = parsed
	}
	if origins := os.Getenv("SIGCALC_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	c.Server.AdminToken = GetEnvOrDefault("SIGCALC_ADMIN_TOKEN", c.Server.AdminToken)
	c.DBPath = GetEnvOrDefault("SIGCALC_DB_PATH", c.DBPath)
	c.Locale = GetEnvOrDefault("SIGCALC_LANG", c.Locale)
	c.DefaultConfidence = GetEnvOrDefault("SIGCALC_DEFAULT_CONFIDENCE", c.DefaultConfidence)
	c.Log.Level = GetEnvOrDefault("SIGCALC_LOG_LEVEL", c.Log.Level)
	c.Log.Format = GetEnvOrDefault("SIGCALC_LOG_FORMAT", c.Log.Format)
	return nil
}

// Validate rejects settings the rest of the program cannot honour.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	switch c.Locale {
	case "en", "de":
	default:
		errs = append(errs, fmt.Errorf("locale %q not supported (en, de)", c.Locale))
	}
	if !stats.ConfidenceLevel(c.DefaultConfidence).Valid() {
		errs = append(errs, fmt.Errorf("default_confidence %q must be one of 0.9, 0.95, 0.99", c.DefaultConfidence))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q not supported", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q not supported (text, json)", c.Log.Format))
	}

	return errors.Join(errs...)
}

// GetEnvOrDefault returns the environment value for key, or defaultValue
// when it is unset or empty.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
