package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/alc6/pgtables/postgres"
)

const (
	envPrefix            = "PGTABLES_"
	defaultPostgresImage = "postgres:16-alpine"
)

// Config is the merged configuration of a run.
type Config struct {
	Database      DatabaseConfig `koanf:"database"`
	LogFile       string         `koanf:"log_file"`
	LogLevel      string         `koanf:"log_level"`
	StrictDrift   bool           `koanf:"strict_drift"`
	PostgresImage string         `koanf:"postgres_image"`
}

// DatabaseConfig describes the target database.
type DatabaseConfig struct {
	Name            string        `koanf:"name"`
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	PasswordEnv     string        `koanf:"password_env"`
	PasswordService string        `koanf:"password_service"`
	Driver          string        `koanf:"driver"`
	SSLMode         string        `koanf:"sslmode"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
}

// Params converts the configuration into connection parameters. The password is resolved
// separately, see secrets.Resolve.
func (c DatabaseConfig) Params() postgres.Params {
	return postgres.Params{
		Database:       c.Name,
		Host:           c.Host,
		Port:           c.Port,
		User:           c.User,
		Driver:         c.Driver,
		SSLMode:        c.SSLMode,
		ConnectTimeout: c.ConnectTimeout,
	}
}

// flagKeys maps flag names to config keys. Flags not listed here are not configuration.
var flagKeys = map[string]string{
	"dbname":           "database.name",
	"host":             "database.host",
	"port":             "database.port",
	"user":             "database.user",
	"password-env":     "database.password_env",
	"password-service": "database.password_service",
	"driver":           "database.driver",
	"sslmode":          "database.sslmode",
	"connect-timeout":  "database.connect_timeout",
	"log-file":         "log_file",
	"log-level":        "log_level",
	"strict-drift":     "strict_drift",
	"postgres-image":   "postgres_image",
}

func defaultConfig() map[string]any {
	return map[string]any{
		"database.host":            "localhost",
		"database.port":            "5432",
		"database.driver":          postgres.DriverPQ,
		"database.sslmode":         "disable",
		"database.connect_timeout": "10s",
		"log_level":                "info",
		"strict_drift":             false,
		"postgres_image":           defaultPostgresImage,
	}
}

// findConfigFile returns the explicit path, or pgtables.yaml / pgtables.yml in the working
// directory when present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"pgtables.yaml", "pgtables.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// envKey turns PGTABLES_DATABASE__HOST into database.host.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

// LoadConfig merges, lowest precedence first: defaults, the config file, PGTABLES_
// environment variables and explicitly set flags.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultConfig(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		slog.Debug("loading config file", "file", path)
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no command can work with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case postgres.DriverPQ, postgres.DriverPGX:
	default:
		return fmt.Errorf("invalid config: unknown driver %q, expected %q or %q",
			c.Database.Driver, postgres.DriverPQ, postgres.DriverPGX)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireDatabase reports whether a target database is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.Name == "" {
		return fmt.Errorf("no database configured, set database.name, %sDATABASE__NAME or --dbname", envPrefix)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
