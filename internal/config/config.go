package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the optional YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

const devSessionSecret = "dev-secret-change-me"

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	HTTP     HTTPConfig     `koanf:"http"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string `koanf:"path"` // SQLite database file path
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Address         string        `koanf:"address"`          // listen address (e.g., ":3000")
	CORSOrigins     string        `koanf:"cors_origins"`     // comma-separated; empty disables CORS
	LoginRateLimit  int           `koanf:"login_rate_limit"` // login attempts per IP per window; 0 disables
	LoginRateWindow time.Duration `koanf:"login_rate_window"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	SessionSecret string        `koanf:"session_secret"` // signs the session cookie
	SessionTTL    time.Duration `koanf:"session_ttl"`
	CookieName    string        `koanf:"cookie_name"`
	CookieSecure  bool          `koanf:"cookie_secure"`
	BcryptCost    int           `koanf:"bcrypt_cost"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// envKeys maps environment variables to config keys. Unlisted variables are ignored.
var envKeys = map[string]string{
	"DB_PATH":           "database.path",
	"HTTP_ADDRESS":      "http.address",
	"CORS_ORIGINS":      "http.cors_origins",
	"LOGIN_RATE_LIMIT":  "http.login_rate_limit",
	"LOGIN_RATE_WINDOW": "http.login_rate_window",
	"SHUTDOWN_TIMEOUT":  "http.shutdown_timeout",
	"SESSION_SECRET":    "auth.session_secret",
	"SESSION_TTL":       "auth.session_ttl",
	"COOKIE_NAME":       "auth.cookie_name",
	"COOKIE_SECURE":     "auth.cookie_secure",
	"BCRYPT_COST":       "auth.bcrypt_cost",
	"LOG_LEVEL":         "log.level",
	"LOG_FORMAT":        "log.format",
}

func defaults() Config {
	return Config{
		Database: DatabaseConfig{Path: "users.db"},
		HTTP: HTTPConfig{
			Address:         ":3000",
			LoginRateLimit:  10,
			LoginRateWindow: time.Minute,
			ShutdownTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			SessionTTL: 24 * time.Hour,
			CookieName: "sid",
			BcryptCost: 10,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load loads configuration from defaults, an optional YAML file and the environment,
// in increasing order of precedence. SESSION_SECRET must be set.
func Load() (*Config, error) {
	cfg, err := load(defaults())
	if err != nil {
		return nil, err
	}
	if cfg.Auth.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a fixed session secret when none is set.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	d := defaults()
	d.Auth.SessionSecret = devSessionSecret
	return load(d)
}

func load(base Config) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(base, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", func(s string) string { return envKeys[s] }), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Address) == "" {
		return errors.New("http address must not be empty")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range [4,31]", c.Auth.BcryptCost)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Auth.SessionTTL)
	}
	if c.Auth.CookieName == "" {
		return errors.New("cookie name must not be empty")
	}
	if c.HTTP.LoginRateLimit < 0 {
		return fmt.Errorf("login rate limit must not be negative, got %d", c.HTTP.LoginRateLimit)
	}
	return nil
}

// UsesDevSecret reports whether the built-in development secret is in use.
func (c AuthConfig) UsesDevSecret() bool {
	return c.SessionSecret == devSessionSecret
}

// AllowedOrigins splits CORSOrigins into a list, dropping blanks.
func (c HTTPConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, SessionTTL: %s, Auth: *** (masked) ***}",
		c.Database.Path, c.HTTP.Address, c.Auth.SessionTTL)
}
