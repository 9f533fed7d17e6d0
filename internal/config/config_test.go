package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for name := range envKeys {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv(ConfigPathEnvVar, "")
	os.Unsetenv(ConfigPathEnvVar)
}

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.HTTP.Address != ":3000" || cfg.Database.Path == "" || cfg.Auth.SessionSecret == "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour || cfg.Auth.CookieName != "sid" || cfg.Auth.BcryptCost != 10 {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if !cfg.Auth.UsesDevSecret() {
		t.Fatalf("expected the development secret")
	}
}

func TestLoad_RequiresSessionSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("HTTP_ADDRESS", ":1234")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when SESSION_SECRET is not set")
	}
	t.Setenv("SESSION_SECRET", "x")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with secret set: %v", err)
	}
	if cfg.Database.Path != "test.db" || cfg.HTTP.Address != ":1234" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_EnvDurationsAndInts(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "x")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("BCRYPT_COST", "4")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.SessionTTL != 90*time.Minute || cfg.Auth.BcryptCost != 4 {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
}

func TestLoad_YAMLFileBelowEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "database:\n  path: from-file.db\nhttp:\n  address: \":4000\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_ADDRESS", ":5000")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Database.Path != "from-file.db" {
		t.Fatalf("file value not applied: %q", cfg.Database.Path)
	}
	if cfg.HTTP.Address != ":5000" {
		t.Fatalf("env should override file: %q", cfg.HTTP.Address)
	}
}

func TestValidate_RejectsBadCost(t *testing.T) {
	clearEnv(t)
	t.Setenv("BCRYPT_COST", "2")
	if _, err := LoadWithDefaults(); err == nil {
		t.Fatalf("expected bcrypt cost validation error")
	}
}

func TestAllowedOrigins(t *testing.T) {
	h := HTTPConfig{CORSOrigins: " http://a.test , ,http://b.test"}
	got := h.AllowedOrigins()
	if strings.Join(got, "|") != "http://a.test|http://b.test" {
		t.Fatalf("AllowedOrigins = %v", got)
	}
	if (HTTPConfig{}).AllowedOrigins() != nil {
		t.Fatalf("expected nil origins for empty config")
	}
}

func TestString_MasksSecret(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{SessionSecret: "topsecret"}}
	if strings.Contains(cfg.String(), "topsecret") {
		t.Fatalf("secret leaked: %s", cfg.String())
	}
}
