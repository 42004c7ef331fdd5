package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "student-connect/backend/pkg/errors"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "ENV", "LOG_LEVEL", "BASE_PATH", "CORS_ORIGIN",
		"STORE_BACKEND", "SQLITE_PATH", "NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE",
		"SESSION_BACKEND", "REDIS_URL", "SESSION_TTL", "COOKIE_SECURE", "PASSWORD_SCHEME", "SYMMETRIC_FRIENDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
store_backend: sqlite
sqlite_path: /tmp/file.db
session_ttl: 1h
symmetric_friends: true
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SQLITE_PATH", "/tmp/env.db")
	t.Setenv("PASSWORD_SCHEME", "pbkdf2")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	want := Defaults()
	want.Port = "9000"
	want.StoreBackend = "sqlite"
	want.SQLitePath = "/tmp/env.db"
	want.SessionTTL = time.Hour
	want.SymmetricFriends = true
	want.PasswordScheme = "pbkdf2"
	want.CookieSecure = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_IgnoresMalformedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("SYMMETRIC_FRIENDS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults().SessionTTL, cfg.SessionTTL)
	assert.False(t, cfg.SymmetricFriends)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr apperrors.ErrorType
	}{
		{"defaults", func(*Config) {}, ""},
		{"sqlite", func(c *Config) { c.StoreBackend = "sqlite" }, ""},
		{"redis sessions", func(c *Config) { c.SessionBackend = "redis" }, ""},
		{"unknown store", func(c *Config) { c.StoreBackend = "arango" }, apperrors.ErrorTypeConfig},
		{"missing neo4j uri", func(c *Config) { c.Neo4jURI = "" }, apperrors.ErrorTypeConfig},
		{"missing sqlite path", func(c *Config) { c.StoreBackend = "sqlite"; c.SQLitePath = "" }, apperrors.ErrorTypeConfig},
		{"missing redis url", func(c *Config) { c.SessionBackend = "redis"; c.RedisURL = "" }, apperrors.ErrorTypeConfig},
		{"unknown session backend", func(c *Config) { c.SessionBackend = "memcached" }, apperrors.ErrorTypeConfig},
		{"unknown password scheme", func(c *Config) { c.PasswordScheme = "md5" }, apperrors.ErrorTypeConfig},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, apperrors.ErrorTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantErr, apperrors.TypeOf(err))
		})
	}
}

func TestConfig_Environment(t *testing.T) {
	cfg := Defaults()
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Env = "production"
	assert.True(t, cfg.IsProduction())
}
