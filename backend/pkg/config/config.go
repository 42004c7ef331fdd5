package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "student-connect/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port       string `yaml:"port"`
	Env        string `yaml:"env"`
	LogLevel   string `yaml:"log_level"`
	BasePath   string `yaml:"base_path"`
	CORSOrigin string `yaml:"cors_origin"`

	// Store
	StoreBackend  string `yaml:"store_backend"` // neo4j, sqlite
	SQLitePath    string `yaml:"sqlite_path"`
	Neo4jURI      string `yaml:"neo4j_uri"`
	Neo4jUser     string `yaml:"neo4j_user"`
	Neo4jPassword string `yaml:"neo4j_password"`
	Neo4jDatabase string `yaml:"neo4j_database"`

	// Sessions
	SessionBackend string        `yaml:"session_backend"` // store, redis
	RedisURL       string        `yaml:"redis_url"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	CookieSecure   bool          `yaml:"cookie_secure"`

	// Social graph
	PasswordScheme   string `yaml:"password_scheme"` // bcrypt, pbkdf2
	SymmetricFriends bool   `yaml:"symmetric_friends"`
}

// Defaults returns the configuration used when neither a config file nor the
// environment provide a value.
func Defaults() *Config {
	return &Config{
		Port:           "8080",
		Env:            "development",
		BasePath:       "/api",
		CORSOrigin:     "*",
		StoreBackend:   "neo4j",
		SQLitePath:     "student_connect.db",
		Neo4jURI:       "bolt://localhost:7687",
		Neo4jUser:      "neo4j",
		Neo4jPassword:  "password",
		Neo4jDatabase:  "neo4j",
		SessionBackend: "store",
		RedisURL:       "redis://localhost:6379/0",
		SessionTTL:     7 * 24 * time.Hour,
		PasswordScheme: "bcrypt",
	}
}

// Load reads configuration from an optional YAML file named by CONFIG_FILE
// and then from environment variables, which take precedence.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.BasePath = getEnv("BASE_PATH", c.BasePath)
	c.CORSOrigin = getEnv("CORS_ORIGIN", c.CORSOrigin)
	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.Neo4jURI = getEnv("NEO4J_URI", c.Neo4jURI)
	c.Neo4jUser = getEnv("NEO4J_USER", c.Neo4jUser)
	c.Neo4jPassword = getEnv("NEO4J_PASSWORD", c.Neo4jPassword)
	c.Neo4jDatabase = getEnv("NEO4J_DATABASE", c.Neo4jDatabase)
	c.SessionBackend = getEnv("SESSION_BACKEND", c.SessionBackend)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.SessionTTL = getEnvDuration("SESSION_TTL", c.SessionTTL)
	c.CookieSecure = getEnvBool("COOKIE_SECURE", c.CookieSecure)
	c.PasswordScheme = getEnv("PASSWORD_SCHEME", c.PasswordScheme)
	c.SymmetricFriends = getEnvBool("SYMMETRIC_FRIENDS", c.SymmetricFriends)
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "neo4j":
		if c.Neo4jURI == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_URI")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return apperrors.NewConfigMissingRequired("SQLITE_PATH")
		}
	default:
		return apperrors.NewConfigValidationFailed("STORE_BACKEND", "must be neo4j or sqlite")
	}

	switch c.SessionBackend {
	case "store":
	case "redis":
		if c.RedisURL == "" {
			return apperrors.NewConfigMissingRequired("REDIS_URL")
		}
	default:
		return apperrors.NewConfigValidationFailed("SESSION_BACKEND", "must be store or redis")
	}

	if c.PasswordScheme != "bcrypt" && c.PasswordScheme != "pbkdf2" {
		return apperrors.NewConfigValidationFailed("PASSWORD_SCHEME", "must be bcrypt or pbkdf2")
	}
	if c.SessionTTL <= 0 {
		return apperrors.NewConfigValidationFailed("SESSION_TTL", "must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
