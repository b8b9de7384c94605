package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSessionSecret = "dev-session-secret-change-me"

// Config holds application configuration values loaded from environment variables.
type Config struct {
	AppEnv         string
	HTTPPort       string
	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseURL    string
	SessionSecret  string
	SessionTTL     time.Duration
	CookieSecure   bool
	AllowedOrigins []string
	RequestTimeout time.Duration

	// Reserved assistant identity, looked up or created at startup.
	BotEmail     string
	BotFirstName string
	BotLastName  string

	LogLevel  string
	LogFormat string

	// EnvFileLoaded reports whether a .env file was found. Informational only.
	EnvFileLoaded bool
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// .env is a development convenience; production relies on real environment variables
	envLoaded := godotenv.Load() == nil

	appEnv := normalizeEnv(getEnv("APP_ENV", "development"))

	cfg := &Config{
		AppEnv:         appEnv,
		HTTPPort:       getEnv("HTTP_PORT", "5000"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		CookieSecure:   getEnvBool("COOKIE_SECURE", appEnv == "production"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		BotEmail:       strings.ToLower(strings.TrimSpace(getEnv("BOT_EMAIL", "bot@houyemai.com"))),
		BotFirstName:   getEnv("BOT_FIRST_NAME", "HouyemAI"),
		BotLastName:    getEnv("BOT_LAST_NAME", "Assistant"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		EnvFileLoaded:  envLoaded,
	}

	ttlHours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer, got %q", os.Getenv("SESSION_TTL_HOURS"))
	}
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	timeoutSecs, err := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "60"))
	if err != nil || timeoutSecs <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be a positive integer, got %q", os.Getenv("REQUEST_TIMEOUT_SECONDS"))
	}
	cfg.RequestTimeout = time.Duration(timeoutSecs) * time.Second

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable is not set")
		}
	case "sqlite":
		if c.DatabaseURL == "" {
			c.DatabaseURL = "legalchat.db"
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (expected postgres or sqlite)", c.DatabaseDriver)
	}

	if c.SessionSecret == "" {
		if c.AppEnv == "production" {
			return errors.New("SESSION_SECRET is required in production")
		}
		c.SessionSecret = defaultSessionSecret
	}

	if c.BotEmail == "" {
		return errors.New("BOT_EMAIL must not be empty")
	}
	return nil
}

// CookieSameSite mirrors the browser client's deployment: cross-site in production, lax locally.
func (c *Config) CookieSameSite() http.SameSite {
	if c.AppEnv == "production" {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// UsingDefaultSecret reports whether the insecure development secret is in effect.
func (c *Config) UsingDefaultSecret() bool {
	return c.SessionSecret == defaultSessionSecret
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
