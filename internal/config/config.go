package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when no OpenWeatherMap credential is configured.
var ErrMissingAPIKey = errors.New("OWM_API_KEY is not set")

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds everything resolved from the environment at startup.
type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	APIKey     string
	BaseURL    string
	APITimeout time.Duration

	SessionStore string
	DBPath       string
	Lang         string
}

// Load reads an optional .env file from the working directory and then
// resolves the configuration from the environment. Variables already set in
// the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFromEnv()
}

func LoadFromEnv() (Config, error) {
	appEnv := envOrDefault("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":" + envOrDefault("PORT", "8080")
	}

	apiKey := strings.TrimSpace(os.Getenv("OWM_API_KEY"))
	if apiKey == "" {
		return Config{}, ErrMissingAPIKey
	}

	timeout, err := time.ParseDuration(envOrDefault("OWM_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OWM_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("invalid OWM_TIMEOUT %s (must be positive)", timeout)
	}

	store := strings.ToLower(envOrDefault("SESSION_STORE", StoreMemory))
	switch store {
	case StoreMemory, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("invalid SESSION_STORE %q (allowed: memory, sqlite)", store)
	}

	return Config{
		AppEnv:       appEnv,
		LogLevel:     level,
		HTTPAddr:     httpAddr,
		APIKey:       apiKey,
		BaseURL:      strings.TrimRight(envOrDefault("OWM_BASE_URL", "https://api.openweathermap.org"), "/"),
		APITimeout:   timeout,
		SessionStore: store,
		DBPath:       envOrDefault("DB_PATH", "skycast.db"),
		Lang:         envOrDefault("SKYCAST_LANG", "en"),
	}, nil
}

func envOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
