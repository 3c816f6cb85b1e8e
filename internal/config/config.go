package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/wordflash/internal/models"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	CatalogPath       string
	DeckBaseURL       string
	DeckDir           string
	NavigationMode    string
	RandomOrientation bool
	GradeDelayMs      int
	FetchTimeoutSecs  int
	LoadWorkerCount   int
	LoadQueueSize     int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:wordflash.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		CatalogPath:       envOr("CATALOG_PATH", ""),
		DeckBaseURL:       envOr("DECK_BASE_URL", ""),
		DeckDir:           envOr("DECK_DIR", "decks"),
		NavigationMode:    envOr("NAVIGATION_MODE", string(models.ModeLinear)),
		RandomOrientation: envBoolOr("RANDOM_ORIENTATION", true),
		GradeDelayMs:      envIntOr("GRADE_DELAY_MS", 400),
		FetchTimeoutSecs:  envIntOr("FETCH_TIMEOUT_SECONDS", 15),
		LoadWorkerCount:   envIntOr("LOAD_WORKER_COUNT", 2),
		LoadQueueSize:     envIntOr("LOAD_QUEUE_SIZE", 16),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if _, err := models.ParseMode(c.NavigationMode); err != nil {
		problems = append(problems, fmt.Sprintf("NAVIGATION_MODE must be linear or random (got %q)", c.NavigationMode))
	}
	if c.DeckBaseURL != "" {
		u, err := url.Parse(c.DeckBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("DECK_BASE_URL must be an absolute http(s) URL (got %q)", c.DeckBaseURL))
		}
	}
	if c.DeckBaseURL == "" && strings.TrimSpace(c.DeckDir) == "" {
		problems = append(problems, "DECK_DIR cannot be empty when DECK_BASE_URL is unset")
	}
	if c.CatalogPath != "" {
		if _, err := os.Stat(c.CatalogPath); err != nil {
			problems = append(problems, fmt.Sprintf("CATALOG_PATH %q: %v", c.CatalogPath, err))
		}
	}
	if c.GradeDelayMs < 0 {
		problems = append(problems, "GRADE_DELAY_MS cannot be negative")
	}
	if c.FetchTimeoutSecs <= 0 {
		problems = append(problems, "FETCH_TIMEOUT_SECONDS must be positive")
	}
	if c.LoadWorkerCount <= 0 {
		problems = append(problems, "LOAD_WORKER_COUNT must be positive")
	}
	if c.LoadQueueSize <= 0 {
		problems = append(problems, "LOAD_QUEUE_SIZE must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Mode returns the parsed navigation mode, defaulting to linear.
func (c Config) Mode() models.Mode {
	m, err := models.ParseMode(c.NavigationMode)
	if err != nil {
		return models.ModeLinear
	}
	return m
}

func (c Config) GradeDelay() time.Duration {
	return time.Duration(c.GradeDelayMs) * time.Millisecond
}

func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSecs) * time.Second
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
