package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"jackpot/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP configuration
	HTTPAddr string

	// Draw configuration
	DrawSchedule string // Cron expression for the weekly cycle, UTC

	// Prize configuration
	PrizeConfigPath string // Path to the TOML prize and commission tables

	// Tip bounds
	MinTipCents int64
	MaxTipCents int64

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// HTTP
		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		// Draw cycle
		DrawSchedule: os.Getenv("DRAW_SCHEDULE"),

		// Prize tables
		PrizeConfigPath: getEnvWithDefault("PRIZE_CONFIG_PATH", "prizes.toml"),

		// Tip bounds with defaults: $5 minimum, $1000 maximum
		MinTipCents: 500,
		MaxTipCents: 100000,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if min := os.Getenv("MIN_TIP_CENTS"); min != "" {
		if parsed, err := strconv.ParseInt(min, 10, 64); err == nil {
			config.MinTipCents = parsed
		}
	}
	if max := os.Getenv("MAX_TIP_CENTS"); max != "" {
		if parsed, err := strconv.ParseInt(max, 10, 64); err == nil {
			config.MaxTipCents = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
		if config.MinTipCents <= 0 || config.MaxTipCents < config.MinTipCents {
			return nil, fmt.Errorf("invalid tip bounds: [%d, %d]", config.MinTipCents, config.MaxTipCents)
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment: "test",
		HTTPAddr:    ":0",
		MinTipCents: 500,
		MaxTipCents: 100000,
	}
}
