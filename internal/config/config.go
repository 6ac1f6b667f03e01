package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// External classifier (Gemini). When disabled, categorization stops at
	// the user-pattern tier and falls through to the default.
	ClassifierEnabled bool
	ClassifierModel   string

	// Batch categorization pacing, to respect classifier rate limits.
	CategorizerBatchSize  int
	CategorizerBatchDelay time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		ClassifierEnabled: getEnvBool("CLASSIFIER_ENABLED", false),
		ClassifierModel:   getEnv("CLASSIFIER_MODEL", "gemini-2.5-flash"),

		CategorizerBatchSize: getEnvInt("CATEGORIZER_BATCH_SIZE", 10),
	}

	delayMs := getEnvInt("CATEGORIZER_BATCH_DELAY_MS", 100)
	config.CategorizerBatchDelay = time.Duration(delayMs) * time.Millisecond

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
