package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Email       string
	AppPassword string
	IMAPServer  string
	UseTLS      bool
	LogLevel    string
}

func NewConfig() (*Config, error) {
	env := os.Getenv("GMAIL_TUI_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	config := &Config{
		Environment: env,
		Email:       os.Getenv("GMAIL_TUI_EMAIL"),
		AppPassword: os.Getenv("GMAIL_TUI_APP_PASSWORD"),
		IMAPServer:  getEnvOrDefault("GMAIL_TUI_IMAP_SERVER", "imap.gmail.com:993"),
		UseTLS:      getEnvBoolOrDefault("GMAIL_TUI_TLS", true),
		LogLevel:    getEnvOrDefault("GMAIL_TUI_LOG_LEVEL", "warning"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Email == "" {
		return fmt.Errorf("GMAIL_TUI_EMAIL is required")
	}

	if c.AppPassword == "" {
		return fmt.Errorf("GMAIL_TUI_APP_PASSWORD is required")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
