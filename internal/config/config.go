package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Server   ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// AIConfig holds chat-completion provider settings
type AIConfig struct {
	APIToken    string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// AuthConfig holds access-token settings
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

// UploadConfig holds file upload settings
type UploadConfig struct {
	Dir         string
	MaxUploadMB int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		AI: AIConfig{
			APIToken:    os.Getenv("HF_API_TOKEN"),
			Model:       getEnvOrDefault("HF_MODEL_ID", "Qwen/Qwen2.5-72B-Instruct"),
			BaseURL:     getEnvOrDefault("HF_BASE_URL", "https://router.huggingface.co/v1"),
			MaxTokens:   getEnvIntOrDefault("AI_MAX_TOKENS", 3000),
			Temperature: getEnvFloatOrDefault("AI_TEMPERATURE", 0.3),
			Timeout:     getEnvDurationOrDefault("AI_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			Secret:   os.Getenv("SECRET_KEY"),
			TokenTTL: getEnvDurationOrDefault("TOKEN_TTL", 7*24*time.Hour),
		},
		Upload: UploadConfig{
			Dir:         getEnvOrDefault("UPLOAD_DIR", "uploads"),
			MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_SIZE_MB", 10),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if config.Auth.Secret == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if config.AI.APIToken == "" {
		return fmt.Errorf("HF_API_TOKEN is required")
	}
	if config.Upload.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
