package config

import (
	"dungeon-chat/internal/logger"
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Auth     AuthConfig
	Game     GameConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// LLMConfig holds completion-service configuration
type LLMConfig struct {
	OpenAIAPIKey     string
	Model            string
	ModerationModel  string
	Timeout          time.Duration
	Temperature      float64
	IntroTemperature float64
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret       []byte
	TokenExpiration time.Duration
}

// GameConfig holds gameplay tuning knobs
type GameConfig struct {
	// ContextWindow is how many committed turns are replayed to the model
	ContextWindow int
	// LowHealthThreshold triggers the cautionary directive in the prompt
	LowHealthThreshold int
}

// LoadConfig loads and validates application configuration from environment
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{}

	config.Server = ServerConfig{
		Port: getEnvOrDefault("SERVER_PORT", "8080"),
	}

	config.Database = DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "postgres"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		Name:     getEnvOrDefault("DB_NAME", "dungeonchat"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		logger.Log.Warn("OPENAI_API_KEY environment variable not set")
	}

	config.LLM = LLMConfig{
		OpenAIAPIKey:     apiKey,
		Model:            getEnvOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		ModerationModel:  getEnvOrDefault("OPENAI_MODERATION_MODEL", "omni-moderation-latest"),
		Timeout:          getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
		Temperature:      getEnvAsFloat("OPENAI_TEMPERATURE", 0.8),
		IntroTemperature: getEnvAsFloat("OPENAI_INTRO_TEMPERATURE", 0.9),
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable must be set")
	}
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters (current length: %d)", len(jwtSecret))
	}

	config.Auth = AuthConfig{
		JWTSecret:       []byte(jwtSecret),
		TokenExpiration: getEnvAsDuration("JWT_TOKEN_EXPIRATION", 24*time.Hour),
	}

	config.Game = GameConfig{
		ContextWindow:      getEnvAsInt("GAME_CONTEXT_WINDOW", 10),
		LowHealthThreshold: getEnvAsInt("GAME_LOW_HEALTH_THRESHOLD", 30),
	}

	return config, nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logger.Log.WithField("key", key).Warn("Invalid integer in environment, using default")
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Log.WithField("key", key).Warn("Invalid float in environment, using default")
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Log.WithField("key", key).Warn("Invalid duration in environment, using default")
		return fallback
	}
	return parsed
}
