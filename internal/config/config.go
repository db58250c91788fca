package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool

	// Auth
	JWTSecret string

	// Database; empty means run on the embedded demo fleet
	DatabaseURL string
	FixturePath string

	// Firebase
	FirebaseCredentialsBase64 string
	FirebaseCredentialsFile   string

	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	AdviceTimeout time.Duration

	// RabbitMQ; empty disables the event exchange
	RabbitMQURL      string
	RabbitMQExchange string
}

// LoadConfig loads configuration from a .env file (if any) and the environment
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,
		Debug:        getEnvAsBool("DEBUG", false),

		JWTSecret: getEnv("APP_JWT_SECRET", "your-secret-key-change-this-in-production"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		FixturePath: getEnv("FLEET_FIXTURE", ""),

		FirebaseCredentialsBase64: getEnv("FIREBASE_CREDENTIALS_BASE64", ""),
		FirebaseCredentialsFile:   getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),
		AdviceTimeout: time.Duration(getEnvAsInt("ADVICE_TIMEOUT_SECONDS", 20)) * time.Second,

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "dispatch_events"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
