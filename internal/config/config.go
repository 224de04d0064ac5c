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
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	PublicURL      string
	Debug          bool

	// Auth
	JWTSecret     string
	TokenDuration time.Duration

	// Photo storage
	StoragePath   string
	S3Bucket      string
	S3Endpoint    string
	S3PublicURL   string
	UploadMaxSize int64

	// AWS / email
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// Content generation
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Client settings used by robinctl
	BackendURL     string
	AccessToken    string
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./robinhoodarmy.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		PublicURL:      getEnv("PUBLIC_URL", "http://localhost:8080"),
		Debug:          getEnvBool("DEBUG", false),

		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		TokenDuration: getEnvDuration("TOKEN_DURATION", 24*time.Hour),

		StoragePath:   getEnv("STORAGE_PATH", "./storage"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3PublicURL:   getEnv("S3_PUBLIC_URL", ""),
		UploadMaxSize: 5 * 1024 * 1024, // 5MB

		AWSRegion:    getEnv("AWS_REGION", "ap-south-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Robinhood Army"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-pro"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		BackendURL:     getEnv("ROBINHOOD_URL", "http://localhost:8080"),
		AccessToken:    getEnv("ROBINHOOD_TOKEN", ""),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid boolean for %s: %q, using default", key, value)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default", key, value)
		return defaultValue
	}
	return d
}
