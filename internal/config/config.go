package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// Firestore (chat sessions, verses, chapter mirror)
	FirestoreProjectID string

	// Bhagavad Gita chapter API (RapidAPI)
	RapidAPIKey  string
	RapidAPIHost string

	// Chapter sync worker
	SyncWorkers       int
	SyncIntervalHours int

	// Uploads (chat attachments)
	StoragePath string

	// SMTP
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Frontend
	FrontendURL string

	// Google sign-in
	GoogleClientID string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		FirestoreProjectID:   mustGetEnv("FIRESTORE_PROJECT_ID"),
		RapidAPIKey:          mustGetEnv("RAPID_API_KEY"),
		RapidAPIHost:         getEnvOrDefault("RAPID_API_HOST", "bhagavad-gita3.p.rapidapi.com"),
		SyncWorkers:          getEnvAsIntOrDefault("SYNC_WORKERS", 2),
		SyncIntervalHours:    getEnvAsIntOrDefault("SYNC_INTERVAL_HOURS", 24),
		StoragePath:          getEnvOrDefault("STORAGE_PATH", "./uploads"),
		SMTPHost:             getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:             getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:             getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:             getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:             getEnvOrDefault("SMTP_FROM", "noreply@gitaai.app"),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		GoogleClientID:       getEnvOrDefault("GOOGLE_CLIENT_ID", ""),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
