package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required
	TelegramAPIID    int
	TelegramAPIHash  string
	TelegramBotToken string
	GeminiAPIKey     string

	// Google Calendar credentials
	GoogleCredentialsFile string
	GoogleTokenFile       string
	CalendarID            string

	// Optional with defaults
	Timezone         string
	GeminiModel      string
	Categories       []string
	DefaultCategory  string
	ExcludeSubstring string
	FetchLimit       int64
	DisplayLimit     int
	SessionFile      string
}

func LoadFromEnv() *Config {
	cfg := &Config{
		// Required
		TelegramAPIID:    getEnvAsIntOrDefault("SCHEDBOT_TELEGRAM_API_ID", 0),
		TelegramAPIHash:  os.Getenv("SCHEDBOT_TELEGRAM_API_HASH"),
		TelegramBotToken: os.Getenv("SCHEDBOT_TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),

		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),
		GoogleTokenFile:       getEnvOrDefault("GOOGLE_TOKEN_FILE", "./token.json"),
		CalendarID:            getEnvOrDefault("SCHEDBOT_CALENDAR_ID", "primary"),

		// Optional with defaults
		Timezone:         getEnvOrDefault("SCHEDBOT_TIMEZONE", "Asia/Jakarta"),
		GeminiModel:      getEnvOrDefault("SCHEDBOT_GEMINI_MODEL", "gemini-1.5-flash"),
		Categories:       getEnvAsListOrDefault("SCHEDBOT_CATEGORIES", defaultCategories),
		DefaultCategory:  getEnvOrDefault("SCHEDBOT_DEFAULT_CATEGORY", "Other"),
		ExcludeSubstring: getEnvOrDefault("SCHEDBOT_EXCLUDE_SUBSTRING", "happy birthday"),
		FetchLimit:       int64(getEnvAsIntOrDefault("SCHEDBOT_FETCH_LIMIT", 20)),
		DisplayLimit:     getEnvAsIntOrDefault("SCHEDBOT_DISPLAY_LIMIT", 10),
		SessionFile:      getEnvOrDefault("SCHEDBOT_SESSION_FILE", "./telegram.session"),
	}

	return cfg
}

var defaultCategories = []string{"drone", "drone fpv", "cinematic", "short movie", "photo"}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
