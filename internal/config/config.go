package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything read from the environment. Load it after
// godotenv has populated the process env in main.
type Config struct {
	AppAddr string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisAddr string
	RedisPass string
	RedisDB   int

	JWTSecret string

	// TelegramBotToken enables the telegram push sink when set; the
	// dispatcher falls back to the logging sink otherwise.
	TelegramBotToken string

	// UploadDir is where the local file-store adapter writes chat pictures.
	UploadDir string

	AsynqConcurrency int
}

func Load() *Config {
	return &Config{
		AppAddr:          getEnv("APP_ADDR", ":8080"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "user"),
		DBPass:           getEnv("DB_PASSWORD", "password"),
		DBName:           getEnv("DB_NAME", "educhatdb"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 10),
	}
}

// DSN builds the postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
