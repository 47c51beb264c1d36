// Package config reads process settings from the environment. main loads a
// .env file (godotenv) before calling Load, so both sources apply.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port     string
	LogLevel string

	DatabaseType string // memory | sqlite | postgres
	DatabasePath string
	DatabaseURL  string

	RedisAddr     string // empty: in-process statistic cache
	RedisPassword string
	RedisDB       int

	AMQPURL   string // empty: in-process job worker
	AMQPQueue string

	SESRegion    string
	SESFromEmail string // empty: e-mails are only logged
	SESFromName  string

	ReminderInterval     time.Duration
	StatsRefreshInterval time.Duration

	WordsDir string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:                 getEnv("PORT", "5175"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DatabaseType:         getEnv("DB_TYPE", "sqlite"),
		DatabasePath:         getEnv("DB_PATH", "./data/hangman.db"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getInt("REDIS_DB", 0),
		AMQPURL:              os.Getenv("AMQP_URL"),
		AMQPQueue:            getEnv("AMQP_QUEUE", "hangman.jobs"),
		SESRegion:            getEnv("SES_REGION", "us-east-1"),
		SESFromEmail:         os.Getenv("SES_FROM_EMAIL"),
		SESFromName:          getEnv("SES_FROM_NAME", "Hangman"),
		ReminderInterval:     getDuration("REMINDER_INTERVAL", time.Hour),
		StatsRefreshInterval: getDuration("STATS_REFRESH_INTERVAL", 0),
		WordsDir:             os.Getenv("WORDS_DIR"),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return d
	}
	return def
}
