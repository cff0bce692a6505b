package config

import (
	"os"
	"strconv"

	"entangle_backend/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	RedisAddr   string
	LogLevel    string
	LogJSON     bool

	// Game timing
	RoundDurationSeconds int

	// Stale-session cleanup
	CleanupGraceSeconds    int
	CleanupIntervalSeconds int

	// Rate limits
	GameRateLimit  int
	GameRateWindow int
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		AppPort:                port,
		DatabaseURL:            dbURL,
		RedisAddr:              redisAddr,
		LogLevel:               logLevel,
		LogJSON:                os.Getenv("LOG_JSON") == "true",
		RoundDurationSeconds:   envInt("ROUND_DURATION_SECONDS", 60),
		CleanupGraceSeconds:    envInt("CLEANUP_GRACE_SECONDS", 120),
		CleanupIntervalSeconds: envInt("CLEANUP_INTERVAL_SECONDS", 60),
		GameRateLimit:          envInt("GAME_RATE_LIMIT", 60),
		GameRateWindow:         envInt("GAME_RATE_WINDOW", 60),
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
