package config

import (
	"os"
	"strconv"

	"skincase_backend/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	AllowedOrigin string

	// Economy
	WelcomeXcoins  int64 // starting balance for new accounts
	CaseOpenXP     int64 // battlepass XP per case opened
	SellRatePct    int64 // percent of skin value paid on sell-back
	BonusXcoins    int64 // daily low-balance bonus
	BonusThreshold int64 // balance below which the bonus is claimable
}

// Load reads config from env (.env supported for local runs)
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		LogLevel: logLevel,
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		WelcomeXcoins:  envInt64("WELCOME_XCOINS", 1000),
		CaseOpenXP:     envInt64("CASE_OPEN_XP", 50),
		SellRatePct:    envInt64("SELL_RATE_PCT", 80),
		BonusXcoins:    envInt64("BONUS_XCOINS", 500),
		BonusThreshold: envInt64("BONUS_THRESHOLD", 100),
	}
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}
