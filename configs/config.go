package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host            string
	Port            int
	CORSOrigins     string
	RateLimitMax    int
	RateLimitWindow time.Duration
	AuthRateRPS     float64
	AuthRateBurst   int
	JWTSecret       string
	JWTTTL          time.Duration
	StorageDriver   string // "memory" or "postgres"
	DBHost          string
	DBPort          int
	DBUser          string
	DBPassword      string
	DBName          string
	RedisAddr       string // empty disables the task cache
	StaticDir       string
	ShutdownTimeout time.Duration
}

// LoadConfig reads the environment once at startup. There is no hot reload.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		Host:            getEnv("HOST", "0.0.0.0"),
		Port:            getEnvInt("PORT", 3004),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		AuthRateRPS:     getEnvFloat("AUTH_RATE_LIMIT_RPS", 1),
		AuthRateBurst:   getEnvInt("AUTH_RATE_LIMIT_BURST", 5),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		JWTTTL:          getEnvDuration("JWT_TTL", time.Hour),
		StorageDriver:   getEnv("STORAGE_DRIVER", "memory"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnvInt("DB_PORT", 5432),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "tasks"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		StaticDir:       getEnv("STATIC_DIR", "./public"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
