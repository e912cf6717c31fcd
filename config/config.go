package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port string

	JWTSecret    string
	JWTExpiresIn time.Duration

	InitialAdminEmail    string
	InitialAdminPassword string

	RedisURL         string
	ElasticsearchURL string

	RateLimitAuthRPS   float64
	RateLimitAuthBurst int

	// TrustedProxies may set X-Forwarded-For; empty means the peer address is the client.
	TrustedProxies []string
}

// Load reads the optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}

	return &Config{
		Port:                 getEnv("PORT", "3000"),
		JWTSecret:            getEnv("JWT_SECRET", "default_secret"),
		JWTExpiresIn:         getEnvDuration("JWT_EXPIRES_IN", 60*time.Minute),
		InitialAdminEmail:    getEnv("INITIAL_ADMIN_EMAIL", "admin@example.com"),
		InitialAdminPassword: getEnv("INITIAL_ADMIN_PASSWORD", "123456"),
		RedisURL:             getEnv("REDIS_URL", ""),
		ElasticsearchURL:     getEnv("ELASTICSEARCH_URL", ""),
		RateLimitAuthRPS:     getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst:   getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		TrustedProxies:       getEnvList("TRUSTED_PROXIES"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var result []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90m", "1h30m") and whole days ("7d").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if n := len(value); n > 1 && value[n-1] == 'd' {
		if days, err := strconv.Atoi(value[:n-1]); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	logrus.Warnf("invalid duration %q for %s, using %s", value, key, defaultValue)
	return defaultValue
}
