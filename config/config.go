package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort     string
	AllowedOrigins string
	ComboProvider  string
	EDHRECBaseURL  string
	CacheTTLHours  string
	CacheMaxSize   string
	LogLevel       string
}

// SimplifiedCacheConfig holds the combo lookup cache configuration
type SimplifiedCacheConfig struct {
	DefaultTTL time.Duration `json:"default_ttl"`
	MaxSize    int           `json:"max_size"`
}

// DefaultCacheConfig returns default cache configuration.
// A zero TTL means entries live for the process lifetime.
func DefaultCacheConfig() *SimplifiedCacheConfig {
	return &SimplifiedCacheConfig{
		DefaultTTL: 0,
		MaxSize:    10000,
	}
}

// GetCacheTTL returns the cache TTL from environment or the unbounded default.
// Zero disables expiration entirely; a poisoned negative entry then lives for
// the process lifetime, which is a documented limitation of the lookup cache.
func (c *Config) GetCacheTTL() time.Duration {
	if c.CacheTTLHours == "" {
		return 0
	}

	hours, err := strconv.Atoi(c.CacheTTLHours)
	if err != nil || hours < 0 {
		logrus.Warnf("Invalid CACHE_TTL_HOURS value: %s, cache entries will not expire", c.CacheTTLHours)
		return 0
	}

	return time.Duration(hours) * time.Hour
}

// GetCacheMaxSize returns the cache size bound from environment or default
func (c *Config) GetCacheMaxSize() int {
	if c.CacheMaxSize == "" {
		return DefaultCacheConfig().MaxSize
	}

	size, err := strconv.Atoi(c.CacheMaxSize)
	if err != nil || size <= 0 {
		logrus.Warnf("Invalid CACHE_MAX_SIZE value: %s, using default", c.CacheMaxSize)
		return DefaultCacheConfig().MaxSize
	}

	return size
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8000"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		ComboProvider:  getEnv("COMBO_PROVIDER", "edhrec"),
		EDHRECBaseURL:  getEnv("EDHREC_BASE_URL", ""),
		CacheTTLHours:  getEnv("CACHE_TTL_HOURS", ""),
		CacheMaxSize:   getEnv("CACHE_MAX_SIZE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
