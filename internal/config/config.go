package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Lexicon override file. Empty means the embedded defaults.
	LexiconPath string

	// LINE messaging channel credentials.
	LineChannelSecret string
	LineChannelToken  string

	// LLM backends. Either key may be empty; the pipeline degrades to
	// keyword-only analysis when no client can be built.
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string
	LLMTimeout   time.Duration

	// Optional reply cache.
	RedisAddr     string
	RedisPassword string
	ReplyCacheTTL time.Duration

	// Session store sizing.
	SessionCap int
	SessionTTL time.Duration

	// Per-IP rate limiting on the HTTP surface.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LexiconPath:        getEnv("LEXICON_PATH", ""),
		LineChannelSecret:  getEnv("LINE_CHANNEL_SECRET", ""),
		LineChannelToken:   getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		LLMTimeout:         getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		ReplyCacheTTL:      getEnvAsDuration("REPLY_CACHE_TTL", 1*time.Hour),
		SessionCap:         getEnvAsInt("SESSION_CAP", 10000),
		SessionTTL:         getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
