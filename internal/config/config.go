package config

import (
	"os"
	"strconv"
	"strings"
)

// Config centralizes runtime settings for the API and worker.
type Config struct {
	Port string

	AuthToken          string
	CORSAllowedOrigins []string

	DatabaseURL string

	OpenAIAPIKey           string
	OpenAIBaseURL          string
	OpenAITimeoutMS        int
	OpenAIMaxRetries       int
	OpenAITemperature      float64
	OpenAIMaxTokens        int
	OpenAIModel            string
	OpenAIFastModel        string
	OpenAIHighQualityModel string
	ForceDefaultModel      bool
	ComplexityThreshold    int

	ConcurrencyLimit int
	TierPauseMS      int

	SectionCacheTTLHours int
	ReportCacheTTLHours  int
	JobTTLHours          int
	SimilarReportLookup  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string
	RedisDLQ      string
	RedisGroup    string
	RedisConsumer string

	RateLimitRPS   float64
	RateLimitBurst int

	WorkerEnabled bool
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		AuthToken:          getEnv("API_AUTH_TOKEN", ""),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:          getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAITimeoutMS:        getEnvInt("OPENAI_TIMEOUT_MS", 60000),
		OpenAIMaxRetries:       getEnvInt("OPENAI_MAX_RETRIES", 3),
		OpenAITemperature:      getEnvFloat("OPENAI_TEMPERATURE", 0.5),
		OpenAIMaxTokens:        getEnvInt("OPENAI_MAX_TOKENS", 1000),
		OpenAIModel:            getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAIFastModel:        getEnv("OPENAI_FAST_MODEL", "gpt-3.5-turbo"),
		OpenAIHighQualityModel: getEnv("OPENAI_HIGH_QUALITY_MODEL", "gpt-4.1-mini"),
		ForceDefaultModel:      getEnvBool("FORCE_DEFAULT_MODEL", false),
		ComplexityThreshold:    getEnvInt("COMPLEXITY_THRESHOLD", 100),

		ConcurrencyLimit: getEnvInt("CONCURRENCY_LIMIT", 5),
		TierPauseMS:      getEnvInt("TIER_PAUSE_MS", 100),

		SectionCacheTTLHours: getEnvInt("SECTION_CACHE_TTL_HOURS", 720),
		ReportCacheTTLHours:  getEnvInt("REPORT_CACHE_TTL_HOURS", 168),
		JobTTLHours:          getEnvInt("JOB_TTL_HOURS", 168),
		SimilarReportLookup:  getEnvBool("SIMILAR_REPORT_LOOKUP", true),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisStream:   getEnv("REDIS_STREAM", "tia_jobs"),
		RedisDLQ:      getEnv("REDIS_DLQ_STREAM", "tia_jobs_dlq"),
		RedisGroup:    getEnv("REDIS_GROUP", "tia_workers"),
		RedisConsumer: getEnv("REDIS_CONSUMER", "api-1"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),

		WorkerEnabled: getEnvBool("WORKER_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
