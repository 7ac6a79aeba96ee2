package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string

	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	OpenAIOrg         string
	OpenAICallTimeout time.Duration

	GenerationMaxAttempts int
	GenerationRetryDelay  time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:             os.Getenv("OPENAI_ORG"),
		OpenAICallTimeout:     time.Second * time.Duration(getEnvInt("OPENAI_CALL_TIMEOUT_SECONDS", 60)),
		GenerationMaxAttempts: getEnvInt("GENERATION_MAX_ATTEMPTS", 3),
		GenerationRetryDelay:  time.Second * time.Duration(getEnvInt("GENERATION_RETRY_DELAY_SECONDS", 1)),
		HTTPReadTimeout:       time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:      time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:       time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:       getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:           getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	if cfg.GenerationMaxAttempts < 1 {
		cfg.GenerationMaxAttempts = 1
	}

	// The generation endpoint responds synchronously, so the server's write
	// timeout must outlive the slowest legal generation: every attempt can
	// run to the call timeout, with backoff sleeps in between.
	if worst := generationWorstCase(cfg); cfg.HTTPWriteTimeout <= worst {
		cfg.HTTPWriteTimeout = worst + 10*time.Second
	}

	return cfg, nil
}

func generationWorstCase(cfg *Config) time.Duration {
	worst := time.Duration(cfg.GenerationMaxAttempts) * cfg.OpenAICallTimeout
	delay := cfg.GenerationRetryDelay
	for i := 1; i < cfg.GenerationMaxAttempts; i++ {
		worst += delay
		delay *= 2
	}
	return worst
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
