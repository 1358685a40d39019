// Package config loads runtime settings from the environment (and an
// optional .env file).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backends for the sentiment model and the entity recognizer.
const (
	BackendGemini    = "gemini"
	BackendOpenAI    = "openai"
	BackendLexicon   = "lexicon"
	BackendHeuristic = "heuristic"
)

type Config struct {
	// Model settings
	ModelBackend     string // gemini | openai | lexicon
	NERBackend       string // gemini | openai | heuristic
	GeminiAPIKey     string
	GeminiModel      string
	OpenAIAPIKey     string
	OpenAIModel      string
	MaxModelRequests int           // daily cap across backends (0 = unlimited)
	ModelCacheTTL    time.Duration // reply cache lifetime (0 = disabled)

	// Search settings
	SearchBaseURL     string
	SearchRSSURL      string
	SearchRSSFallback bool

	// Extraction settings
	MinTextRunes     int
	KeywordOverrides bool
	TopicsConfigPath string

	// Pacing
	ThrottleMin     time.Duration
	ThrottleMax     time.Duration
	FetchRatePerSec float64

	// App settings
	Debug           bool
	HTTPAddr        string
	RequestTimeout  time.Duration // per outbound call
	AnalysisTimeout time.Duration // per API request
	RetryAttempts   int
	RetryDelay      time.Duration
}

func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		// Default values
		ModelBackend:      BackendGemini,
		NERBackend:        BackendHeuristic,
		GeminiModel:       "gemini-1.5-flash",
		OpenAIModel:       "gpt-4o-mini",
		ModelCacheTTL:     time.Hour,
		SearchBaseURL:     "https://www.google.com/search",
		SearchRSSURL:      "https://news.google.com/rss/search",
		SearchRSSFallback: true,
		MinTextRunes:      150,
		KeywordOverrides:  true,
		ThrottleMin:       500 * time.Millisecond,
		ThrottleMax:       1500 * time.Millisecond,
		FetchRatePerSec:   2,
		HTTPAddr:          ":8000",
		RequestTimeout:    10 * time.Second,
		AnalysisTimeout:   5 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        2 * time.Second,
	}

	cfg.ModelBackend = getEnvOrDefault("MODEL_BACKEND", cfg.ModelBackend)
	cfg.NERBackend = getEnvOrDefault("NER_BACKEND", cfg.NERBackend)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.MaxModelRequests = getEnvIntOrDefault("MAX_MODEL_REQUESTS", cfg.MaxModelRequests)
	cfg.ModelCacheTTL = getEnvDurationOrDefault("MODEL_CACHE_TTL", cfg.ModelCacheTTL)

	cfg.SearchBaseURL = getEnvOrDefault("SEARCH_BASE_URL", cfg.SearchBaseURL)
	cfg.SearchRSSURL = getEnvOrDefault("SEARCH_RSS_URL", cfg.SearchRSSURL)
	cfg.SearchRSSFallback = getEnvBoolOrDefault("SEARCH_RSS_FALLBACK", cfg.SearchRSSFallback)

	if v := getEnvIntOrDefault("MIN_TEXT_RUNES", cfg.MinTextRunes); v > 0 {
		cfg.MinTextRunes = v
	}
	cfg.KeywordOverrides = getEnvBoolOrDefault("KEYWORD_OVERRIDES", cfg.KeywordOverrides)
	cfg.TopicsConfigPath = os.Getenv("TOPICS_CONFIG_PATH")

	cfg.ThrottleMin = getEnvDurationOrDefault("THROTTLE_MIN", cfg.ThrottleMin)
	cfg.ThrottleMax = getEnvDurationOrDefault("THROTTLE_MAX", cfg.ThrottleMax)
	if v := os.Getenv("FETCH_RATE_PER_SEC"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val >= 0 {
			cfg.FetchRatePerSec = val
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}
	cfg.HTTPAddr = getEnvOrDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.AnalysisTimeout = getEnvDurationOrDefault("ANALYSIS_TIMEOUT", cfg.AnalysisTimeout)
	if v := getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts); v > 0 {
		cfg.RetryAttempts = v
	}
	cfg.RetryDelay = getEnvDurationOrDefault("RETRY_DELAY", cfg.RetryDelay)

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("750ms", "10s").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	switch c.ModelBackend {
	case BackendGemini, BackendOpenAI, BackendLexicon:
	default:
		return fmt.Errorf("MODEL_BACKEND must be one of gemini, openai, lexicon (got %q)", c.ModelBackend)
	}
	switch c.NERBackend {
	case BackendGemini, BackendOpenAI, BackendHeuristic:
	default:
		return fmt.Errorf("NER_BACKEND must be one of gemini, openai, heuristic (got %q)", c.NERBackend)
	}
	if c.usesBackend(BackendGemini) && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
	}
	if c.usesBackend(BackendOpenAI) && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for the openai backend")
	}
	if c.ThrottleMax < c.ThrottleMin {
		return fmt.Errorf("THROTTLE_MAX (%s) must not be below THROTTLE_MIN (%s)", c.ThrottleMax, c.ThrottleMin)
	}
	if c.MaxModelRequests < 0 {
		return fmt.Errorf("MAX_MODEL_REQUESTS must be >= 0")
	}
	return nil
}

func (c *Config) usesBackend(name string) bool {
	return c.ModelBackend == name || c.NERBackend == name
}
