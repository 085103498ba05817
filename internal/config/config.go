package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Coaching presets. The source material ran two tunings of the
// self-reflection loop; both stay selectable instead of hard-coding one.
const (
	// PresetReflective reflects often and keeps a small rolling window of
	// coaching insights.
	PresetReflective = "reflective"
	// PresetKnowledge reflects less often and accumulates a larger tip log
	// that also feeds the shared knowledge base.
	PresetKnowledge = "knowledge"
)

// Config contains all runtime settings for the golf coach service.
type Config struct {
	BindAddr                 string
	MetricsNamespace         string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration

	AllowAnyOrigin bool
	AuthToken      string

	DataDir     string
	DatabaseURL string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	Temperature   float64
	MaxTokens     int
	LLMMode       string
	LLMTimeout    time.Duration

	Preset           string
	ReflectionPeriod int
	InsightCap       int
	DefaultPersona   string

	RateInterval time.Duration
	RateBurst    int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "golfpro"),
		AllowAnyOrigin:   false,
		AuthToken:        stringsTrimSpace("APP_AUTH_TOKEN"),
		DataDir:          envOrDefault("DATA_DIR", "data"),
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
		OpenAIAPIKey:     stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:    stringsTrimSpace("OPENAI_BASE_URL"),
		// Defaults match the model settings the coach shipped with.
		Model:                    envOrDefault("COACH_MODEL", "gpt-4o-mini"),
		Temperature:              0.2,
		MaxTokens:                1000,
		LLMMode:                  envOrDefault("COACH_LLM_MODE", "auto"),
		LLMTimeout:               30 * time.Second,
		Preset:                   envOrDefault("COACH_PRESET", PresetReflective),
		DefaultPersona:           envOrDefault("COACH_PERSONA", "pro"),
		RateInterval:             500 * time.Millisecond,
		RateBurst:                1,
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 30 * time.Minute,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.Temperature, err = floatFromEnv("COACH_TEMPERATURE", cfg.Temperature)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxTokens, err = intFromEnv("COACH_MAX_TOKENS", cfg.MaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.LLMTimeout, err = durationFromEnv("COACH_LLM_TIMEOUT", cfg.LLMTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RateInterval, err = durationFromEnv("COACH_RATE_INTERVAL", cfg.RateInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.RateBurst, err = intFromEnv("COACH_RATE_BURST", cfg.RateBurst)
	if err != nil {
		return Config{}, err
	}

	// The preset picks the reflection tuning; explicit env values win.
	switch cfg.Preset {
	case PresetReflective:
		cfg.ReflectionPeriod = 3
		cfg.InsightCap = 3
	case PresetKnowledge:
		cfg.ReflectionPeriod = 5
		cfg.InsightCap = 20
	default:
		return Config{}, fmt.Errorf("COACH_PRESET must be %q or %q", PresetReflective, PresetKnowledge)
	}
	cfg.ReflectionPeriod, err = intFromEnv("COACH_REFLECTION_PERIOD", cfg.ReflectionPeriod)
	if err != nil {
		return Config{}, err
	}
	cfg.InsightCap, err = intFromEnv("COACH_INSIGHT_CAP", cfg.InsightCap)
	if err != nil {
		return Config{}, err
	}

	switch cfg.LLMMode {
	case "auto", "openai", "mock":
	default:
		return Config{}, fmt.Errorf("COACH_LLM_MODE must be auto, openai or mock")
	}
	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return Config{}, fmt.Errorf("COACH_TEMPERATURE must be between 0 and 2")
	}
	if cfg.MaxTokens <= 0 {
		return Config{}, fmt.Errorf("COACH_MAX_TOKENS must be positive")
	}
	if cfg.LLMTimeout <= 0 {
		return Config{}, fmt.Errorf("COACH_LLM_TIMEOUT must be positive")
	}
	if cfg.ReflectionPeriod <= 0 {
		return Config{}, fmt.Errorf("COACH_REFLECTION_PERIOD must be positive")
	}
	if cfg.InsightCap <= 0 {
		return Config{}, fmt.Errorf("COACH_INSIGHT_CAP must be positive")
	}
	if cfg.RateInterval < 0 {
		return Config{}, fmt.Errorf("COACH_RATE_INTERVAL must be >= 0")
	}
	if cfg.RateBurst <= 0 {
		return Config{}, fmt.Errorf("COACH_RATE_BURST must be positive")
	}
	if cfg.DataDir == "" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATA_DIR must be set when DATABASE_URL is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
