package config

import (
	"testing"
	"time"
)

func TestLoadDefaultsUseReflectivePreset(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Preset != PresetReflective {
		t.Fatalf("Preset = %q, want %q", cfg.Preset, PresetReflective)
	}
	if cfg.ReflectionPeriod != 3 {
		t.Fatalf("ReflectionPeriod = %d, want 3", cfg.ReflectionPeriod)
	}
	if cfg.InsightCap != 3 {
		t.Fatalf("InsightCap = %d, want 3", cfg.InsightCap)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Fatalf("Model = %q, want gpt-4o-mini", cfg.Model)
	}
	if cfg.RateInterval != 500*time.Millisecond {
		t.Fatalf("RateInterval = %v, want 500ms", cfg.RateInterval)
	}
}

func TestLoadKnowledgePresetTuning(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("COACH_PRESET", PresetKnowledge)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReflectionPeriod != 5 {
		t.Fatalf("ReflectionPeriod = %d, want 5", cfg.ReflectionPeriod)
	}
	if cfg.InsightCap != 20 {
		t.Fatalf("InsightCap = %d, want 20", cfg.InsightCap)
	}
}

func TestLoadExplicitTuningOverridesPreset(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("COACH_PRESET", PresetKnowledge)
	t.Setenv("COACH_REFLECTION_PERIOD", "7")
	t.Setenv("COACH_INSIGHT_CAP", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReflectionPeriod != 7 {
		t.Fatalf("ReflectionPeriod = %d, want explicit 7", cfg.ReflectionPeriod)
	}
	if cfg.InsightCap != 4 {
		t.Fatalf("InsightCap = %d, want explicit 4", cfg.InsightCap)
	}
}

func TestLoadRejectsUnknownPreset(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("COACH_PRESET", "aggressive")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() accepted unknown preset")
	}
}

func TestLoadRejectsUnknownLLMMode(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("COACH_LLM_MODE", "grpc")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() accepted unknown llm mode")
	}
}

func TestLoadRejectsZeroInsightCap(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("COACH_INSIGHT_CAP", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() accepted zero insight cap")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_AUTH_TOKEN",
		"DATA_DIR",
		"DATABASE_URL",
		"OPENAI_API_KEY",
		"OPENAI_BASE_URL",
		"COACH_MODEL",
		"COACH_TEMPERATURE",
		"COACH_MAX_TOKENS",
		"COACH_LLM_MODE",
		"COACH_LLM_TIMEOUT",
		"COACH_PRESET",
		"COACH_REFLECTION_PERIOD",
		"COACH_INSIGHT_CAP",
		"COACH_PERSONA",
		"COACH_RATE_INTERVAL",
		"COACH_RATE_BURST",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
