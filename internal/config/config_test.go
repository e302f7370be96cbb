package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"verdict-service/internal/verdicterr"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SERVICE_NAME", "ENV", "HTTP_PORT", "DEV_BYPASS_SUBSCRIPTION",
		"LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "LLM_MAX_TOKENS", "LLM_HTTP_TIMEOUT",
		"STT_PROVIDER", "STT_ENDPOINT", "STT_API_KEY", "STT_MODEL",
		"STT_LANGUAGE_CODE", "STT_SAMPLE_RATE_HZ",
		"FFMPEG_PATH", "FFPROBE_PATH", "AUDIO_MIN_DURATION",
		"AUDIO_UPLOAD_MAX_ATTEMPTS", "AUDIO_UPLOAD_BASE_DELAY",
		"STRIPE_SECRET_KEY", "STRIPE_PRICE_ID", "CHECKOUT_SUCCESS_URL", "CHECKOUT_CANCEL_URL",
		"STORE_DRIVER", "SQLITE_PATH",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_VERDICTS", "SERVICE_PRINCIPAL",
		"LOG_LEVEL", "METRICS_PORT",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Service.Name != "verdict-service" {
		t.Errorf("expected default service name 'verdict-service', got %s", cfg.Service.Name)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Service.BypassSubscription {
		t.Error("expected subscription bypass disabled by default")
	}

	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected default LLM model 'gpt-4o-mini', got %s", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 1024 {
		t.Errorf("expected default max tokens 1024, got %d", cfg.LLM.MaxTokens)
	}

	if cfg.STT.Provider != "mock" {
		t.Errorf("expected default STT provider 'mock', got %s", cfg.STT.Provider)
	}
	if cfg.STT.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.STT.SampleRateHz)
	}

	if cfg.Audio.MinDuration != 100*time.Millisecond {
		t.Errorf("expected default min duration 100ms, got %v", cfg.Audio.MinDuration)
	}
	if cfg.Audio.MaxAttempts != 3 {
		t.Errorf("expected default max attempts 3, got %d", cfg.Audio.MaxAttempts)
	}
	if cfg.Audio.BaseDelay != time.Second {
		t.Errorf("expected default base delay 1s, got %v", cfg.Audio.BaseDelay)
	}

	if cfg.Store.Driver != "memory" {
		t.Errorf("expected default store driver 'memory', got %s", cfg.Store.Driver)
	}

	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.Topic != "verdict.session.completed" {
		t.Errorf("expected default topic 'verdict.session.completed', got %s", cfg.Kafka.Topic)
	}

	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("STT_PROVIDER", "whisper")
	t.Setenv("AUDIO_UPLOAD_MAX_ATTEMPTS", "5")
	t.Setenv("AUDIO_UPLOAD_BASE_DELAY", "250ms")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("DEV_BYPASS_SUBSCRIPTION", "true")

	cfg := Load()

	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.STT.Provider != "whisper" {
		t.Errorf("expected provider 'whisper', got %s", cfg.STT.Provider)
	}
	if cfg.Audio.MaxAttempts != 5 {
		t.Errorf("expected max attempts 5, got %d", cfg.Audio.MaxAttempts)
	}
	if cfg.Audio.BaseDelay != 250*time.Millisecond {
		t.Errorf("expected base delay 250ms, got %v", cfg.Audio.BaseDelay)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Errorf("expected two trimmed brokers, got %v", cfg.Kafka.Brokers)
	}
	if !cfg.Service.BypassSubscription {
		t.Error("expected subscription bypass enabled")
	}
}

func TestValidate_MissingLLMKey(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error with no LLM_API_KEY")
	}
	if !errors.Is(err, verdicterr.ErrConfiguration) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestValidate_WhisperRequiresKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("STT_PROVIDER", "whisper")

	cfg := Load()

	if err := cfg.Validate(); !errors.Is(err, verdicterr.ErrConfiguration) {
		t.Errorf("expected a configuration error for missing STT key, got %v", err)
	}

	t.Setenv("STT_API_KEY", "sk-stt")
	cfg = Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid configuration, got %v", err)
	}
}

func TestValidate_UnknownStoreDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("STORE_DRIVER", "postgres")

	cfg := Load()

	if err := cfg.Validate(); !errors.Is(err, verdicterr.ErrConfiguration) {
		t.Errorf("expected a configuration error for unknown driver, got %v", err)
	}
}
