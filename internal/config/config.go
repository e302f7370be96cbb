// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"verdict-service/internal/verdicterr"
)

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	Name               string
	Env                string // dev, prod
	HTTPPort           string
	BypassSubscription bool // dev-only gate bypass
}

// LLMConfig holds text-generation endpoint settings.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	HTTPTimeout time.Duration
}

// STTConfig holds speech-to-text settings.
type STTConfig struct {
	Provider     string // whisper, google, mock
	Endpoint     string
	APIKey       string
	Model        string
	LanguageCode string
	SampleRateHz int
}

// AudioConfig holds transcription pipeline settings.
type AudioConfig struct {
	FFmpegPath  string
	FFprobePath string
	MinDuration time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
}

// StripeConfig holds payment settings.
type StripeConfig struct {
	SecretKey  string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// StoreConfig selects and configures the session store backend.
type StoreConfig struct {
	Driver     string // memory, sqlite
	SQLitePath string
}

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Enabled   bool
	Brokers   []string
	Topic     string
	Principal string
}

// ObservabilityConfig holds metrics and logging settings.
type ObservabilityConfig struct {
	LogLevel    string
	MetricsPort string
}

// Configuration is the full service configuration.
type Configuration struct {
	Service       ServiceConfig
	LLM           LLMConfig
	STT           STTConfig
	Audio         AudioConfig
	Stripe        StripeConfig
	Store         StoreConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Load reads configuration from the environment, applying defaults. A .env
// file in the working directory is honored when present.
func Load() *Configuration {
	_ = godotenv.Load()

	return &Configuration{
		Service: ServiceConfig{
			Name:               envOrDefault("SERVICE_NAME", "verdict-service"),
			Env:                envOrDefault("ENV", "dev"),
			HTTPPort:           envOrDefault("HTTP_PORT", "8080"),
			BypassSubscription: envBool("DEV_BYPASS_SUBSCRIPTION", false),
		},
		LLM: LLMConfig{
			APIKey:      os.Getenv("LLM_API_KEY"),
			BaseURL:     envOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:       envOrDefault("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens:   envInt("LLM_MAX_TOKENS", 1024),
			HTTPTimeout: envDuration("LLM_HTTP_TIMEOUT", 2*time.Minute),
		},
		STT: STTConfig{
			Provider:     envOrDefault("STT_PROVIDER", "mock"),
			Endpoint:     envOrDefault("STT_ENDPOINT", "https://api.openai.com/v1/audio/transcriptions"),
			APIKey:       os.Getenv("STT_API_KEY"),
			Model:        envOrDefault("STT_MODEL", "whisper-1"),
			LanguageCode: envOrDefault("STT_LANGUAGE_CODE", "en-US"),
			SampleRateHz: envInt("STT_SAMPLE_RATE_HZ", 16000),
		},
		Audio: AudioConfig{
			FFmpegPath:  envOrDefault("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: envOrDefault("FFPROBE_PATH", "ffprobe"),
			MinDuration: envDuration("AUDIO_MIN_DURATION", 100*time.Millisecond),
			MaxAttempts: envInt("AUDIO_UPLOAD_MAX_ATTEMPTS", 3),
			BaseDelay:   envDuration("AUDIO_UPLOAD_BASE_DELAY", time.Second),
		},
		Stripe: StripeConfig{
			SecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
			PriceID:    os.Getenv("STRIPE_PRICE_ID"),
			SuccessURL: envOrDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/success"),
			CancelURL:  envOrDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/cancel"),
		},
		Store: StoreConfig{
			Driver:     envOrDefault("STORE_DRIVER", "memory"),
			SQLitePath: envOrDefault("SQLITE_PATH", "verdict.db"),
		},
		Kafka: KafkaConfig{
			Enabled:   envBool("KAFKA_ENABLED", false),
			Brokers:   envList("KAFKA_BROKERS", nil),
			Topic:     envOrDefault("KAFKA_TOPIC_VERDICTS", "verdict.session.completed"),
			Principal: envOrDefault("SERVICE_PRINCIPAL", "svc-verdict"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
	}
}

// Validate checks startup-time preconditions. A missing text-generation
// credential is fatal here, never per-call.
func (c *Configuration) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: LLM_API_KEY is not set", verdicterr.ErrConfiguration)
	}
	if c.STT.Provider == "whisper" && c.STT.APIKey == "" {
		return fmt.Errorf("%w: STT_API_KEY is not set for the whisper provider", verdicterr.ErrConfiguration)
	}
	if c.Store.Driver != "memory" && c.Store.Driver != "sqlite" {
		return fmt.Errorf("%w: unknown store driver %q", verdicterr.ErrConfiguration, c.Store.Driver)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return def
}
