package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"verdict-service/internal/app"
	"verdict-service/internal/config"
	"verdict-service/internal/events"
	verdicthttp "verdict-service/internal/http"
	"verdict-service/internal/observability"
	"verdict-service/internal/service/analysis"
	"verdict-service/internal/service/audio"
	"verdict-service/internal/service/billing"
	"verdict-service/internal/service/stt"
	"verdict-service/internal/service/stt/google"
	"verdict-service/internal/service/stt/mock"
	"verdict-service/internal/service/stt/whisper"
	"verdict-service/internal/store"
	"verdict-service/internal/store/memory"
	"verdict-service/internal/store/sqlite"
	"verdict-service/internal/verdicterr"
)

func main() {
	cfg := config.Load()
	application := app.New(cfg)
	if err := cfg.Validate(); err != nil {
		application.Logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := application.Start(); err != nil {
		application.Logger.Fatal().Err(err).Msg("Startup failed")
	}

	st, err := openStore(cfg)
	if err != nil {
		application.Logger.Fatal().Err(err).Msg("Failed to open store")
	}
	defer st.Close()

	transcriber, err := newTranscriber(cfg)
	if err != nil {
		application.Logger.Fatal().Err(err).Msg("Failed to create STT adapter")
	}
	transcoder := audio.NewFFmpegTranscoder(cfg.Audio.FFmpegPath, cfg.Audio.FFprobePath, cfg.STT.SampleRateHz)
	pipeline := audio.NewPipeline(transcriber, transcoder, audio.Config{
		MinDuration: cfg.Audio.MinDuration,
		MaxAttempts: cfg.Audio.MaxAttempts,
		BaseDelay:   cfg.Audio.BaseDelay,
	})

	llmClient, err := analysis.NewClient(analysis.ClientConfig{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.HTTPTimeout,
	})
	if err != nil {
		application.Logger.Fatal().Err(err).Msg("Failed to create text-generation client")
	}
	analyzer := analysis.NewService(llmClient)

	biller, err := billing.New(billing.Config{
		SecretKey:  cfg.Stripe.SecretKey,
		PriceID:    cfg.Stripe.PriceID,
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
	}, st)
	if err != nil {
		application.Logger.Fatal().Err(err).Msg("Failed to create billing service")
	}

	publisher := events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		Principal: cfg.Kafka.Principal,
	})
	defer publisher.Close()

	obsServer := observability.NewServer(":"+cfg.Observability.MetricsPort, storeProbe(st))
	obsServer.Start()

	handlers := verdicthttp.NewHandlers(st, pipeline, analyzer, llmClient, biller, publisher, cfg.Service.BypassSubscription)
	apiServer := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      verdicthttp.NewRouter(handlers),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // sessions wait on transcription and the verdict stream
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", apiServer.Addr).Msg("Starting API server")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("API server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server shutdown error")
	}
	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Observability server shutdown error")
	}
	application.Shutdown()
}

// storeProbe marks the process ready once the store answers reads. An
// unknown-id lookup is the cheapest query that still exercises the backend.
func storeProbe(st store.Store) observability.ReadyProbe {
	return func(ctx context.Context) error {
		_, err := st.GetSession(ctx, 0)
		if err != nil && !errors.Is(err, verdicterr.ErrNotFound) {
			return err
		}
		return nil
	}
}

func openStore(cfg *config.Configuration) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return sqlite.Open(cfg.Store.SQLitePath)
	default:
		return memory.New(), nil
	}
}

func newTranscriber(cfg *config.Configuration) (stt.Transcriber, error) {
	switch cfg.STT.Provider {
	case "whisper":
		return whisper.New(whisper.Config{
			Endpoint: cfg.STT.Endpoint,
			APIKey:   cfg.STT.APIKey,
			Model:    cfg.STT.Model,
		})
	case "google":
		return google.New(context.Background(), cfg.STT.LanguageCode, cfg.STT.SampleRateHz)
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q", cfg.STT.Provider)
	}
}
