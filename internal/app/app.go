// Package app holds process-wide state for the service.
package app

import (
	"time"

	"github.com/rs/zerolog"

	"verdict-service/internal/config"
	"verdict-service/internal/logging"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Configuration
}

// New constructs a new Application from the provided configuration.
func New(cfg *config.Configuration) *Application {
	a := &Application{
		Cfg: cfg,
	}
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("method", "New").
		Logger()

	appLogger.Info().Msg("Verdict service application created")
	return a
}

// setupLogger configures zerolog for the service. Console output in dev,
// JSON otherwise.
func (a *Application) setupLogger() {
	format := "json"
	if a.Cfg.Service.Env == "dev" {
		format = "console"
	}

	logging.Init(logging.Config{
		Level:  a.Cfg.Observability.LogLevel,
		Format: format,
	})

	a.Logger = logging.Logger().With().
		Str("service", a.Cfg.Service.Name).
		Str("component", "application").
		Logger()

	a.Logger.Info().
		Str("logLevel", a.Cfg.Observability.LogLevel).
		Str("environment", a.Cfg.Service.Env).
		Msg("Logger setup completed")
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	a.StartupTime = time.Now().UTC()
	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Msg("Verdict service starting")

	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	logger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()
	logger.Info().Msg("Verdict service shutting down")
}
