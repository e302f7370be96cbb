package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"verdict-service/internal/logging"
	"verdict-service/internal/models"
	"verdict-service/internal/observability/metrics"
	"verdict-service/internal/service/analysis"
	"verdict-service/internal/service/prompt"
	"verdict-service/internal/store"
	"verdict-service/internal/verdicterr"
)

// Transcriber is the transcription pipeline dependency: base64 audio in,
// serialized TranscriptionResult out.
type Transcriber interface {
	Transcribe(ctx context.Context, audioBase64 string) (string, error)
}

// Analyzer is the analysis service dependency.
type Analyzer interface {
	AnalyzeWithCallback(ctx context.Context, systemPrompt, userPrompt string, temperature float64, cb analysis.Callback) (string, error)
}

// Pinger checks connectivity to the text-generation endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Biller is the payment dependency.
type Biller interface {
	CreateCheckout(ctx context.Context, email string) (string, error)
	HasActiveSubscription(ctx context.Context, email string) (bool, error)
}

// EventPublisher announces completed sessions.
type EventPublisher interface {
	PublishSessionCompleted(ctx context.Context, sessionID int64, mode models.Mode) error
}

// Handlers holds the injected dependencies for all routes.
type Handlers struct {
	Store       store.Store
	Transcriber Transcriber
	Analyzer    Analyzer
	Pinger      Pinger
	Biller      Biller
	Publisher   EventPublisher

	// BypassSubscription skips the gate; development only.
	BypassSubscription bool

	metrics *metrics.Metrics
}

// NewHandlers constructs the handler set.
func NewHandlers(st store.Store, transcriber Transcriber, analyzer Analyzer, pinger Pinger, biller Biller, publisher EventPublisher, bypassSubscription bool) *Handlers {
	return &Handlers{
		Store:              st,
		Transcriber:        transcriber,
		Analyzer:           analyzer,
		Pinger:             pinger,
		Biller:             biller,
		Publisher:          publisher,
		BypassSubscription: bypassSubscription,
		metrics:            metrics.DefaultMetrics,
	}
}

// Status reports connectivity to the text-generation endpoint.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	if err := h.Pinger.Ping(r.Context()); err != nil {
		logger := logging.WithComponent("http")
		logger.Warn().Err(err).Msg("Status check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type checkoutRequest struct {
	Email string `json:"email"`
}

// CreateCheckout creates a Stripe checkout session and returns its URL.
func (h *Handlers) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %w", verdicterr.ErrInvalidInput, err))
		return
	}

	url, err := h.Biller.CreateCheckout(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// SubscriptionStatus performs the lazy-expiry validation read for an email.
func (h *Handlers) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, fmt.Errorf("%w: email query parameter is required", verdicterr.ErrInvalidInput))
		return
	}

	active, err := h.Biller.HasActiveSubscription(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": active})
}

type createSessionRequest struct {
	Partner1Name   string      `json:"partner1Name"`
	Partner2Name   string      `json:"partner2Name"`
	Partner1Audio  string      `json:"partner1Audio"`
	Partner2Audio  string      `json:"partner2Audio"`
	Mode           models.Mode `json:"mode"`
	IsLiveArgument bool        `json:"isLiveArgument"`
	Email          string      `json:"email"`
}

type createSessionResponse struct {
	SessionID int64  `json:"sessionId"`
	Verdict   string `json:"verdict"`
	Timestamp string `json:"timestamp"`
}

// CreateSession runs the full pipeline: validate, gate, transcribe, build
// the prompt, stream the analysis, persist and publish.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %w", verdicterr.ErrInvalidInput, err))
		return
	}
	if err := validateCreateSession(&req); err != nil {
		writeError(w, err)
		return
	}

	// Subscription gate runs before any expensive work.
	if !h.BypassSubscription {
		active, err := h.Biller.HasActiveSubscription(ctx, req.Email)
		if err != nil {
			writeError(w, err)
			return
		}
		if !active {
			writeError(w, verdicterr.ErrSubscriptionRequired)
			return
		}
	}

	session, err := h.Store.CreateSession(ctx, store.CreateSessionInput{
		Partner1Name:   req.Partner1Name,
		Partner2Name:   req.Partner2Name,
		Partner1Audio:  req.Partner1Audio,
		Partner2Audio:  req.Partner2Audio,
		Mode:           req.Mode,
		IsLiveArgument: req.IsLiveArgument,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.metrics.RecordSessionCreated()
	logger := logging.WithSession(session.ID, string(session.Mode))

	partner1Text, partner2Text, err := h.transcribe(ctx, &req, session.ID)
	if err != nil {
		h.metrics.RecordSessionFailed("transcription")
		writeError(w, err)
		return
	}

	prompts, err := prompt.Build(req.Mode, req.Partner1Name, req.Partner2Name, partner1Text, partner2Text, req.IsLiveArgument)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", verdicterr.ErrInvalidInput, err))
		return
	}

	serialized, err := h.Analyzer.AnalyzeWithCallback(ctx, prompts.System, prompts.User, analysis.TemperatureFor(req.Mode), func(result string) error {
		_, updateErr := h.Store.UpdateSessionResponse(ctx, session.ID, result)
		return updateErr
	})
	if err != nil {
		h.metrics.RecordSessionFailed("analysis")
		writeError(w, err)
		return
	}

	if err := h.Publisher.PublishSessionCompleted(ctx, session.ID, session.Mode); err != nil {
		// Event delivery is best-effort; the verdict is already stored.
		logger.Warn().Err(err).Msg("Failed to publish session-completed event")
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(serialized), &result); err != nil {
		writeError(w, err)
		return
	}

	h.metrics.RecordSessionCompleted(time.Since(start).Seconds())
	logger.Info().Dur("duration", time.Since(start)).Msg("Session completed")

	writeJSON(w, http.StatusOK, createSessionResponse{
		SessionID: session.ID,
		Verdict:   result.Verdict,
		Timestamp: result.Timestamp,
	})
}

// transcribe runs the transcription step: one shared recording for a live
// argument, otherwise both partners in parallel. It stores the serialized
// transcripts on the session and returns the two texts.
func (h *Handlers) transcribe(ctx context.Context, req *createSessionRequest, sessionID int64) (string, string, error) {
	var serialized1, serialized2 string

	if req.IsLiveArgument {
		s, err := h.Transcriber.Transcribe(ctx, req.Partner1Audio)
		if err != nil {
			return "", "", err
		}
		serialized1 = s
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			s, err := h.Transcriber.Transcribe(gctx, req.Partner1Audio)
			if err != nil {
				return err
			}
			serialized1 = s
			return nil
		})
		g.Go(func() error {
			s, err := h.Transcriber.Transcribe(gctx, req.Partner2Audio)
			if err != nil {
				return err
			}
			serialized2 = s
			return nil
		})
		if err := g.Wait(); err != nil {
			return "", "", err
		}
	}

	combined, err := json.Marshal(map[string]json.RawMessage{
		"partner1": rawOrNull(serialized1),
		"partner2": rawOrNull(serialized2),
	})
	if err != nil {
		return "", "", err
	}
	if err := h.Store.UpdateSessionTranscription(ctx, sessionID, string(combined)); err != nil {
		return "", "", err
	}

	return transcriptText(serialized1), transcriptText(serialized2), nil
}

// GetSession returns a stored session by id.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: session id must be an integer", verdicterr.ErrInvalidInput))
		return
	}

	session, err := h.Store.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func validateCreateSession(req *createSessionRequest) error {
	if req.Partner1Name == "" || req.Partner2Name == "" {
		return fmt.Errorf("%w: both partner names are required", verdicterr.ErrInvalidInput)
	}
	if !req.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode", verdicterr.ErrInvalidInput)
	}
	if req.Partner1Audio == "" {
		return fmt.Errorf("%w: partner1Audio is required", verdicterr.ErrInvalidInput)
	}
	// A live argument supplies one shared recording; otherwise both
	// partners must record.
	if !req.IsLiveArgument && req.Partner2Audio == "" {
		return fmt.Errorf("%w: partner2Audio is required unless isLiveArgument is set", verdicterr.ErrInvalidInput)
	}
	return nil
}

func transcriptText(serialized string) string {
	if serialized == "" {
		return ""
	}
	var result models.TranscriptionResult
	if err := json.Unmarshal([]byte(serialized), &result); err != nil {
		return ""
	}
	return result.Text
}

func rawOrNull(serialized string) json.RawMessage {
	if serialized == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(serialized)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the taxonomy onto status codes: 400 for validation, 402
// for the subscription gate, 404 for a missing session, 500 for everything
// else. Clients get a human-readable message, never an error enumeration.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, verdicterr.ErrInvalidInput), errors.Is(err, verdicterr.ErrAudioProcessing):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, verdicterr.ErrSubscriptionRequired):
		status = http.StatusPaymentRequired
		msg = verdicterr.ErrSubscriptionRequired.Error()
	case errors.Is(err, verdicterr.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	default:
		logger := logging.WithComponent("http")
		logger.Error().Err(err).Msg("Request failed")
	}

	writeJSON(w, status, map[string]string{"error": msg})
}
