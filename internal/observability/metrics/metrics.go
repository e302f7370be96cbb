// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "verdict"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsCreated   prometheus.Counter
	SessionsCompleted prometheus.Counter
	SessionsFailed    *prometheus.CounterVec
	SessionDuration   prometheus.Histogram

	// Transcription metrics
	TranscriptionsTotal   *prometheus.CounterVec
	TranscriptionErrors   *prometheus.CounterVec
	TranscriptionDuration *prometheus.HistogramVec
	TranscriptionRetries  prometheus.Counter
	AudioBytesDecoded     prometheus.Counter

	// Analysis metrics
	AnalysisTotal          prometheus.Counter
	AnalysisErrors         *prometheus.CounterVec
	AnalysisStreamChunks   prometheus.Histogram
	AnalysisDuration       prometheus.Histogram
	AnalysisEmptyResponses prometheus.Counter

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Billing metrics
	CheckoutsCreated   prometheus.Counter
	SubscriptionChecks *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of sessions created",
		}),
		SessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Total number of sessions completed with a verdict",
		}),
		SessionsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_failed_total",
			Help:      "Total number of sessions that failed",
		}, []string{"stage"}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "End-to-end session processing duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		TranscriptionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Total number of transcription attempts",
		}, []string{"provider"}),
		TranscriptionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_errors_total",
			Help:      "Total number of transcription errors",
		}, []string{"provider", "error_type"}),
		TranscriptionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Transcription pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),
		TranscriptionRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_retries_total",
			Help:      "Total number of transcription upload retries",
		}),
		AudioBytesDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_decoded_total",
			Help:      "Total decoded audio bytes received",
		}),

		AnalysisTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_total",
			Help:      "Total number of analysis requests",
		}),
		AnalysisErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_errors_total",
			Help:      "Total number of analysis errors",
		}, []string{"error_type"}),
		AnalysisStreamChunks: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_stream_chunks",
			Help:      "Number of streamed chunks per analysis",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Analysis stream duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
		AnalysisEmptyResponses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_empty_responses_total",
			Help:      "Total number of analysis streams that yielded no content",
		}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"route", "method"}),

		CheckoutsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_created_total",
			Help:      "Total number of Stripe checkout sessions created",
		}),
		SubscriptionChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_checks_total",
			Help:      "Total number of subscription validation reads",
		}, []string{"result"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordSessionCreated records a new session being created.
func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreated.Inc()
}

// RecordSessionCompleted records a session finishing with a verdict.
func (m *Metrics) RecordSessionCompleted(durationSeconds float64) {
	m.SessionsCompleted.Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordSessionFailed records a session failing at a pipeline stage.
func (m *Metrics) RecordSessionFailed(stage string) {
	m.SessionsFailed.WithLabelValues(stage).Inc()
}

// RecordTranscription records one transcription pipeline run.
func (m *Metrics) RecordTranscription(provider string, err error, durationSeconds float64) {
	m.TranscriptionsTotal.WithLabelValues(provider).Inc()
	m.TranscriptionDuration.WithLabelValues(provider).Observe(durationSeconds)
	if err != nil {
		m.TranscriptionErrors.WithLabelValues(provider, "pipeline").Inc()
	}
}

// RecordTranscriptionRetry records one upload retry.
func (m *Metrics) RecordTranscriptionRetry() {
	m.TranscriptionRetries.Inc()
}

// RecordAudioDecoded records decoded audio bytes received.
func (m *Metrics) RecordAudioDecoded(bytes int) {
	m.AudioBytesDecoded.Add(float64(bytes))
}

// RecordAnalysis records one analysis stream.
func (m *Metrics) RecordAnalysis(chunks int, durationSeconds float64) {
	m.AnalysisTotal.Inc()
	m.AnalysisStreamChunks.Observe(float64(chunks))
	m.AnalysisDuration.Observe(durationSeconds)
}

// RecordAnalysisError records an analysis error by type.
func (m *Metrics) RecordAnalysisError(errorType string) {
	m.AnalysisErrors.WithLabelValues(errorType).Inc()
	if errorType == "empty_response" {
		m.AnalysisEmptyResponses.Inc()
	}
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(durationSeconds)
}

// RecordCheckoutCreated records a Stripe checkout session being created.
func (m *Metrics) RecordCheckoutCreated() {
	m.CheckoutsCreated.Inc()
}

// RecordSubscriptionCheck records one validation read and its outcome.
func (m *Metrics) RecordSubscriptionCheck(result string) {
	m.SubscriptionChecks.WithLabelValues(result).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic).Inc()
	}
}
