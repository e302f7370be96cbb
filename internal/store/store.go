// Package store defines the persistence interface for sessions and
// subscriptions, implemented by the memory and sqlite backends. Handlers
// receive a Store by injection and never touch a backend directly.
package store

import (
	"context"
	"time"

	"verdict-service/internal/models"
)

// CreateSessionInput holds the fields for a new session. The store assigns
// the id, defaults Active to true and leaves AIResponse nil.
type CreateSessionInput struct {
	Partner1Name   string
	Partner2Name   string
	Partner1Audio  string
	Partner2Audio  string
	Mode           models.Mode
	IsLiveArgument bool
}

// CreateSubscriptionInput holds the fields for a new subscription.
type CreateSubscriptionInput struct {
	Email            string
	StripeCustomerID string
	StripePriceID    string
	ExpiresAt        *time.Time
}

// SessionStore provides session persistence. Sessions are never deleted and
// ids are never reclaimed.
type SessionStore interface {
	// CreateSession persists a new session with the next sequential id.
	CreateSession(ctx context.Context, input CreateSessionInput) (*models.Session, error)

	// GetSession retrieves a session by id. Returns verdicterr.ErrNotFound
	// for an unknown id.
	GetSession(ctx context.Context, id int64) (*models.Session, error)

	// UpdateSessionResponse attaches the verdict to a session. Returns
	// verdicterr.ErrNotFound for an unknown id.
	UpdateSessionResponse(ctx context.Context, id int64, response string) (*models.Session, error)

	// UpdateSessionTranscription attaches serialized transcription data to
	// a session. Returns verdicterr.ErrNotFound for an unknown id.
	UpdateSessionTranscription(ctx context.Context, id int64, data string) error
}

// SubscriptionStore provides subscription persistence.
type SubscriptionStore interface {
	// CreateSubscription persists a new subscription, active by default.
	CreateSubscription(ctx context.Context, input CreateSubscriptionInput) (*models.Subscription, error)

	// GetSubscriptionByEmail retrieves a subscription. Returns
	// verdicterr.ErrNotFound when the email has none.
	GetSubscriptionByEmail(ctx context.Context, email string) (*models.Subscription, error)

	// DeactivateSubscription flips Active to false. Active is monotonic;
	// there is no reactivation operation.
	DeactivateSubscription(ctx context.Context, id int64) error
}

// Store is the full persistence surface injected into handlers.
type Store interface {
	SessionStore
	SubscriptionStore

	// Close releases backend resources.
	Close() error
}
