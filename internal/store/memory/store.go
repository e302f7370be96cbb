// Package memory provides an in-memory store safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"verdict-service/internal/models"
	"verdict-service/internal/store"
	"verdict-service/internal/verdicterr"
)

// Store keeps sessions and subscriptions in mutex-guarded maps with
// monotonically increasing ids.
type Store struct {
	mu sync.RWMutex

	sessions      map[int64]*models.Session
	nextSessionID int64

	subscriptions map[int64]*models.Subscription
	byEmail       map[string]int64
	nextSubID     int64

	now func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		sessions:      make(map[int64]*models.Session),
		subscriptions: make(map[int64]*models.Subscription),
		byEmail:       make(map[string]int64),
		now:           time.Now,
	}
}

// CreateSession persists a new session with the next sequential id.
func (s *Store) CreateSession(ctx context.Context, input store.CreateSessionInput) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSessionID++
	session := &models.Session{
		ID:             s.nextSessionID,
		Partner1Name:   input.Partner1Name,
		Partner2Name:   input.Partner2Name,
		Partner1Audio:  input.Partner1Audio,
		Partner2Audio:  input.Partner2Audio,
		Mode:           input.Mode,
		Active:         true,
		IsLiveArgument: input.IsLiveArgument,
	}
	s.sessions[session.ID] = session

	out := *session
	return &out, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %d", verdicterr.ErrNotFound, id)
	}
	out := *session
	return &out, nil
}

// UpdateSessionResponse attaches the verdict to a session.
func (s *Store) UpdateSessionResponse(ctx context.Context, id int64, response string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %d", verdicterr.ErrNotFound, id)
	}
	session.AIResponse = &response

	out := *session
	return &out, nil
}

// UpdateSessionTranscription attaches serialized transcription data.
func (s *Store) UpdateSessionTranscription(ctx context.Context, id int64, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: session %d", verdicterr.ErrNotFound, id)
	}
	session.TranscriptionData = &data
	return nil
}

// CreateSubscription persists a new subscription, active by default.
func (s *Store) CreateSubscription(ctx context.Context, input store.CreateSubscriptionInput) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[input.Email]; exists {
		return nil, fmt.Errorf("subscription for %s already exists", input.Email)
	}

	s.nextSubID++
	sub := &models.Subscription{
		ID:               s.nextSubID,
		Email:            input.Email,
		StripeCustomerID: input.StripeCustomerID,
		StripePriceID:    input.StripePriceID,
		Active:           true,
		CreatedAt:        s.now().UTC(),
		ExpiresAt:        input.ExpiresAt,
	}
	s.subscriptions[sub.ID] = sub
	s.byEmail[sub.Email] = sub.ID

	out := *sub
	return &out, nil
}

// GetSubscriptionByEmail retrieves a subscription by email.
func (s *Store) GetSubscriptionByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%w: subscription for %s", verdicterr.ErrNotFound, email)
	}
	out := *s.subscriptions[id]
	return &out, nil
}

// DeactivateSubscription flips Active to false. Never reactivates.
func (s *Store) DeactivateSubscription(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return fmt.Errorf("%w: subscription %d", verdicterr.ErrNotFound, id)
	}
	sub.Active = false
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
