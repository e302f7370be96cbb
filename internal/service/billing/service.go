// Package billing creates Stripe checkout sessions and validates
// subscriber access.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"verdict-service/internal/logging"
	"verdict-service/internal/observability/metrics"
	"verdict-service/internal/store"
	"verdict-service/internal/verdicterr"
)

// Config holds payment settings.
type Config struct {
	SecretKey  string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// CheckoutCreator is the Stripe dependency of the Service; satisfied by the
// SDK's checkout session client.
type CheckoutCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Service wraps checkout creation and the subscription gate.
type Service struct {
	checkouts CheckoutCreator
	subs      store.SubscriptionStore
	cfg       Config
	metrics   *metrics.Metrics
	now       func() time.Time
}

// New creates a billing service backed by the Stripe API.
func New(cfg Config, subs store.SubscriptionStore) (*Service, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: STRIPE_SECRET_KEY is not set", verdicterr.ErrConfiguration)
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return NewWithCheckouts(cfg, subs, sc.CheckoutSessions), nil
}

// NewWithCheckouts creates a billing service with an injected checkout
// client.
func NewWithCheckouts(cfg Config, subs store.SubscriptionStore, checkouts CheckoutCreator) *Service {
	return &Service{
		checkouts: checkouts,
		subs:      subs,
		cfg:       cfg,
		metrics:   metrics.DefaultMetrics,
		now:       time.Now,
	}
}

// CreateCheckout creates a subscription-mode checkout session for email and
// returns the hosted payment page URL.
func (s *Service) CreateCheckout(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("%w: email is required", verdicterr.ErrInvalidInput)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	params.Context = ctx

	sess, err := s.checkouts.New(params)
	if err != nil {
		logger := logging.WithComponent("billing")
		logger.Error().Err(err).Msg("Checkout session creation failed")
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	s.metrics.RecordCheckoutCreated()
	logger := logging.WithComponent("billing")
	logger.Info().
		Str("email", email).
		Msg("Checkout session created")
	return sess.URL, nil
}

// HasActiveSubscription reports whether email holds an active subscription.
// The expiry check is lazy: a validation read that finds an expired record
// flips it inactive in the store. Active is monotonic; nothing here ever
// reactivates.
func (s *Service) HasActiveSubscription(ctx context.Context, email string) (bool, error) {
	logger := logging.WithComponent("billing")

	sub, err := s.subs.GetSubscriptionByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, verdicterr.ErrNotFound) {
			s.metrics.RecordSubscriptionCheck("none")
			return false, nil
		}
		return false, err
	}

	if !sub.Active {
		s.metrics.RecordSubscriptionCheck("inactive")
		return false, nil
	}

	if sub.Expired(s.now()) {
		if err := s.subs.DeactivateSubscription(ctx, sub.ID); err != nil {
			logger.Error().Err(err).Int64("subscriptionId", sub.ID).Msg("Failed to deactivate expired subscription")
		}
		s.metrics.RecordSubscriptionCheck("expired")
		logger.Info().
			Str("email", email).
			Time("expiresAt", *sub.ExpiresAt).
			Msg("Subscription expired on validation read")
		return false, nil
	}

	s.metrics.RecordSubscriptionCheck("active")
	return true, nil
}
