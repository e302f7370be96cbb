package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"verdict-service/internal/store"
	"verdict-service/internal/store/memory"
	"verdict-service/internal/verdicterr"
)

// fakeCheckouts implements CheckoutCreator without hitting Stripe.
type fakeCheckouts struct {
	lastParams *stripe.CheckoutSessionParams
	url        string
	err        error
}

func (f *fakeCheckouts) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{URL: f.url}, nil
}

func testConfig() Config {
	return Config{
		SecretKey:  "sk_test_123",
		PriceID:    "price_123",
		SuccessURL: "https://verdict.example/success",
		CancelURL:  "https://verdict.example/cancel",
	}
}

func TestNew_RequiresSecretKey(t *testing.T) {
	_, err := New(Config{}, memory.New())
	assert.ErrorIs(t, err, verdicterr.ErrConfiguration)
}

func TestCreateCheckout(t *testing.T) {
	checkouts := &fakeCheckouts{url: "https://checkout.stripe.com/pay/cs_123"}
	s := NewWithCheckouts(testConfig(), memory.New(), checkouts)

	url, err := s.CreateCheckout(context.Background(), "couple@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", url)

	require.NotNil(t, checkouts.lastParams)
	assert.Equal(t, "subscription", *checkouts.lastParams.Mode)
	assert.Equal(t, "couple@example.com", *checkouts.lastParams.CustomerEmail)
	require.Len(t, checkouts.lastParams.LineItems, 1)
	assert.Equal(t, "price_123", *checkouts.lastParams.LineItems[0].Price)
}

func TestCreateCheckout_RequiresEmail(t *testing.T) {
	s := NewWithCheckouts(testConfig(), memory.New(), &fakeCheckouts{})

	_, err := s.CreateCheckout(context.Background(), "")
	assert.ErrorIs(t, err, verdicterr.ErrInvalidInput)
}

func TestCreateCheckout_StripeErrorSurfaces(t *testing.T) {
	s := NewWithCheckouts(testConfig(), memory.New(), &fakeCheckouts{err: errors.New("card network down")})

	_, err := s.CreateCheckout(context.Background(), "couple@example.com")
	assert.Error(t, err)
}

func TestHasActiveSubscription_NoRecord(t *testing.T) {
	s := NewWithCheckouts(testConfig(), memory.New(), &fakeCheckouts{})

	ok, err := s.HasActiveSubscription(context.Background(), "stranger@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasActiveSubscription_Active(t *testing.T) {
	subs := memory.New()
	expires := time.Now().Add(24 * time.Hour)
	_, err := subs.CreateSubscription(context.Background(), store.CreateSubscriptionInput{
		Email:     "couple@example.com",
		ExpiresAt: &expires,
	})
	require.NoError(t, err)

	s := NewWithCheckouts(testConfig(), subs, &fakeCheckouts{})

	ok, err := s.HasActiveSubscription(context.Background(), "couple@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasActiveSubscription_NoExpiryMeansActive(t *testing.T) {
	subs := memory.New()
	_, err := subs.CreateSubscription(context.Background(), store.CreateSubscriptionInput{
		Email: "couple@example.com",
	})
	require.NoError(t, err)

	s := NewWithCheckouts(testConfig(), subs, &fakeCheckouts{})

	ok, err := s.HasActiveSubscription(context.Background(), "couple@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasActiveSubscription_LazyExpiryFlip(t *testing.T) {
	subs := memory.New()
	ctx := context.Background()
	expired := time.Now().Add(-time.Hour)
	created, err := subs.CreateSubscription(ctx, store.CreateSubscriptionInput{
		Email:     "couple@example.com",
		ExpiresAt: &expired,
	})
	require.NoError(t, err)

	s := NewWithCheckouts(testConfig(), subs, &fakeCheckouts{})

	ok, err := s.HasActiveSubscription(ctx, "couple@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	// The read flipped the record inactive in the store.
	got, err := subs.GetSubscriptionByEmail(ctx, "couple@example.com")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, created.ID, got.ID)

	// A second read stays inactive; nothing reactivates it.
	ok, err = s.HasActiveSubscription(ctx, "couple@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
