package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict-service/internal/models"
	"verdict-service/internal/store"
	"verdict-service/internal/verdicterr"
)

func TestCreateThenGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateSession(ctx, store.CreateSessionInput{
		Partner1Name: "Alex",
		Partner2Name: "Sam",
		Mode:         models.ModeDinner,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := s.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AIResponse)
	assert.True(t, got.Active)
	assert.Equal(t, "Alex", got.Partner1Name)
}

func TestSequentialIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		created, err := s.CreateSession(ctx, store.CreateSessionInput{Mode: models.ModeJudge})
		require.NoError(t, err)
		assert.Equal(t, want, created.ID)
	}
}

func TestGetUnknownSession(t *testing.T) {
	s := New()

	_, err := s.GetSession(context.Background(), 42)
	assert.ErrorIs(t, err, verdicterr.ErrNotFound)
}

func TestUpdateSessionResponse(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateSession(ctx, store.CreateSessionInput{Mode: models.ModeJudge})
	require.NoError(t, err)

	updated, err := s.UpdateSessionResponse(ctx, created.ID, `{"verdict":"x"}`)
	require.NoError(t, err)
	require.NotNil(t, updated.AIResponse)
	assert.Equal(t, `{"verdict":"x"}`, *updated.AIResponse)

	got, err := s.GetSession(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AIResponse)
	assert.Equal(t, `{"verdict":"x"}`, *got.AIResponse)
}

func TestUpdateSessionResponse_UnknownID(t *testing.T) {
	s := New()

	_, err := s.UpdateSessionResponse(context.Background(), 7, "verdict")
	assert.ErrorIs(t, err, verdicterr.ErrNotFound)
}

func TestUpdateSessionTranscription(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, _ := s.CreateSession(ctx, store.CreateSessionInput{Mode: models.ModeCounselor})
	require.NoError(t, s.UpdateSessionTranscription(ctx, created.ID, `{"text":"hi"}`))

	got, _ := s.GetSession(ctx, created.ID)
	require.NotNil(t, got.TranscriptionData)
	assert.Equal(t, `{"text":"hi"}`, *got.TranscriptionData)

	assert.ErrorIs(t, s.UpdateSessionTranscription(ctx, 99, "x"), verdicterr.ErrNotFound)
}

func TestReturnedSessionsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, _ := s.CreateSession(ctx, store.CreateSessionInput{Partner1Name: "Alex", Mode: models.ModeJudge})
	created.Partner1Name = "Mallory"

	got, _ := s.GetSession(ctx, created.ID)
	assert.Equal(t, "Alex", got.Partner1Name)
}

func TestSubscriptionLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	expires := time.Now().Add(30 * 24 * time.Hour)

	sub, err := s.CreateSubscription(ctx, store.CreateSubscriptionInput{
		Email:            "couple@example.com",
		StripeCustomerID: "cus_123",
		StripePriceID:    "price_123",
		ExpiresAt:        &expires,
	})
	require.NoError(t, err)
	assert.True(t, sub.Active)

	got, err := s.GetSubscriptionByEmail(ctx, "couple@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cus_123", got.StripeCustomerID)

	require.NoError(t, s.DeactivateSubscription(ctx, sub.ID))
	got, _ = s.GetSubscriptionByEmail(ctx, "couple@example.com")
	assert.False(t, got.Active)

	_, err = s.GetSubscriptionByEmail(ctx, "stranger@example.com")
	assert.ErrorIs(t, err, verdicterr.ErrNotFound)
}

func TestDuplicateSubscriptionEmailRejected(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateSubscription(ctx, store.CreateSubscriptionInput{Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = s.CreateSubscription(ctx, store.CreateSubscriptionInput{Email: "dup@example.com"})
	assert.Error(t, err)
}

func TestConcurrentCreatesGetUniqueIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := s.CreateSession(ctx, store.CreateSessionInput{Mode: models.ModeJudge})
			if !assert.NoError(t, err) {
				ids <- 0
				return
			}
			ids <- created.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
