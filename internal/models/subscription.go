package models

import "time"

// Subscription is one paying customer's access record. Active only ever
// flips true to false (lazy expiry on validation read); this code path never
// reactivates a subscription.
type Subscription struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	StripeCustomerID string     `json:"stripeCustomerId"`
	StripePriceID    string     `json:"stripePriceId"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the subscription has an expiry in the past
// relative to now.
func (s *Subscription) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}
