package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nkollections/notifier/internal/core/domain"
	"github.com/nkollections/notifier/internal/port"
)

const (
	DefaultUsageCap = 5

	// Rolling window for guest quotas, inclusive lower bound.
	usageWindow = 24 * time.Hour
)

// RateLimiter bounds how often a guest may invoke a metered feature by
// counting recent usage rows. It only reads; recording the event after
// a successful action is the caller's job.
type RateLimiter struct {
	store  port.StoreRepository
	cap    int
	window time.Duration
	log    zerolog.Logger
}

func NewRateLimiter(store port.StoreRepository, cap int, log zerolog.Logger) *RateLimiter {
	if cap <= 0 {
		cap = DefaultUsageCap
	}

	return &RateLimiter{
		store:  store,
		cap:    cap,
		window: usageWindow,
		log:    log.With().Str("component", "rate-limiter").Logger(),
	}
}

// Allow reports whether the identity may invoke the metered feature.
// Authenticated users are unlimited. Guests get cap invocations per
// rolling window. A failing count query allows the request (fail
// open): availability over strict quota enforcement, on purpose — do
// not flip this to fail-closed without a product decision.
func (r *RateLimiter) Allow(ctx context.Context, id domain.Identity) bool {
	if id.UserID != "" {
		return true
	}
	if id.GuestID == "" {
		// Caller bug: neither identity was supplied.
		r.log.Warn().Msg("rate limit check without an identity, denying")
		return false
	}

	since := time.Now().Add(-r.window)
	count, err := r.store.CountUsageSince(ctx, id.GuestID, since)
	if err != nil {
		r.log.Error().Err(err).Str("guest_id", id.GuestID).Msg("usage count failed, allowing request")
		return true
	}

	return count < r.cap
}
