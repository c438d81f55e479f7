package domain

import "time"

// FeatureTryOn tags usage events produced by the virtual try-on
// studio, the only metered feature today.
const FeatureTryOn = "try_on"

// UsageEvent records one invocation of a metered feature. Exactly one
// of UserID and GuestID is set.
type UsageEvent struct {
	ID        string
	UserID    string
	GuestID   string
	Feature   string
	CreatedAt time.Time
}

// Identity names the actor invoking a metered feature. Exactly one of
// UserID and GuestID must be set.
type Identity struct {
	UserID  string
	GuestID string
}
