package port

import (
	"context"
	"time"

	"github.com/nkollections/notifier/internal/core/domain"
)

type StoreRepository interface {
	// LowStockProducts returns products with 0 < stock < threshold,
	// most urgent first, capped at limit
	LowStockProducts(ctx context.Context, threshold, limit int) ([]domain.Product, error)

	// ActiveOperators returns operators eligible for alerts
	// (role admin and active, a single combined filter)
	ActiveOperators(ctx context.Context) ([]domain.Operator, error)

	// InsertNotification persists a single notification row
	InsertNotification(ctx context.Context, n domain.Notification) error

	// CountUsageSince counts usage events recorded by a guest at or
	// after the given instant (inclusive)
	CountUsageSince(ctx context.Context, guestID string, since time.Time) (int, error)

	// InsertUsageEvent records one metered-feature invocation
	InsertUsageEvent(ctx context.Context, e domain.UsageEvent) error
}
