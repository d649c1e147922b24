package out

import "context"

// CachePort caches catalog category lookups. Test categories change rarely;
// the catalog publishes invalidation events when they do.
type CachePort interface {
	GetTestCategory(ctx context.Context, testID string) (string, bool)
	StoreTestCategory(ctx context.Context, testID, category string)
	InvalidateTestCategory(ctx context.Context, testID string)
}
