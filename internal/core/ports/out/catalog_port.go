package out

import "context"

// CatalogPort resolves a diagnostic-test identifier to its category in the
// hospital's test catalog. A missing test is not an error: found=false lets
// the caller fall through to the raw-hint branch of the resolution chain.
type CatalogPort interface {
	GetTestCategory(ctx context.Context, testID string) (category string, found bool, err error)
}
