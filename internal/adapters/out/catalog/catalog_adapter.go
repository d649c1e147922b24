package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/carewell-hms/allocation-service/internal/config"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
)

// CatalogAdapter reads the diagnostic-test catalog service. Only the
// category field matters here; the catalog owns the rest of the test
// record.
type CatalogAdapter struct {
	client   *http.Client
	baseURL  string
	username string
	password string
	logger   out.LoggerPort
}

func NewCatalogAdapter(cfg *config.Config, logger out.LoggerPort) *CatalogAdapter {
	return &CatalogAdapter{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  cfg.Catalog.URL,
		username: cfg.Catalog.Username,
		password: cfg.Catalog.Password,
		logger:   logger,
	}
}

type testResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (a *CatalogAdapter) GetTestCategory(ctx context.Context, testID string) (string, bool, error) {
	url := fmt.Sprintf("%s/api/v1/diagnostic-tests/%s", a.baseURL, testID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		a.logger.Error("catalog.test.fetch_failed", out.LogFields{
			"testId": testID,
			"error":  err.Error(),
		})
		return "", false, err
	}

	req.SetBasicAuth(a.username, a.password)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("catalog.test.fetch_failed", out.LogFields{
			"testId": testID,
			"error":  err.Error(),
		})
		return "", false, err
	}
	defer resp.Body.Close()

	// An unknown test id is a normal outcome of the resolution chain, not
	// a failure.
	if resp.StatusCode == http.StatusNotFound {
		a.logger.Debug("catalog.test.not_found", out.LogFields{
			"testId": testID,
		})
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		a.logger.Error("catalog.test.fetch_failed", out.LogFields{
			"testId": testID,
			"status": resp.StatusCode,
		})
		return "", false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var test testResponse
	if err := json.NewDecoder(resp.Body).Decode(&test); err != nil {
		a.logger.Error("catalog.test.decode_failed", out.LogFields{
			"testId": testID,
			"error":  err.Error(),
		})
		return "", false, err
	}

	a.logger.Debug("catalog.test.fetch_success", out.LogFields{
		"testId":   testID,
		"category": test.Category,
	})

	return test.Category, test.Category != "", nil
}
