package tools

import (
	"context"
	"strings"
	"sync"

	"github.com/hrygo/shopsense/plugin/ai/classifier"
)

// MockRunner is a mock implementation of Runner for testing.
type MockRunner struct {
	mu sync.Mutex

	// Err is returned for every run when set.
	Err error
	// Results is returned on success.
	Results []Result
	// Runs records the requests of each run.
	Runs [][]classifier.ToolRequest
}

// NewMockRunner creates a new MockRunner.
func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

// RunAll returns the scripted results or error.
func (m *MockRunner) RunAll(_ context.Context, requests []classifier.ToolRequest) ([]Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Runs = append(m.Runs, requests)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results, nil
}

// RunCount returns the number of runs performed.
func (m *MockRunner) RunCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Runs)
}

var _ Runner = (*MockRunner)(nil)

// StaticCatalog is an in-memory ProductFinder/ShippingEstimator/
// PromotionLister/StoreInfoProvider used in demo mode and tests.
type StaticCatalog struct {
	Products   []Product
	Promotions []Promotion
	Info       map[string]any
	// FeePerKg is the flat shipping rate; fee = FeePerKg * weight / 1000.
	FeePerKg float64
}

// SearchProducts returns products whose name contains the query.
func (c *StaticCatalog) SearchProducts(_ context.Context, query string, limit int) ([]Product, error) {
	matches := make([]Product, 0, limit)
	for _, p := range c.Products {
		if containsFold(p.Name, query) {
			matches = append(matches, p)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}

// EstimateShippingFee returns a flat-rate estimate.
func (c *StaticCatalog) EstimateShippingFee(_ context.Context, _ string, weightGrams int) (float64, error) {
	return c.FeePerKg * float64(weightGrams) / 1000, nil
}

// ActivePromotions returns the configured promotions.
func (c *StaticCatalog) ActivePromotions(_ context.Context) ([]Promotion, error) {
	return c.Promotions, nil
}

// StoreInfo returns the configured store information.
func (c *StaticCatalog) StoreInfo(_ context.Context) (map[string]any, error) {
	return c.Info, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
