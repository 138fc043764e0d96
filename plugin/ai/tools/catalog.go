package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hrygo/shopsense/plugin/ai/cache"
)

// Product is a catalog entry returned by product search.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// Promotion is an active campaign returned by promotion lookup.
type Promotion struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Discount    float64 `json:"discount"`
}

// ProductFinder looks up catalog products.
type ProductFinder interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
}

// ShippingEstimator estimates a shipping fee for a destination region.
type ShippingEstimator interface {
	EstimateShippingFee(ctx context.Context, region string, weightGrams int) (float64, error)
}

// PromotionLister lists currently active promotions.
type PromotionLister interface {
	ActivePromotions(ctx context.Context) ([]Promotion, error)
}

// StoreInfoProvider returns static store information (hours, policy, contact).
type StoreInfoProvider interface {
	StoreInfo(ctx context.Context) (map[string]any, error)
}

const defaultSearchLimit = 5

// ProductSearchTool answers product_search tool requests.
type ProductSearchTool struct {
	finder ProductFinder
}

// NewProductSearchTool creates a product search executor.
func NewProductSearchTool(finder ProductFinder) *ProductSearchTool {
	return &ProductSearchTool{finder: finder}
}

func (t *ProductSearchTool) Name() string { return "product_search" }

// Execute runs the catalog search. The "query" argument is required.
func (t *ProductSearchTool) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, fmt.Errorf("product_search requires a query argument")
	}
	limit := defaultSearchLimit
	if v, ok := args["limit"].(float64); ok && int(v) > 0 {
		limit = int(v)
	}

	products, err := t.finder.SearchProducts(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return &Result{
		Name: t.Name(),
		Data: map[string]any{"products": products},
	}, nil
}

// ShippingFeeTool answers shipping_fee tool requests.
type ShippingFeeTool struct {
	estimator ShippingEstimator
}

// NewShippingFeeTool creates a shipping fee executor.
func NewShippingFeeTool(estimator ShippingEstimator) *ShippingFeeTool {
	return &ShippingFeeTool{estimator: estimator}
}

func (t *ShippingFeeTool) Name() string { return "shipping_fee" }

// Execute estimates the fee. The "region" argument is required; weight
// defaults to 500g when the model does not supply one.
func (t *ShippingFeeTool) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	region, ok := args["region"].(string)
	if !ok || region == "" {
		return nil, fmt.Errorf("shipping_fee requires a region argument")
	}
	weight := 500
	if v, ok := args["weight_grams"].(float64); ok && int(v) > 0 {
		weight = int(v)
	}

	fee, err := t.estimator.EstimateShippingFee(ctx, region, weight)
	if err != nil {
		return nil, err
	}
	return &Result{
		Name: t.Name(),
		Data: map[string]any{"region": region, "fee": fee},
	}, nil
}

const (
	promotionCacheKey = "tools:promotions"
	storeInfoCacheKey = "tools:store_info"
	lookupCacheTTL    = 5 * time.Minute
)

// PromotionTool answers promotion tool requests. Results are cached since
// campaigns change far less often than customers ask about them.
type PromotionTool struct {
	lister PromotionLister
	cache  cache.CacheService
}

// NewPromotionTool creates a promotion lookup executor.
func NewPromotionTool(lister PromotionLister, cacheService cache.CacheService) *PromotionTool {
	return &PromotionTool{lister: lister, cache: cacheService}
}

func (t *PromotionTool) Name() string { return "promotion" }

func (t *PromotionTool) Execute(ctx context.Context, _ map[string]any) (*Result, error) {
	if t.cache != nil {
		if data, ok := t.cache.Get(ctx, promotionCacheKey); ok {
			var promotions []Promotion
			if err := json.Unmarshal(data, &promotions); err == nil {
				return &Result{Name: t.Name(), Data: map[string]any{"promotions": promotions}}, nil
			}
		}
	}

	promotions, err := t.lister.ActivePromotions(ctx)
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		if data, err := json.Marshal(promotions); err == nil {
			_ = t.cache.Set(ctx, promotionCacheKey, data, lookupCacheTTL)
		}
	}
	return &Result{Name: t.Name(), Data: map[string]any{"promotions": promotions}}, nil
}

// StoreInfoTool answers store_info tool requests, cached like promotions.
type StoreInfoTool struct {
	provider StoreInfoProvider
	cache    cache.CacheService
}

// NewStoreInfoTool creates a store info executor.
func NewStoreInfoTool(provider StoreInfoProvider, cacheService cache.CacheService) *StoreInfoTool {
	return &StoreInfoTool{provider: provider, cache: cacheService}
}

func (t *StoreInfoTool) Name() string { return "store_info" }

func (t *StoreInfoTool) Execute(ctx context.Context, _ map[string]any) (*Result, error) {
	if t.cache != nil {
		if data, ok := t.cache.Get(ctx, storeInfoCacheKey); ok {
			var info map[string]any
			if err := json.Unmarshal(data, &info); err == nil {
				return &Result{Name: t.Name(), Data: info}, nil
			}
		}
	}

	info, err := t.provider.StoreInfo(ctx)
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		if data, err := json.Marshal(info); err == nil {
			_ = t.cache.Set(ctx, storeInfoCacheKey, data, lookupCacheTTL)
		}
	}
	return &Result{Name: t.Name(), Data: info}, nil
}
