// Package engine provides the API-primary quoting engine.
// CLI is a thin wrapper around this engine.
package engine

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"rental-engine/core/allocation"
	"rental-engine/core/attributes"
	"rental-engine/core/catalog"
	"rental-engine/core/determinism"
	"rental-engine/core/duration"
	"rental-engine/core/pricing"
	"rental-engine/internal/errors"
)

// Engine is the primary API for quoting rentals.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	catalog   *catalog.Catalog
	optimizer pricing.Optimizer
	logger    *zap.Logger
	config    EngineConfig
}

// EngineConfig configures the quoting engine
type EngineConfig struct {
	// MaxSteps bounds the rate optimizer's table; 0 uses the default
	MaxSteps int

	// PlanCacheEntries sizes the shared rate plan cache; 0 disables it
	PlanCacheEntries int
}

// NewEngine creates an engine over a loaded catalog
func NewEngine(cat *catalog.Catalog, config EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	optimizer := pricing.NewOptimizer(config.MaxSteps)
	if config.PlanCacheEntries > 0 {
		optimizer.Cache = pricing.NewPlanCache(config.PlanCacheEntries)
	}
	return &Engine{
		catalog:   cat,
		optimizer: optimizer,
		logger:    logger,
		config:    config,
	}
}

// PlanCacheStats reports the rate plan cache, if one is configured
func (e *Engine) PlanCacheStats() (pricing.CacheStats, bool) {
	if e.optimizer.Cache == nil {
		return pricing.CacheStats{}, false
	}
	return e.optimizer.Cache.Stats(), true
}

// QuoteRequest is the input to a quote. The rental length is either a time
// range (Start and End) or an amount of units (Duration and Unit).
type QuoteRequest struct {
	ProductID string `json:"product_id"`

	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`

	Duration float64       `json:"duration,omitempty"`
	Unit     duration.Unit `json:"unit,omitempty"`

	Quantity int64 `json:"quantity"`

	// Attributes are the customer's raw selections; keys are normalized before lookup
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Quote is the priced and allocated answer to a QuoteRequest
type Quote struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	DurationMinutes int64  `json:"duration_minutes"`
	Quantity        int64  `json:"quantity"`

	Pricing *pricing.Breakdown `json:"pricing"`

	// TotalWithDeposit is what is collected up front
	TotalWithDeposit determinism.Money `json:"total_with_deposit"`

	// Stock is nil for products that do not track inventory
	Stock *StockResult `json:"stock,omitempty"`

	// Available is false only when stock cannot cover the request
	Available bool `json:"available"`
}

// AllocateRequest asks for stock without pricing
type AllocateRequest struct {
	ProductID  string            `json:"product_id"`
	Quantity   int64             `json:"quantity"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// StockResult is the allocation outcome for one request
type StockResult struct {
	Selected   attributes.Attributes    `json:"selected_attributes"`
	Mode       attributes.SelectionMode `json:"mode"`
	Capacity   int64                    `json:"capacity"`
	Allocation *allocation.Plan         `json:"allocation,omitempty"`
}

// Available reports whether the requested quantity was allocated
func (s *StockResult) Available() bool {
	return s.Allocation != nil
}

// Quote prices a rental and, for inventory-tracked products, allocates stock.
// Out of stock is reported through Quote.Available, not as an error.
func (e *Engine) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	product, err := e.product(req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity < 1 {
		return nil, errors.Inputf("quantity must be at least 1, got %d", req.Quantity)
	}

	minutes, err := requestMinutes(req)
	if err != nil {
		return nil, err
	}

	strategy, err := pricing.NewStrategy(product.Pricing, e.optimizer)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "product "+product.ID, err)
	}
	breakdown := strategy.Price(minutes, req.Quantity)
	if breakdown == nil {
		return nil, errors.Newf(errors.TypePricing, "product %s has no usable rate", product.ID)
	}

	quote := &Quote{
		ProductID:        product.ID,
		ProductName:      product.Name,
		DurationMinutes:  minutes,
		Quantity:         req.Quantity,
		Pricing:          breakdown,
		TotalWithDeposit: breakdown.TotalWithDeposit(),
		Available:        true,
	}

	if product.TracksInventory() {
		stock, err := e.allocate(product, req.Quantity, req.Attributes)
		if err != nil {
			return nil, err
		}
		quote.Stock = stock
		quote.Available = stock.Available()
	}

	e.logger.Debug("quote computed",
		zap.String("product", product.ID),
		zap.String("model", string(breakdown.Model)),
		zap.Int64("minutes", minutes),
		zap.Int64("quantity", req.Quantity),
		zap.String("total", breakdown.Total.String()),
		zap.Bool("available", quote.Available),
	)
	return quote, nil
}

// Allocate reserves stock for a request without pricing it
func (e *Engine) Allocate(ctx context.Context, req AllocateRequest) (*StockResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	product, err := e.product(req.ProductID)
	if err != nil {
		return nil, err
	}
	if req.Quantity < 1 {
		return nil, errors.Inputf("quantity must be at least 1, got %d", req.Quantity)
	}
	if !product.TracksInventory() {
		return nil, errors.Inputf("product %s does not track inventory", product.ID)
	}
	return e.allocate(product, req.Quantity, req.Attributes)
}

func (e *Engine) product(id string) (*catalog.Product, error) {
	if id == "" {
		return nil, errors.Input("product id is required")
	}
	product, ok := e.catalog.Get(id)
	if !ok {
		return nil, errors.NotFound("product", id)
	}
	return product, nil
}

func (e *Engine) allocate(product *catalog.Product, quantity int64, raw map[string]string) (*StockResult, error) {
	if err := checkAttributeKeys(product.Axes, raw); err != nil {
		return nil, err
	}

	selected := attributes.Canonicalize(product.Axes, raw)
	result := &StockResult{
		Selected:   selected,
		Mode:       attributes.SelectionModeOf(product.Axes, selected),
		Capacity:   allocation.SelectionCapacity(product.Axes, product.Inventory, selected),
		Allocation: allocation.Allocate(product.Axes, product.Inventory, selected, quantity),
	}

	e.logger.Debug("stock allocated",
		zap.String("product", product.ID),
		zap.String("selection", attributes.BuildPartialCombinationKey(product.Axes, selected)),
		zap.String("mode", string(result.Mode)),
		zap.Int64("capacity", result.Capacity),
		zap.Bool("available", result.Available()),
	)
	return result, nil
}

// checkAttributeKeys rejects selections on attributes the product is not tracked by
func checkAttributeKeys(axes []attributes.Axis, raw map[string]string) error {
	known := make(map[string]bool, len(axes))
	for _, axis := range axes {
		known[attributes.NormalizeAxisKey(axis.Key)] = true
	}
	for _, key := range determinism.SortedKeys(raw) {
		normalized := attributes.NormalizeAxisKey(key)
		if normalized == "" || known[normalized] {
			continue
		}
		return errors.Inputf("unknown attribute %q", key).
			WithContext("known", determinism.SortedKeys(known))
	}
	return nil
}

// requestMinutes resolves the rental length of req in whole minutes
func requestMinutes(req QuoteRequest) (int64, error) {
	hasRange := !req.Start.IsZero() || !req.End.IsZero()
	hasAmount := req.Duration != 0 || req.Unit != ""

	switch {
	case hasRange && hasAmount:
		return 0, errors.Input("give either a time range or a duration, not both")
	case hasRange:
		if req.Start.IsZero() || req.End.IsZero() {
			return 0, errors.Input("a time range needs both start and end")
		}
		if !req.End.After(req.Start) {
			return 0, errors.Inputf("end %s is not after start %s",
				req.End.Format(time.RFC3339), req.Start.Format(time.RFC3339))
		}
		return checkMinutes(duration.CalculateDuration(req.Start, req.End, duration.Minute))
	case hasAmount:
		if math.IsNaN(req.Duration) || math.IsInf(req.Duration, 0) {
			return 0, errors.Inputf("duration must be a finite number, got %v", req.Duration)
		}
		if req.Duration <= 0 {
			return 0, errors.Inputf("duration must be positive, got %v", req.Duration)
		}
		if !req.Unit.Valid() {
			return 0, errors.Inputf("unknown duration unit %q", req.Unit)
		}
		return checkMinutes(duration.ToMinutes(req.Duration, req.Unit))
	default:
		return 0, errors.Input("a duration or time range is required")
	}
}

func checkMinutes(minutes int64) (int64, error) {
	if minutes > duration.MaxMinutes {
		return 0, errors.Inputf("rental of %d minutes exceeds the %d minute maximum", minutes, duration.MaxMinutes).
			WithContext("max_minutes", duration.MaxMinutes)
	}
	return minutes, nil
}
