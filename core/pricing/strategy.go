package pricing

import (
	"encoding/json"
	"fmt"

	"rental-engine/core/determinism"
	"rental-engine/core/duration"
)

// Model selects the pricing strategy of a product
type Model string

const (
	// ModelTiered applies percentage discount tiers over a coarse unit
	ModelTiered Model = "tiered"

	// ModelRateBased searches for the cheapest combination of priced periods
	ModelRateBased Model = "rate_based"
)

// Pricing is a tagged union: exactly the variant named by Model is set
type Pricing struct {
	Model     Model
	Tiered    *ProductPricing
	RateBased *RateBasedPricing
}

// Tiered wraps a tiered configuration
func Tiered(p ProductPricing) Pricing {
	return Pricing{Model: ModelTiered, Tiered: &p}
}

// RateBased wraps a rate-based configuration
func RateBased(p RateBasedPricing) Pricing {
	return Pricing{Model: ModelRateBased, RateBased: &p}
}

type pricingJSON struct {
	Model     Model             `json:"model"`
	Tiered    *ProductPricing   `json:"tiered,omitempty"`
	RateBased *RateBasedPricing `json:"rate_based,omitempty"`
}

// MarshalJSON writes the model tag and its single variant
func (p Pricing) MarshalJSON() ([]byte, error) {
	out := pricingJSON{Model: p.Model}
	switch p.Model {
	case ModelTiered:
		out.Tiered = p.Tiered
	case ModelRateBased:
		out.RateBased = p.RateBased
	default:
		return nil, fmt.Errorf("unknown pricing model %q", p.Model)
	}
	return json.Marshal(out)
}

// UnmarshalJSON rejects payloads whose variant does not match the tag
func (p *Pricing) UnmarshalJSON(data []byte) error {
	var in pricingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Model {
	case ModelTiered:
		if in.Tiered == nil || in.RateBased != nil {
			return fmt.Errorf("tiered pricing must carry only the tiered variant")
		}
	case ModelRateBased:
		if in.RateBased == nil || in.Tiered != nil {
			return fmt.Errorf("rate_based pricing must carry only the rate_based variant")
		}
	default:
		return fmt.Errorf("unknown pricing model %q", in.Model)
	}
	*p = Pricing{Model: in.Model, Tiered: in.Tiered, RateBased: in.RateBased}
	return nil
}

// Breakdown is the strategy-independent summary of a price calculation.
// Exactly one of Tiered and RateBased is set.
type Breakdown struct {
	Model            Model             `json:"model"`
	Subtotal         determinism.Money `json:"subtotal"`
	OriginalSubtotal determinism.Money `json:"original_subtotal"`
	Deposit          determinism.Money `json:"deposit"`
	Total            determinism.Money `json:"total"`
	Savings          determinism.Money `json:"savings"`
	SavingsPercent   int64             `json:"savings_percent"`

	Tiered    *PriceCalculationResult `json:"tiered,omitempty"`
	RateBased *RateCalculationResult  `json:"rate_based,omitempty"`
}

// TotalWithDeposit is the amount charged plus the refundable hold
func (b Breakdown) TotalWithDeposit() determinism.Money {
	return b.Total.Add(b.Deposit)
}

// Strategy prices a rental of durationMinutes for quantity items
type Strategy interface {
	Model() Model
	Price(durationMinutes, quantity int64) *Breakdown
}

// TieredStrategy bills whole units of the product's mode with tier discounts
type TieredStrategy struct {
	Pricing ProductPricing
}

// Model implements Strategy
func (s TieredStrategy) Model() Model {
	return ModelTiered
}

// Price implements Strategy. Minutes are rounded up to whole units of the mode.
func (s TieredStrategy) Price(durationMinutes, quantity int64) *Breakdown {
	units := duration.CeilUnits(durationMinutes, s.Pricing.Mode)
	result := CalculateRentalPrice(s.Pricing, units, quantity)
	return &Breakdown{
		Model:            ModelTiered,
		Subtotal:         result.Subtotal,
		OriginalSubtotal: result.OriginalSubtotal,
		Deposit:          result.Deposit,
		Total:            result.Total,
		Savings:          result.Savings,
		SavingsPercent:   result.SavingsPercent,
		Tiered:           &result,
	}
}

// RateStrategy bills the cheapest covering plan of rate periods
type RateStrategy struct {
	Pricing   RateBasedPricing
	Optimizer Optimizer
}

// Model implements Strategy
func (s RateStrategy) Model() Model {
	return ModelRateBased
}

// Price implements Strategy. It returns nil when no rate is usable.
func (s RateStrategy) Price(durationMinutes, quantity int64) *Breakdown {
	result := s.Optimizer.CalculateRentalPrice(s.Pricing, durationMinutes, quantity)
	if result == nil {
		return nil
	}
	var pct int64
	if result.ReductionPercent != nil {
		pct = *result.ReductionPercent
	}
	return &Breakdown{
		Model:            ModelRateBased,
		Subtotal:         result.Subtotal,
		OriginalSubtotal: result.OriginalSubtotal,
		Deposit:          result.Deposit,
		Total:            result.Total,
		Savings:          result.Savings,
		SavingsPercent:   pct,
		RateBased:        result,
	}
}

// NewStrategy selects the strategy for p's model
func NewStrategy(p Pricing, optimizer Optimizer) (Strategy, error) {
	switch {
	case p.Model == ModelTiered && p.Tiered != nil:
		return TieredStrategy{Pricing: *p.Tiered}, nil
	case p.Model == ModelRateBased && p.RateBased != nil:
		return RateStrategy{Pricing: *p.RateBased, Optimizer: optimizer}, nil
	default:
		return nil, fmt.Errorf("pricing model %q has no configuration", p.Model)
	}
}
