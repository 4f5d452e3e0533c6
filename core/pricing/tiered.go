// Package pricing computes rental prices.
// Two strategies exist: percentage discount tiers over a coarse unit, and a
// cost optimizer over arbitrary priced periods.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"rental-engine/core/determinism"
	"rental-engine/core/duration"
)

var hundred = decimal.NewFromInt(100)

// PricingTier discounts every unit once the rental reaches MinDurationUnits
type PricingTier struct {
	MinDurationUnits int64           `json:"min_duration_units"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
}

// ProductPricing is the configuration of a tiered product
type ProductPricing struct {
	BasePrice determinism.Money `json:"base_price"`
	Deposit   determinism.Money `json:"deposit"`
	Mode      duration.Unit     `json:"mode"`
	Tiers     []PricingTier     `json:"tiers,omitempty"`
}

// PriceCalculationResult is a tiered price breakdown. Money fields are rounded to 2 places.
type PriceCalculationResult struct {
	Subtotal              determinism.Money `json:"subtotal"`
	OriginalSubtotal      determinism.Money `json:"original_subtotal"`
	Deposit               determinism.Money `json:"deposit"`
	Total                 determinism.Money `json:"total"`
	EffectivePricePerUnit determinism.Money `json:"effective_price_per_unit"`
	AppliedTier           *PricingTier      `json:"applied_tier,omitempty"`
	Duration              int64             `json:"duration"`
	Mode                  duration.Unit     `json:"mode"`
	Quantity              int64             `json:"quantity"`
	Savings               determinism.Money `json:"savings"`
	SavingsPercent        int64             `json:"savings_percent"`
}

// FindApplicableTier returns the tier with the largest threshold that
// durationUnits still reaches, or nil.
func FindApplicableTier(tiers []PricingTier, durationUnits int64) *PricingTier {
	candidates := make([]PricingTier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.MinDurationUnits > 0 {
			candidates = append(candidates, tier)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MinDurationUnits > candidates[j].MinDurationUnits
	})

	for _, tier := range candidates {
		if tier.MinDurationUnits <= durationUnits {
			applied := tier
			return &applied
		}
	}
	return nil
}

// CalculateEffectivePrice applies tier's discount to basePrice
func CalculateEffectivePrice(basePrice determinism.Money, tier *PricingTier) determinism.Money {
	if tier == nil {
		return basePrice
	}
	factor := decimal.NewFromInt(1).Sub(tier.DiscountPercent.Div(hundred))
	return basePrice.Mul(factor)
}

// CalculateRentalPrice prices quantity items for durationUnits units of the
// product's mode. Inputs are assumed validated: durationUnits and quantity ≥ 1.
// The deposit is reported separately and is not part of Total.
func CalculateRentalPrice(p ProductPricing, durationUnits, quantity int64) PriceCalculationResult {
	tier := FindApplicableTier(p.Tiers, durationUnits)
	effective := CalculateEffectivePrice(p.BasePrice, tier)

	original := p.BasePrice.MulInt(durationUnits).MulInt(quantity)
	subtotal := effective.MulInt(durationUnits).MulInt(quantity)

	// savings is taken from the rounded figures so the returned fields always reconcile
	roundedOriginal := original.Round2()
	roundedSubtotal := subtotal.Round2()

	return PriceCalculationResult{
		Subtotal:              roundedSubtotal,
		OriginalSubtotal:      roundedOriginal,
		Deposit:               p.Deposit.MulInt(quantity).Round2(),
		Total:                 roundedSubtotal,
		EffectivePricePerUnit: effective.Round2(),
		AppliedTier:           tier,
		Duration:              durationUnits,
		Mode:                  p.Mode,
		Quantity:              quantity,
		Savings:               roundedOriginal.Sub(roundedSubtotal),
		SavingsPercent:        percentOf(original.Sub(subtotal), original),
	}
}

// percentOf returns round(part/whole*100), or 0 when whole is not positive
func percentOf(part, whole determinism.Money) int64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Amount().Div(whole.Amount()).Mul(hundred).Round(0).IntPart()
}
