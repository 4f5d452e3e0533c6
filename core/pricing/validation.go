package pricing

import (
	"github.com/shopspring/decimal"

	"rental-engine/internal/errors"
)

// maxDiscountPercent is the largest discount a tier may carry
var maxDiscountPercent = decimal.NewFromInt(99)

// ValidatePricingTiers rejects tiers the calculator must never see:
// non-positive thresholds, discounts outside (0, 99], and repeated thresholds.
func ValidatePricingTiers(tiers []PricingTier) error {
	var errs []error
	seen := make(map[int64]bool, len(tiers))

	for i, tier := range tiers {
		if tier.MinDurationUnits <= 0 {
			errs = append(errs, errors.Config("tier %d: min duration must be positive, got %d", i, tier.MinDurationUnits))
		}
		if !tier.DiscountPercent.IsPositive() || tier.DiscountPercent.GreaterThan(maxDiscountPercent) {
			errs = append(errs, errors.Config("tier %d: discount must be in (0, 99], got %s", i, tier.DiscountPercent))
		}
		if seen[tier.MinDurationUnits] {
			errs = append(errs, errors.Config("tier %d: duplicate min duration %d", i, tier.MinDurationUnits))
		}
		seen[tier.MinDurationUnits] = true
	}

	return errors.Join(errs)
}

// ValidateProductPricing checks a tiered configuration
func ValidateProductPricing(p ProductPricing) error {
	var errs []error
	if !p.Mode.IsPricingMode() {
		errs = append(errs, errors.Config("pricing mode must be hour, day or week, got %q", p.Mode))
	}
	if p.BasePrice.IsNegative() {
		errs = append(errs, errors.Config("base price must not be negative"))
	}
	if p.Deposit.IsNegative() {
		errs = append(errs, errors.Config("deposit must not be negative"))
	}
	if err := ValidatePricingTiers(p.Tiers); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs)
}

// ValidateRateBasedPricing checks a rate-based configuration
func ValidateRateBasedPricing(p RateBasedPricing) error {
	var errs []error
	if p.BasePeriodMinutes <= 0 {
		errs = append(errs, errors.Config("base period must be positive, got %d minutes", p.BasePeriodMinutes))
	}
	if p.BasePrice.IsNegative() {
		errs = append(errs, errors.Config("base price must not be negative"))
	}
	if p.Deposit.IsNegative() {
		errs = append(errs, errors.Config("deposit must not be negative"))
	}

	seen := make(map[string]bool, len(p.Rates))
	for i, r := range p.Rates {
		switch {
		case r.ID == "":
			errs = append(errs, errors.Config("rate %d: id is required", i))
		case r.ID == BaseRateID:
			errs = append(errs, errors.Config("rate %d: id %q is reserved for the base rate", i, BaseRateID))
		case seen[r.ID]:
			errs = append(errs, errors.Config("rate %d: duplicate id %q", i, r.ID))
		}
		seen[r.ID] = true

		if r.PeriodMinutes <= 0 {
			errs = append(errs, errors.Config("rate %q: period must be positive, got %d minutes", r.ID, r.PeriodMinutes))
		}
		if r.Price.IsNegative() {
			errs = append(errs, errors.Config("rate %q: price must not be negative", r.ID))
		}
	}

	return errors.Join(errs)
}

// Validate checks whichever variant p carries
func (p Pricing) Validate() error {
	switch p.Model {
	case ModelTiered:
		if p.Tiered == nil {
			return errors.Config("tiered pricing has no tiered configuration")
		}
		return ValidateProductPricing(*p.Tiered)
	case ModelRateBased:
		if p.RateBased == nil {
			return errors.Config("rate-based pricing has no rate configuration")
		}
		return ValidateRateBasedPricing(*p.RateBased)
	default:
		return errors.Config("unknown pricing model %q", p.Model)
	}
}
