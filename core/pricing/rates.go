package pricing

import (
	"rental-engine/core/determinism"
)

// RateBasedPricing is the configuration of a product priced by periods.
// BasePrice over BasePeriodMinutes is always available as the implicit base rate.
type RateBasedPricing struct {
	BasePrice         determinism.Money `json:"base_price"`
	BasePeriodMinutes int64             `json:"base_period_minutes"`
	Deposit           determinism.Money `json:"deposit"`
	Rates             []Rate            `json:"rates,omitempty"`
}

// BaseRate returns the implicit base rate
func (p RateBasedPricing) BaseRate() Rate {
	return Rate{
		ID:            BaseRateID,
		Price:         p.BasePrice,
		PeriodMinutes: p.BasePeriodMinutes,
	}
}

// AllRates returns the base rate followed by the configured rates
func (p RateBasedPricing) AllRates() []Rate {
	all := make([]Rate, 0, len(p.Rates)+1)
	all = append(all, p.BaseRate())
	return append(all, p.Rates...)
}

// RateCalculationResult is a rate-based price breakdown. Money fields are rounded to 2 places.
type RateCalculationResult struct {
	Subtotal         determinism.Money `json:"subtotal"`
	OriginalSubtotal determinism.Money `json:"original_subtotal"`
	Deposit          determinism.Money `json:"deposit"`
	Total            determinism.Money `json:"total"`

	// AppliedRate is the rate used most often in the plan; display only
	AppliedRate *Rate      `json:"applied_rate,omitempty"`
	PeriodsUsed []PlanLine `json:"periods_used"`

	Savings          determinism.Money `json:"savings"`
	ReductionPercent *int64            `json:"reduction_percent,omitempty"`
	DurationMinutes  int64             `json:"duration_minutes"`
	CoveredMinutes   int64             `json:"covered_minutes"`
	Quantity         int64             `json:"quantity"`
	Fallback         bool              `json:"fallback,omitempty"`

	// Fingerprint is stable for identical inputs and identifies the plan in audit records
	Fingerprint determinism.StableID `json:"fingerprint"`
}

// CalculateRentalPriceV2 prices quantity items for durationMinutes with DefaultOptimizer
func CalculateRentalPriceV2(p RateBasedPricing, durationMinutes, quantity int64) *RateCalculationResult {
	return DefaultOptimizer.CalculateRentalPrice(p, durationMinutes, quantity)
}

// CalculateRentalPrice prices quantity items for durationMinutes using the
// cheapest covering rate plan. It returns nil when no rate is usable, which a
// validated configuration never produces.
func (o Optimizer) CalculateRentalPrice(p RateBasedPricing, durationMinutes, quantity int64) *RateCalculationResult {
	rates := p.AllRates()
	plan := o.CalculateBestRate(durationMinutes, rates)
	if plan == nil {
		return nil
	}

	subtotal := plan.Cost.MulInt(quantity)
	original := determinism.ZeroMoney
	if p.BasePeriodMinutes > 0 {
		basePeriods := (durationMinutes + p.BasePeriodMinutes - 1) / p.BasePeriodMinutes
		original = p.BasePrice.MulInt(basePeriods).MulInt(quantity)
	}

	roundedSubtotal := subtotal.Round2()
	roundedOriginal := original.Round2()
	savings := roundedOriginal.Sub(roundedSubtotal)

	var reduction *int64
	if savings.IsPositive() {
		pct := percentOf(original.Sub(subtotal), original)
		reduction = &pct
	}

	lines := make([]PlanLine, len(plan.Lines))
	for i, line := range plan.Lines {
		line.Cost = line.Cost.Round2()
		lines[i] = line
	}

	return &RateCalculationResult{
		Subtotal:         roundedSubtotal,
		OriginalSubtotal: roundedOriginal,
		Deposit:          p.Deposit.MulInt(quantity).Round2(),
		Total:            roundedSubtotal,
		AppliedRate:      dominantRate(plan),
		PeriodsUsed:      lines,
		Savings:          savings,
		ReductionPercent: reduction,
		DurationMinutes:  durationMinutes,
		CoveredMinutes:   plan.CoveredMinutes,
		Quantity:         quantity,
		Fallback:         plan.Fallback,
		Fingerprint:      fingerprint(durationMinutes, quantity, rates, plan),
	}
}

// dominantRate returns the rate with the highest quantity; ties go to the longer period
func dominantRate(plan *RatePlan) *Rate {
	var best *PlanLine
	for i := range plan.Lines {
		line := &plan.Lines[i]
		if best == nil || line.Quantity > best.Quantity ||
			(line.Quantity == best.Quantity && line.Rate.PeriodMinutes > best.Rate.PeriodMinutes) {
			best = line
		}
	}
	if best == nil {
		return nil
	}
	rate := best.Rate
	return &rate
}
