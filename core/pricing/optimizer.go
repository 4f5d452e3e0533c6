package pricing

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"rental-engine/core/determinism"
)

// BaseRateID identifies the implicit rate built from a product's base price and period
const BaseRateID = "base"

// DefaultMaxSteps bounds the optimizer table when no ceiling is configured
const DefaultMaxSteps = 500000

// Rate is a price charged per period of PeriodMinutes
type Rate struct {
	ID            string            `json:"id"`
	Price         determinism.Money `json:"price"`
	PeriodMinutes int64             `json:"period_minutes"`
}

// PerMinuteCost returns the rate's price per minute, or zero for a non-positive period
func PerMinuteCost(r Rate) determinism.Money {
	if r.PeriodMinutes <= 0 {
		return determinism.ZeroMoney
	}
	return r.Price.Div(decimal.NewFromInt(r.PeriodMinutes))
}

// PlanLine is one rate used Quantity times in a plan
type PlanLine struct {
	Rate     Rate              `json:"rate"`
	Quantity int64             `json:"quantity"`
	Minutes  int64             `json:"minutes"`
	Cost     determinism.Money `json:"cost"`
}

// RatePlan is a multiset of rate periods covering a duration for a single item
type RatePlan struct {
	Lines          []PlanLine
	Cost           determinism.Money
	CoveredMinutes int64
	Periods        int64

	// Fallback is set when the plan came from repeating one rate rather than
	// from the bounded search, and may not be optimal.
	Fallback bool
}

// Optimizer finds the cheapest covering combination of rate periods
type Optimizer struct {
	// MaxSteps caps the search table. Larger problems get the fallback plan.
	MaxSteps int

	// Cache, when set, memoizes plans across calls
	Cache *PlanCache
}

// DefaultOptimizer uses DefaultMaxSteps
var DefaultOptimizer = Optimizer{MaxSteps: DefaultMaxSteps}

// NewOptimizer creates an optimizer with the given table ceiling
func NewOptimizer(maxSteps int) Optimizer {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return Optimizer{MaxSteps: maxSteps}
}

// CalculateBestRate runs DefaultOptimizer
func CalculateBestRate(durationMinutes int64, rates []Rate) *RatePlan {
	return DefaultOptimizer.CalculateBestRate(durationMinutes, rates)
}

// CalculateBestRate returns the minimum-cost multiset of rate periods whose
// total length is at least durationMinutes. Among equal-cost plans the one with
// fewer periods wins, then the one covering less time. It returns nil only when
// no rate has a positive period.
func (o Optimizer) CalculateBestRate(durationMinutes int64, rates []Rate) *RatePlan {
	usable := canonicalRates(rates)
	if len(usable) == 0 {
		return nil
	}
	if durationMinutes < 1 {
		durationMinutes = 1
	}
	if o.Cache == nil {
		return o.search(durationMinutes, usable)
	}

	key := planKey(o.maxSteps(), durationMinutes, usable)
	if plan, ok := o.Cache.Get(key); ok {
		return plan
	}
	plan := o.search(durationMinutes, usable)
	o.Cache.Put(key, plan)
	return plan
}

// search runs the bounded table search over canonical, usable rates
func (o Optimizer) search(durationMinutes int64, usable []Rate) *RatePlan {
	scale := usable[0].PeriodMinutes
	for _, r := range usable[1:] {
		scale = gcd(scale, r.PeriodMinutes)
	}

	steps := make([]int64, len(usable))
	prices := make([]decimal.Decimal, len(usable))
	var maxRateSteps int64
	for i, r := range usable {
		steps[i] = r.PeriodMinutes / scale
		prices[i] = r.Price.Amount()
		if steps[i] > maxRateSteps {
			maxRateSteps = steps[i]
		}
	}

	targetSteps := (durationMinutes + scale - 1) / scale
	size := targetSteps + maxRateSteps
	if size > int64(o.maxSteps()) {
		return fallbackPlan(durationMinutes, usable)
	}

	cost := make([]decimal.Decimal, size)
	segments := make([]int64, size)
	reached := make([]bool, size)
	via := make([]int, size)
	reached[0] = true

	for s := int64(1); s < size; s++ {
		for i := range usable {
			prev := s - steps[i]
			if prev < 0 || !reached[prev] {
				continue
			}
			candidate := cost[prev].Add(prices[i])
			candidateSegments := segments[prev] + 1
			if !reached[s] || better(candidate, candidateSegments, cost[s], segments[s]) {
				cost[s] = candidate
				segments[s] = candidateSegments
				via[s] = i
				reached[s] = true
			}
		}
	}

	best := int64(-1)
	for s := targetSteps; s < size; s++ {
		if !reached[s] {
			continue
		}
		if best < 0 || better(cost[s], segments[s], cost[best], segments[best]) {
			best = s
		}
	}
	if best < 0 {
		return fallbackPlan(durationMinutes, usable)
	}

	counts := make([]int64, len(usable))
	for s := best; s > 0; s -= steps[via[s]] {
		counts[via[s]]++
	}

	plan := buildPlan(usable, counts)
	return &plan
}

func (o Optimizer) maxSteps() int {
	if o.MaxSteps <= 0 {
		return DefaultMaxSteps
	}
	return o.MaxSteps
}

// better reports whether (cost, segments) strictly improves on (bestCost, bestSegments)
func better(cost decimal.Decimal, segments int64, bestCost decimal.Decimal, bestSegments int64) bool {
	switch cost.Cmp(bestCost) {
	case -1:
		return true
	case 0:
		return segments < bestSegments
	default:
		return false
	}
}

// fallbackPlan repeats the single rate that covers durationMinutes most cheaply
func fallbackPlan(durationMinutes int64, usable []Rate) *RatePlan {
	bestIndex := -1
	var bestCost decimal.Decimal
	var bestCount int64
	for i, r := range usable {
		count := (durationMinutes + r.PeriodMinutes - 1) / r.PeriodMinutes
		total := r.Price.Amount().Mul(decimal.NewFromInt(count))
		if bestIndex < 0 || better(total, count, bestCost, bestCount) {
			bestIndex, bestCost, bestCount = i, total, count
		}
	}

	counts := make([]int64, len(usable))
	counts[bestIndex] = bestCount
	plan := buildPlan(usable, counts)
	plan.Fallback = true
	return &plan
}

func buildPlan(usable []Rate, counts []int64) RatePlan {
	plan := RatePlan{Cost: determinism.ZeroMoney}
	for i, r := range usable {
		if counts[i] == 0 {
			continue
		}
		line := PlanLine{
			Rate:     r,
			Quantity: counts[i],
			Minutes:  r.PeriodMinutes * counts[i],
			Cost:     r.Price.MulInt(counts[i]),
		}
		plan.Lines = append(plan.Lines, line)
		plan.Cost = plan.Cost.Add(line.Cost)
		plan.CoveredMinutes += line.Minutes
		plan.Periods += line.Quantity
	}
	return plan
}

// canonicalRates drops rates that cannot take part in a plan and orders the
// rest by period, price, then id so the input order never changes the result.
func canonicalRates(rates []Rate) []Rate {
	usable := make([]Rate, 0, len(rates))
	for _, r := range rates {
		if r.PeriodMinutes > 0 && !r.Price.IsNegative() {
			usable = append(usable, r)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		a, b := usable[i], usable[j]
		if a.PeriodMinutes != b.PeriodMinutes {
			return a.PeriodMinutes < b.PeriodMinutes
		}
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return usable
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// fingerprint identifies a plan together with the inputs that produced it
func fingerprint(durationMinutes, quantity int64, rates []Rate, plan *RatePlan) determinism.StableID {
	parts := []string{
		strconv.FormatInt(durationMinutes, 10),
		strconv.FormatInt(quantity, 10),
	}
	for _, r := range canonicalRates(rates) {
		parts = append(parts, r.ID+"@"+r.Price.StringRaw()+"/"+strconv.FormatInt(r.PeriodMinutes, 10))
	}
	parts = append(parts, "=")
	for _, line := range plan.Lines {
		parts = append(parts, line.Rate.ID+"x"+strconv.FormatInt(line.Quantity, 10))
	}
	return planIDs.Generate(parts...)
}

var planIDs = determinism.NewIDGenerator("rate-plan")
