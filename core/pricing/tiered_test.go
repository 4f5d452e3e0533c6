package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-engine/core/determinism"
	"rental-engine/core/duration"
)

func money(s string) determinism.Money {
	return determinism.MustMoney(s)
}

func tier(minUnits int64, pct int64) PricingTier {
	return PricingTier{MinDurationUnits: minUnits, DiscountPercent: decimal.NewFromInt(pct)}
}

func dayPricing(base string, tiers ...PricingTier) ProductPricing {
	return ProductPricing{
		BasePrice: money(base),
		Deposit:   money("50"),
		Mode:      duration.Day,
		Tiers:     tiers,
	}
}

// TestFindApplicableTierPrefersLargestThreshold checks the best tier wins, not the first match
func TestFindApplicableTierPrefersLargestThreshold(t *testing.T) {
	tiers := []PricingTier{tier(3, 10), tier(7, 20), tier(14, 30)}

	tests := []struct {
		name     string
		duration int64
		want     int64
	}{
		{"below every tier", 2, 0},
		{"exactly first threshold", 3, 3},
		{"between thresholds", 6, 3},
		{"exactly second threshold", 7, 7},
		{"past the last threshold", 30, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindApplicableTier(tiers, tt.duration)
			if tt.want == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.MinDurationUnits)
		})
	}
}

func TestFindApplicableTierIgnoresNonPositiveThresholds(t *testing.T) {
	tiers := []PricingTier{tier(0, 50), tier(-2, 60), tier(5, 10)}

	assert.Nil(t, FindApplicableTier(tiers, 4))
	assert.Equal(t, int64(5), FindApplicableTier(tiers, 5).MinDurationUnits)
	assert.Nil(t, FindApplicableTier(nil, 100))
}

func TestFindApplicableTierDoesNotReorderInput(t *testing.T) {
	tiers := []PricingTier{tier(3, 10), tier(7, 20)}
	FindApplicableTier(tiers, 10)
	assert.Equal(t, int64(3), tiers[0].MinDurationUnits)
}

func TestCalculateEffectivePrice(t *testing.T) {
	assert.True(t, CalculateEffectivePrice(money("100"), nil).Equal(money("100")))

	tr := tier(7, 20)
	assert.True(t, CalculateEffectivePrice(money("100"), &tr).Equal(money("80")))
}

// TestCalculateRentalPriceSevenDayScenario is the documented example:
// base 100/day, tiers 3d@10% and 7d@20%, 7 days, quantity 2.
func TestCalculateRentalPriceSevenDayScenario(t *testing.T) {
	p := dayPricing("100", tier(3, 10), tier(7, 20))

	result := CalculateRentalPrice(p, 7, 2)

	require.NotNil(t, result.AppliedTier)
	assert.Equal(t, int64(7), result.AppliedTier.MinDurationUnits)
	assert.Equal(t, "1400.00", result.OriginalSubtotal.String())
	assert.Equal(t, "1120.00", result.Subtotal.String())
	assert.Equal(t, "280.00", result.Savings.String())
	assert.Equal(t, int64(20), result.SavingsPercent)
	assert.Equal(t, "80.00", result.EffectivePricePerUnit.String())
	assert.Equal(t, int64(7), result.Duration)
	assert.Equal(t, int64(2), result.Quantity)
}

func TestCalculateRentalPriceExcludesDepositFromTotal(t *testing.T) {
	p := dayPricing("100", tier(3, 10))

	result := CalculateRentalPrice(p, 5, 3)

	assert.Equal(t, "150.00", result.Deposit.String(), "deposit is per item and never discounted")
	assert.Equal(t, result.Subtotal.String(), result.Total.String())
	assert.Equal(t, "1350.00", result.Total.String())
}

func TestCalculateRentalPriceWithoutTiers(t *testing.T) {
	result := CalculateRentalPrice(dayPricing("42.50"), 2, 1)

	assert.Nil(t, result.AppliedTier)
	assert.Equal(t, "85.00", result.Subtotal.String())
	assert.True(t, result.Savings.IsZero())
	assert.Equal(t, int64(0), result.SavingsPercent)
}

func TestCalculateRentalPriceRoundsOnlyAtReturn(t *testing.T) {
	p := dayPricing("9.99", PricingTier{MinDurationUnits: 3, DiscountPercent: decimal.RequireFromString("15")})

	result := CalculateRentalPrice(p, 3, 1)

	// 9.99 * 0.85 = 8.4915; 3 units = 25.4745
	assert.Equal(t, "8.49", result.EffectivePricePerUnit.String())
	assert.Equal(t, "25.47", result.Subtotal.String())
	assert.Equal(t, "29.97", result.OriginalSubtotal.String())
	assert.Equal(t, "4.50", result.Savings.String())
	assert.Equal(t, int64(15), result.SavingsPercent)
}

func TestCalculateRentalPriceZeroBasePrice(t *testing.T) {
	result := CalculateRentalPrice(dayPricing("0", tier(1, 50)), 4, 1)

	assert.True(t, result.Subtotal.IsZero())
	assert.Equal(t, int64(0), result.SavingsPercent)
}

// TestEffectivePriceIsNonIncreasing checks more duration never costs more per unit
func TestEffectivePriceIsNonIncreasing(t *testing.T) {
	p := dayPricing("120", tier(2, 5), tier(5, 12), tier(10, 25), tier(30, 40))

	previous := CalculateRentalPrice(p, 1, 1).EffectivePricePerUnit
	for d := int64(2); d <= 60; d++ {
		current := CalculateRentalPrice(p, d, 1).EffectivePricePerUnit
		assert.LessOrEqual(t, current.Cmp(previous), 0, "duration %d", d)
		previous = current
	}
}

// TestSavingsInvariant checks 0 ≤ subtotal ≤ original and savings reconcile
func TestSavingsInvariant(t *testing.T) {
	p := dayPricing("33.33", tier(3, 7), tier(6, 13), tier(9, 99))

	for d := int64(1); d <= 20; d++ {
		for q := int64(1); q <= 4; q++ {
			r := CalculateRentalPrice(p, d, q)
			assert.False(t, r.Subtotal.IsNegative())
			assert.LessOrEqual(t, r.Subtotal.Cmp(r.OriginalSubtotal), 0)
			assert.True(t, r.Savings.Equal(r.OriginalSubtotal.Sub(r.Subtotal)), "d=%d q=%d", d, q)
			assert.False(t, r.Savings.IsNegative())
		}
	}
}
