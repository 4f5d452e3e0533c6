package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayAndWeek() RateBasedPricing {
	return RateBasedPricing{
		BasePrice:         money("20"),
		BasePeriodMinutes: 1440,
		Deposit:           money("75"),
		Rates:             []Rate{rate("week", "120", 10080)},
	}
}

// TestCalculateRentalPriceV2TenDays prices the documented ten day rental
func TestCalculateRentalPriceV2TenDays(t *testing.T) {
	result := CalculateRentalPriceV2(dayAndWeek(), 14400, 2)

	require.NotNil(t, result)
	assert.Equal(t, "360.00", result.Subtotal.String())
	assert.Equal(t, "400.00", result.OriginalSubtotal.String())
	assert.Equal(t, "40.00", result.Savings.String())
	require.NotNil(t, result.ReductionPercent)
	assert.Equal(t, int64(10), *result.ReductionPercent)
	assert.Equal(t, "150.00", result.Deposit.String())
	assert.Equal(t, result.Subtotal.String(), result.Total.String(), "deposit stays out of the total")
	assert.Equal(t, int64(14400), result.CoveredMinutes)
	assert.Equal(t, int64(14400), result.DurationMinutes)
	assert.Equal(t, int64(2), result.Quantity)

	require.NotNil(t, result.AppliedRate)
	assert.Equal(t, BaseRateID, result.AppliedRate.ID, "three day periods outnumber one week")

	require.Len(t, result.PeriodsUsed, 2)
	assert.Equal(t, BaseRateID, result.PeriodsUsed[0].Rate.ID)
	assert.Equal(t, "60.00", result.PeriodsUsed[0].Cost.String())
	assert.Equal(t, "week", result.PeriodsUsed[1].Rate.ID)
}

func TestCalculateRentalPriceV2WithoutSavings(t *testing.T) {
	result := CalculateRentalPriceV2(dayAndWeek(), 3*1440, 1)

	require.NotNil(t, result)
	assert.Equal(t, "60.00", result.Subtotal.String())
	assert.True(t, result.Savings.IsZero())
	assert.Nil(t, result.ReductionPercent)
}

func TestCalculateRentalPriceV2PartialBasePeriodBillsFull(t *testing.T) {
	result := CalculateRentalPriceV2(dayAndWeek(), 1441, 1)

	assert.Equal(t, "40.00", result.OriginalSubtotal.String())
	assert.Equal(t, "40.00", result.Subtotal.String())
}

func TestDominantRateTiePrefersLongerPeriod(t *testing.T) {
	result := CalculateRentalPriceV2(dayAndWeek(), 11520, 1)

	require.NotNil(t, result)
	require.Len(t, result.PeriodsUsed, 2)
	assert.Equal(t, "week", result.AppliedRate.ID)
}

func TestFingerprintIsStable(t *testing.T) {
	a := CalculateRentalPriceV2(dayAndWeek(), 14400, 1)
	b := CalculateRentalPriceV2(dayAndWeek(), 14400, 1)
	c := CalculateRentalPriceV2(dayAndWeek(), 14400, 2)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestCalculateRentalPriceV2NoUsableRate(t *testing.T) {
	p := RateBasedPricing{BasePrice: money("10"), BasePeriodMinutes: 0}
	assert.Nil(t, CalculateRentalPriceV2(p, 60, 1))
}

func TestCalculateRentalPriceV2FractionalPrices(t *testing.T) {
	p := RateBasedPricing{
		BasePrice:         money("3.335"),
		BasePeriodMinutes: 60,
		Rates:             []Rate{rate("evening", "9.999", 240)},
	}

	result := CalculateRentalPriceV2(p, 300, 3)

	// evening + 1 hour = 13.334 per item, 40.002 for three
	require.NotNil(t, result)
	assert.Equal(t, "40.00", result.Subtotal.String())
	assert.Equal(t, "50.03", result.OriginalSubtotal.String())
	assert.True(t, result.Savings.Equal(result.OriginalSubtotal.Sub(result.Subtotal)))
}
