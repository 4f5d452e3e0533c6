package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-engine/core/allocation"
	"rental-engine/core/attributes"
	"rental-engine/core/determinism"
	"rental-engine/core/duration"
	"rental-engine/core/pricing"
	"rental-engine/internal/errors"
)

func kayak() Product {
	axes := []attributes.Axis{{Key: "seats", Position: 0}}
	single := attributes.Attributes{"seats": "1"}
	return Product{
		ID:   "kayak",
		Name: "Kayak",
		Pricing: pricing.Tiered(pricing.ProductPricing{
			BasePrice: determinism.MustMoney("40"),
			Mode:      duration.Day,
			Tiers: []pricing.PricingTier{
				{MinDurationUnits: 3, DiscountPercent: decimal.NewFromInt(10)},
			},
		}),
		Axes: axes,
		Inventory: []allocation.Combination{
			{Key: attributes.BuildCombinationKey(axes, single), Attributes: single, Available: 3},
		},
	}
}

func TestRegisterAndList(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(kayak()))
	require.NoError(t, c.Register(Product{ID: "canoe", Pricing: kayak().Pricing}))

	products := c.List()
	require.Len(t, products, 2)
	assert.Equal(t, "canoe", products[0].ID)
	assert.Equal(t, "kayak", products[1].ID)

	p, ok := c.Get("kayak")
	require.True(t, ok)
	assert.True(t, p.TracksInventory())

	_, ok = c.Get("raft")
	assert.False(t, ok)
}

func TestRegisterRejectsDuplicatesAndBlankIDs(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(kayak()))

	err := c.Register(kayak())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))

	assert.Error(t, c.Register(Product{}))
	assert.Equal(t, 1, c.Len())
}

func TestValidateAcceptsWellFormedProduct(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(kayak()))
	assert.Empty(t, c.Validate(DefaultValidationRules()))
}

func TestValidateReportsEveryRule(t *testing.T) {
	broken := kayak()
	broken.Pricing.Tiered.Tiers = append(broken.Pricing.Tiered.Tiers,
		pricing.PricingTier{MinDurationUnits: 3, DiscountPercent: decimal.NewFromInt(20)})
	broken.Axes = append(broken.Axes,
		attributes.Axis{Key: "a", Position: 1},
		attributes.Axis{Key: "b", Position: 2},
		attributes.Axis{Key: "c", Position: 3},
	)
	broken.Inventory = append(broken.Inventory, allocation.Combination{Key: "x", Available: -1})

	c := NewCatalog()
	require.NoError(t, c.Register(broken))

	errs := c.Validate(DefaultValidationRules())
	require.Len(t, errs, 4)

	var joined []string
	for _, err := range errs {
		assert.True(t, strings.HasPrefix(err.Error(), "kayak: "))
		joined = append(joined, err.Error())
	}
	all := strings.Join(joined, "\n")
	assert.Contains(t, all, "duplicate min duration")
	assert.Contains(t, all, "at most 3 attribute axes")
	assert.Contains(t, all, "should have key")
	assert.Contains(t, all, "negative availability")
}

func TestValidateRejectsStockOutsideTheAxes(t *testing.T) {
	tests := []struct {
		name    string
		record  allocation.Combination
		message string
	}{
		{
			name: "attribute that is not an axis",
			record: allocation.Combination{
				Key:        "seats:2",
				Attributes: attributes.Attributes{"seats": "2", "colour": "Red"},
				Available:  1,
			},
			message: `"colour" that is not an axis`,
		},
		{
			name:    "default record on a product with axes",
			record:  allocation.Combination{Key: attributes.DefaultCombinationKey, Available: 5},
			message: "does not set every axis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := kayak()
			p.Inventory = append(p.Inventory, tt.record)

			c := NewCatalog()
			require.NoError(t, c.Register(p))

			errs := c.Validate(DefaultValidationRules())
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.message)
			assert.True(t, errors.IsType(errs[0], errors.TypeConfig))
		})
	}
}

func TestValidateAllowsDefaultStockWithoutAxes(t *testing.T) {
	p := kayak()
	p.Axes = nil
	p.Inventory = []allocation.Combination{{Key: attributes.DefaultCombinationKey, Available: 2}}

	c := NewCatalog()
	require.NoError(t, c.Register(p))
	assert.Empty(t, c.Validate(DefaultValidationRules()))
}
