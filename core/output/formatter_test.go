package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-engine/core/allocation"
	"rental-engine/core/attributes"
	"rental-engine/core/catalog"
	"rental-engine/core/determinism"
	"rental-engine/core/duration"
	"rental-engine/core/engine"
	"rental-engine/core/pricing"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	axes := []attributes.Axis{{Key: "size", Position: 0}}
	medium := attributes.Attributes{"size": "M"}

	cat := catalog.NewCatalog()
	require.NoError(t, cat.Register(catalog.Product{
		ID:   "bike",
		Name: "City bike",
		Pricing: pricing.Tiered(pricing.ProductPricing{
			BasePrice: determinism.MustMoney("20"),
			Deposit:   determinism.MustMoney("100"),
			Mode:      duration.Day,
			Tiers: []pricing.PricingTier{
				{MinDurationUnits: 5, DiscountPercent: decimal.NewFromInt(25)},
			},
		}),
		Axes: axes,
		Inventory: []allocation.Combination{
			{Key: attributes.BuildCombinationKey(axes, medium), Attributes: medium, Available: 2},
		},
	}))
	require.NoError(t, cat.Register(catalog.Product{
		ID:   "tent",
		Name: "Tent",
		Pricing: pricing.RateBased(pricing.RateBasedPricing{
			BasePrice:         determinism.MustMoney("15"),
			BasePeriodMinutes: 1440,
			Rates: []pricing.Rate{
				{ID: "weekend", Price: determinism.MustMoney("25"), PeriodMinutes: 2880},
			},
		}),
	}))
	return engine.NewEngine(cat, engine.EngineConfig{}, nil)
}

func quote(t *testing.T, req engine.QuoteRequest) *engine.Quote {
	t.Helper()
	q, err := testEngine(t).Quote(context.Background(), req)
	require.NoError(t, err)
	return q
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Options{})
	assert.Equal(t, []Format{FormatCLI, FormatJSON}, r.Formats())

	f, err := r.Get(FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f.Format())

	_, err = r.Get("html")
	assert.Error(t, err)
}

func TestCLIRendersTieredQuote(t *testing.T) {
	q := quote(t, engine.QuoteRequest{
		ProductID:  "bike",
		Duration:   5,
		Unit:       duration.Day,
		Quantity:   1,
		Attributes: map[string]string{"size": "M"},
	})

	var buf bytes.Buffer
	require.NoError(t, NewCLIFormatter(Options{NoColor: true}).RenderQuote(&buf, q))
	out := buf.String()

	assert.Contains(t, out, "Quote: City bike (bike)")
	assert.Contains(t, out, "5 days")
	assert.Contains(t, out, "25% off from 5 days")
	assert.Contains(t, out, "75.00")
	assert.Contains(t, out, "25.00 (25%)")
	assert.Contains(t, out, "175.00")
	assert.Contains(t, out, "size:M")
	assert.Contains(t, out, "In stock")
	assert.NotContains(t, out, "\033[")
}

func TestCLIRendersRatePlan(t *testing.T) {
	q := quote(t, engine.QuoteRequest{ProductID: "tent", Duration: 5, Unit: duration.Day, Quantity: 1})

	var buf bytes.Buffer
	require.NoError(t, NewCLIFormatter(Options{NoColor: true, ShowPlan: true}).RenderQuote(&buf, q))
	out := buf.String()

	assert.Contains(t, out, "Rate plan")
	assert.Contains(t, out, "weekend")
	assert.Contains(t, out, "65.00")

	buf.Reset()
	require.NoError(t, NewCLIFormatter(Options{NoColor: true}).RenderQuote(&buf, q))
	assert.NotContains(t, buf.String(), "Rate plan")
}

func TestCLIRendersOutOfStock(t *testing.T) {
	q := quote(t, engine.QuoteRequest{ProductID: "bike", Duration: 1, Unit: duration.Day, Quantity: 3})

	var buf bytes.Buffer
	require.NoError(t, NewCLIFormatter(Options{NoColor: true}).RenderQuote(&buf, q))
	assert.Contains(t, buf.String(), "Not enough stock")
	assert.Contains(t, buf.String(), "capacity 2")
}

func TestJSONRendersQuote(t *testing.T) {
	q := quote(t, engine.QuoteRequest{ProductID: "tent", Duration: 5, Unit: duration.Day, Quantity: 2})

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().RenderQuote(&buf, q))

	var doc struct {
		ProductID string `json:"product_id"`
		Available bool   `json:"available"`
		Pricing   struct {
			Model    string `json:"model"`
			Subtotal string `json:"subtotal"`
			Savings  string `json:"savings"`
		} `json:"pricing"`
		TotalWithDeposit string `json:"total_with_deposit"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "tent", doc.ProductID)
	assert.True(t, doc.Available)
	assert.Equal(t, "rate_based", doc.Pricing.Model)
	assert.Equal(t, "130.00", doc.Pricing.Subtotal)
	assert.Equal(t, "20.00", doc.Pricing.Savings)
	assert.Equal(t, "130.00", doc.TotalWithDeposit)
}

func TestRenderStock(t *testing.T) {
	stock, err := testEngine(t).Allocate(context.Background(), engine.AllocateRequest{
		ProductID: "bike",
		Quantity:  2,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewCLIFormatter(Options{NoColor: true}).RenderStock(&buf, "bike", stock))
	assert.Contains(t, buf.String(), "Allocated 2")

	buf.Reset()
	require.NoError(t, NewJSONFormatter().RenderStock(&buf, "bike", stock))
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "bike", doc["product_id"])
	assert.Equal(t, true, doc["available"])
	assert.Equal(t, "none", doc["mode"])
}

func TestCLIVerboseAddsDebugDetail(t *testing.T) {
	q := quote(t, engine.QuoteRequest{ProductID: "tent", Duration: 5, Unit: duration.Day, Quantity: 1})

	var buf bytes.Buffer
	require.NoError(t, NewCLIFormatter(Options{NoColor: true}).RenderQuote(&buf, q))
	assert.NotContains(t, buf.String(), "fingerprint=")

	buf.Reset()
	require.NoError(t, NewCLIFormatter(Options{NoColor: true, Verbose: true}).RenderQuote(&buf, q))
	out := buf.String()
	assert.Contains(t, out, "duration_minutes=7200")
	assert.Contains(t, out, "fingerprint="+string(q.Pricing.RateBased.Fingerprint))
}

func TestRenderStockNotesSplit(t *testing.T) {
	stock := &engine.StockResult{
		Mode:     attributes.SelectionPartial,
		Capacity: 5,
		Allocation: &allocation.Plan{
			Mode: attributes.SelectionPartial,
			Allocations: []allocation.Allocation{
				{CombinationKey: "size:M|color:Red", Quantity: 3},
				{CombinationKey: "size:M|color:Blue", Quantity: 1},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCLIFormatter(Options{NoColor: true}).RenderStock(&buf, "kit", stock))
	assert.Contains(t, buf.String(), "Split across 2 combinations")
	assert.Contains(t, buf.String(), "Allocated 4")
}
