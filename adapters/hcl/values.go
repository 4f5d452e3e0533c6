package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"rental-engine/core/determinism"
)

// decodeDecimal evaluates a literal expression into an exact decimal.
// Numbers and decimal strings are both accepted; null decodes as zero.
// The value never passes through float64.
func decodeDecimal(expr hcl.Expression) (decimal.Decimal, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return decimal.Zero, diags
	}

	if !val.IsKnown() {
		return decimal.Zero, hcl.Diagnostics{errorAt(expr.Range(), "Unknown value", "amounts must be literal values")}
	}
	if val.IsNull() {
		return decimal.Zero, nil
	}

	var text string
	switch val.Type() {
	case cty.Number:
		text = val.AsBigFloat().Text('f', -1)
	case cty.String:
		text = val.AsString()
	default:
		return decimal.Zero, hcl.Diagnostics{errorAt(expr.Range(), "Invalid amount",
			fmt.Sprintf("expected a number or decimal string, got %s", val.Type().FriendlyName()))}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, hcl.Diagnostics{errorAt(expr.Range(), "Invalid amount",
			fmt.Sprintf("%q is not a decimal amount", text))}
	}
	return d, nil
}

func decodeMoney(expr hcl.Expression) (determinism.Money, hcl.Diagnostics) {
	d, diags := decodeDecimal(expr)
	return determinism.NewMoney(d), diags
}
