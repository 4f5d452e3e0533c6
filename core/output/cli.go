package output

import (
	"fmt"
	"io"
	"strings"

	"rental-engine/core/determinism"
	"rental-engine/core/duration"
	"rental-engine/core/engine"
	"rental-engine/core/pricing"
	"rental-engine/core/ui"
)

// CLIFormatter renders quotes as terminal tables
type CLIFormatter struct {
	opts Options
}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter(opts Options) *CLIFormatter {
	return &CLIFormatter{opts: opts}
}

// Format implements Formatter
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

func (f *CLIFormatter) writer(w io.Writer) *ui.Writer {
	out := ui.NewWriter(w, f.opts.NoColor)
	if f.opts.Verbose {
		out.SetVerbosity(2)
	}
	return out
}

// RenderQuote implements Formatter
func (f *CLIFormatter) RenderQuote(w io.Writer, quote *engine.Quote) error {
	out := f.writer(w)

	out.Header(fmt.Sprintf("Quote: %s (%s)", quote.ProductName, quote.ProductID))
	out.Field("Duration", duration.MinutesLabel(quote.DurationMinutes))
	out.Field("Quantity", fmt.Sprintf("%d", quote.Quantity))
	out.Field("Pricing", string(quote.Pricing.Model))
	out.Debug("duration_minutes=%d", quote.DurationMinutes)

	switch {
	case quote.Pricing.Tiered != nil:
		renderTiered(out, quote.Pricing.Tiered)
	case quote.Pricing.RateBased != nil:
		renderRateBased(out, quote.Pricing.RateBased, f.opts.ShowPlan)
	}

	if quote.Stock != nil {
		renderStock(out, quote.Stock)
	}

	b := quote.Pricing
	summary := out.NewQuoteSummary()
	summary.Subtotal = b.Subtotal.String()
	summary.Deposit = b.Deposit.String()
	summary.DueNow = quote.TotalWithDeposit.String()
	summary.Available = quote.Available
	if b.Savings.IsPositive() {
		summary.Original = b.OriginalSubtotal.String()
		summary.Savings = b.Savings.String()
		summary.SavingsPercent = b.SavingsPercent
	}
	summary.Render()
	return nil
}

// RenderStock implements Formatter
func (f *CLIFormatter) RenderStock(w io.Writer, productID string, stock *engine.StockResult) error {
	out := f.writer(w)
	out.Header("Allocation: " + productID)
	renderStock(out, stock)
	out.Println("")
	if stock.Available() {
		out.Success("Allocated %d", stock.Allocation.Total())
	} else {
		out.Error("Not enough stock (capacity %d)", stock.Capacity)
	}
	return nil
}

func renderTiered(out *ui.Writer, r *pricing.PriceCalculationResult) {
	out.Field("Billed", duration.Label(r.Duration, r.Mode))
	out.Field("Unit price", r.EffectivePricePerUnit.String())
	if r.AppliedTier != nil {
		out.Field("Tier", fmt.Sprintf("%s off from %s",
			r.AppliedTier.DiscountPercent.String()+"%",
			duration.Label(r.AppliedTier.MinDurationUnits, r.Mode)))
	}
}

func renderRateBased(out *ui.Writer, r *pricing.RateCalculationResult, showPlan bool) {
	if r.AppliedRate != nil {
		out.Field("Main rate", r.AppliedRate.ID)
	}
	if r.CoveredMinutes > r.DurationMinutes {
		out.Field("Covered", duration.MinutesLabel(r.CoveredMinutes))
	}
	if r.Fallback {
		out.Warning("Rental too long to optimize; priced with a single rate")
	}
	out.Debug("fingerprint=%s", r.Fingerprint)
	if !showPlan {
		return
	}

	out.Println("")
	out.SubHeader("Rate plan (per item)")
	table := out.NewTable("Rate", "Period", "Count", "Cost")
	for _, line := range r.PeriodsUsed {
		table.AddRow(
			line.Rate.ID,
			duration.MinutesLabel(line.Rate.PeriodMinutes),
			fmt.Sprintf("%d", line.Quantity),
			line.Cost.String(),
		)
	}
	table.Render()
}

func renderStock(out *ui.Writer, stock *engine.StockResult) {
	out.Println("")
	selection := "any"
	if len(stock.Selected) > 0 {
		parts := make([]string, 0, len(stock.Selected))
		for _, k := range determinism.SortedKeys(stock.Selected) {
			parts = append(parts, k+"="+stock.Selected[k])
		}
		selection = strings.Join(parts, ", ")
	}
	out.SubHeader(fmt.Sprintf("Stock (%s selection: %s, capacity %d)", stock.Mode, selection, stock.Capacity))

	if stock.Allocation == nil {
		return
	}
	if n := len(stock.Allocation.Allocations); n > 1 {
		out.Info("Split across %d combinations", n)
	}
	table := out.NewTable("Combination", "Quantity")
	for _, a := range stock.Allocation.Allocations {
		table.AddRow(a.CombinationKey, fmt.Sprintf("%d", a.Quantity))
	}
	table.Render()
}
