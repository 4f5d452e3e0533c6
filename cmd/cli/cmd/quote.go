// Package cmd - quote command
package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rental-engine/core/duration"
	"rental-engine/core/engine"
	"rental-engine/internal/config"
	"rental-engine/internal/errors"
)

var (
	quoteDuration float64
	quoteUnit     string
	quoteFrom     string
	quoteTo       string
	quoteQuantity int64
	quoteAttrs    []string
	quoteFormat   string
	quotePlan     bool
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote <product>",
	Short: "Quote a rental",
	Long: `Price a rental of a product and allocate stock for it.

The rental length is either an amount of units (--duration, --unit) or a time
range (--from, --to) in RFC 3339. Tiered products bill whole units of their
pricing mode; rate-based products bill the cheapest combination of rates.

Examples:
  rental-engine quote camera-kit --duration 7 --unit day
  rental-engine quote camera-kit --duration 3 --attr size=M --attr color=Red --quantity 2
  rental-engine quote van --from 2026-03-01T09:00:00Z --to 2026-03-11T09:00:00Z
  rental-engine quote van --duration 36 --unit hour --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().Float64VarP(&quoteDuration, "duration", "d", 0, "rental length in --unit")
	quoteCmd.Flags().StringVarP(&quoteUnit, "unit", "u", "day", "duration unit (minute, hour, day, week)")
	quoteCmd.Flags().StringVar(&quoteFrom, "from", "", "rental start (RFC 3339)")
	quoteCmd.Flags().StringVar(&quoteTo, "to", "", "rental end (RFC 3339)")
	quoteCmd.Flags().Int64VarP(&quoteQuantity, "quantity", "q", 1, "number of items")
	quoteCmd.Flags().StringArrayVarP(&quoteAttrs, "attr", "a", nil, "attribute selection as key=value (repeatable)")
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "", "output format (cli, json)")
	quoteCmd.Flags().BoolVar(&quotePlan, "plan", false, "show the rate plan")
}

func runQuote(cmd *cobra.Command, args []string) error {
	attrs, err := parseAttributes(quoteAttrs)
	if err != nil {
		return err
	}

	req := engine.QuoteRequest{
		ProductID:  args[0],
		Quantity:   quoteQuantity,
		Attributes: attrs,
	}
	if req.Start, err = parseTime("from", quoteFrom); err != nil {
		return err
	}
	if req.End, err = parseTime("to", quoteTo); err != nil {
		return err
	}
	if cmd.Flags().Changed("duration") {
		unit, err := duration.ParseUnit(quoteUnit)
		if err != nil {
			return errors.Wrap(errors.TypeInput, "invalid --unit", err)
		}
		req.Duration = quoteDuration
		req.Unit = unit
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	quote, err := e.Quote(cmd.Context(), req)
	if err != nil {
		return err
	}

	f, err := formatter(quoteFormat, quotePlan || config.Get().Output.ShowPlan)
	if err != nil {
		return err
	}
	return f.RenderQuote(cmd.OutOrStdout(), quote)
}

// parseAttributes turns repeated key=value flags into a selection
func parseAttributes(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, errors.Inputf("attribute %q is not key=value", pair)
		}
		attrs[key] = value
	}
	return attrs, nil
}

func parseTime(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.TypeInput, "invalid --"+flag, err)
	}
	return t, nil
}
