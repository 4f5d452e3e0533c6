// Package cmd - catalog commands
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rental-engine/core/catalog"
	"rental-engine/core/duration"
	"rental-engine/core/pricing"
	"rental-engine/core/ui"
)

// catalogCmd groups catalog commands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the product catalog",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every product for configuration errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(false)
		if err != nil {
			return err
		}

		w := ui.NewWriter(cmd.OutOrStdout(), noColor)
		errs := cat.Validate(catalog.DefaultValidationRules())
		for _, e := range errs {
			w.Error("%v", e)
		}
		if len(errs) > 0 {
			return fmt.Errorf("%d problems in %d products", len(errs), cat.Len())
		}
		w.Success("%d products are valid", cat.Len())
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(false)
		if err != nil {
			return err
		}

		w := ui.NewWriter(cmd.OutOrStdout(), noColor)
		table := w.NewTable("ID", "Name", "Pricing", "Base price", "Axes", "Stock")
		for _, p := range cat.List() {
			table.AddRow(
				p.ID,
				p.Name,
				string(p.Pricing.Model),
				basePrice(p.Pricing),
				fmt.Sprintf("%d", len(p.Axes)),
				stockLabel(p),
			)
		}
		table.Render()
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogListCmd)
}

func basePrice(p pricing.Pricing) string {
	switch {
	case p.Tiered != nil:
		return p.Tiered.BasePrice.String() + " / " + string(p.Tiered.Mode)
	case p.RateBased != nil:
		return p.RateBased.BasePrice.String() + " / " + duration.MinutesLabel(p.RateBased.BasePeriodMinutes)
	default:
		return "-"
	}
}

func stockLabel(p *catalog.Product) string {
	if !p.TracksInventory() {
		return "untracked"
	}
	var total int64
	for _, c := range p.Inventory {
		if c.Available > 0 {
			total += c.Available
		}
	}
	return fmt.Sprintf("%d in %d combinations", total, len(p.Inventory))
}
