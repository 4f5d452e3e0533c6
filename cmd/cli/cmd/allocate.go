// Package cmd - allocate command
package cmd

import (
	"github.com/spf13/cobra"

	"rental-engine/core/engine"
)

var (
	allocateQuantity int64
	allocateAttrs    []string
	allocateFormat   string
)

// allocateCmd represents the allocate command
var allocateCmd = &cobra.Command{
	Use:   "allocate <product>",
	Short: "Allocate stock without pricing",
	Long: `Show how a quantity of a product would be drawn from stock.

A full selection must be served by its one combination. A partial or empty
selection is split across matching combinations in key order.

Examples:
  rental-engine allocate camera-kit --quantity 3
  rental-engine allocate camera-kit --quantity 2 --attr size=M`,
	Args: cobra.ExactArgs(1),
	RunE: runAllocate,
}

func init() {
	allocateCmd.Flags().Int64VarP(&allocateQuantity, "quantity", "q", 1, "number of items")
	allocateCmd.Flags().StringArrayVarP(&allocateAttrs, "attr", "a", nil, "attribute selection as key=value (repeatable)")
	allocateCmd.Flags().StringVarP(&allocateFormat, "format", "f", "", "output format (cli, json)")
}

func runAllocate(cmd *cobra.Command, args []string) error {
	attrs, err := parseAttributes(allocateAttrs)
	if err != nil {
		return err
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	stock, err := e.Allocate(cmd.Context(), engine.AllocateRequest{
		ProductID:  args[0],
		Quantity:   allocateQuantity,
		Attributes: attrs,
	})
	if err != nil {
		return err
	}

	f, err := formatter(allocateFormat, false)
	if err != nil {
		return err
	}
	return f.RenderStock(cmd.OutOrStdout(), args[0], stock)
}
