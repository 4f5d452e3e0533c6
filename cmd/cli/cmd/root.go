// Package cmd provides the CLI commands for rental-engine.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rental-engine/adapters/hcl"
	"rental-engine/core/catalog"
	"rental-engine/core/engine"
	"rental-engine/core/output"
	"rental-engine/internal/config"
	"rental-engine/internal/errors"
	"rental-engine/internal/logging"
)

// Version is the CLI version, overridden at build time with -ldflags
var Version = "0.1.0"

var (
	cfgFile     string
	catalogPath string
	verbose     bool
	noColor     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rental-engine",
	Short: "Price rentals and allocate stock",
	Long: `rental-engine quotes rental prices and allocates inventory for a product
catalog written in HCL.

Tiered products apply duration discounts; rate-based products are billed with
the cheapest combination of their rate periods.

Examples:
  rental-engine quote camera-kit --duration 7 --unit day
  rental-engine quote van --from 2026-03-01T09:00:00Z --to 2026-03-11T09:00:00Z
  rental-engine allocate camera-kit --quantity 3 --attr size=M
  rental-engine catalog validate --catalog ./catalog`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rental-engine.json)")
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "catalog file or directory (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(allocateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// loadCatalog reads the catalog named by --catalog or the config.
// With strict set, a catalog that fails validation is rejected.
func loadCatalog(strict bool) (*catalog.Catalog, error) {
	path := catalogPath
	if path == "" {
		path = config.Get().Catalog.Path
	}

	cat, err := hcl.NewLoader(logging.Named("catalog")).LoadPath(path)
	if err != nil {
		return nil, err
	}

	if strict {
		if errs := cat.Validate(catalog.DefaultValidationRules()); len(errs) > 0 {
			for _, e := range errs {
				logging.Warn("invalid product", zap.Error(e))
			}
			return nil, errors.Wrap(errors.TypeConfig, "catalog "+path+" is invalid", errors.Join(errs))
		}
	}
	return cat, nil
}

func newEngine() (*engine.Engine, error) {
	cfg := config.Get()
	cat, err := loadCatalog(cfg.Catalog.Strict)
	if err != nil {
		return nil, err
	}
	return engine.NewEngine(cat, engine.EngineConfig{
		MaxSteps:         cfg.Optimizer.MaxSteps,
		PlanCacheEntries: cfg.Optimizer.CacheEntries,
	}, logging.Named("engine")), nil
}

func formatter(format string, showPlan bool) (output.Formatter, error) {
	cfg := config.Get()
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	registry := output.NewRegistry(output.Options{
		NoColor:  noColor || cfg.Output.NoColor,
		ShowPlan: showPlan,
		Verbose:  verbose,
	})
	return registry.Get(output.Format(format))
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rental-engine version %s\n", Version)
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(config.Get())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
