// Package hcl loads product catalogs written in HCL.
package hcl

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap"

	"rental-engine/core/allocation"
	"rental-engine/core/attributes"
	"rental-engine/core/catalog"
	"rental-engine/core/determinism"
	"rental-engine/core/duration"
	"rental-engine/core/pricing"
	"rental-engine/internal/errors"
)

// FileExtension is the suffix of catalog files inside a catalog directory
const FileExtension = ".hcl"

type catalogFile struct {
	Products []productBlock `hcl:"product,block"`
}

type productBlock struct {
	ID        string          `hcl:"id,label"`
	Name      string          `hcl:"name,optional"`
	Tiered    *tieredBlock    `hcl:"tiered,block"`
	RateBased *rateBasedBlock `hcl:"rate_based,block"`
	Axes      []axisBlock     `hcl:"axis,block"`
	Stock     []stockBlock    `hcl:"stock,block"`
	DefRange  hcl.Range       `hcl:",def_range"`
}

type tieredBlock struct {
	BasePrice hcl.Expression `hcl:"base_price"`
	Deposit   hcl.Expression `hcl:"deposit,optional"`
	Mode      string         `hcl:"mode"`
	Tiers     []tierBlock    `hcl:"tier,block"`
	DefRange  hcl.Range      `hcl:",def_range"`
}

type tierBlock struct {
	MinDuration     int64          `hcl:"min_duration"`
	DiscountPercent hcl.Expression `hcl:"discount_percent"`
}

type rateBasedBlock struct {
	BasePrice  hcl.Expression `hcl:"base_price"`
	BasePeriod *float64       `hcl:"base_period,optional"`
	BaseUnit   string         `hcl:"base_unit"`
	Deposit    hcl.Expression `hcl:"deposit,optional"`
	Rates      []rateBlock    `hcl:"rate,block"`
	DefRange   hcl.Range      `hcl:",def_range"`
}

type rateBlock struct {
	ID       string         `hcl:"id,label"`
	Price    hcl.Expression `hcl:"price"`
	Period   *float64       `hcl:"period,optional"`
	Unit     string         `hcl:"unit"`
	DefRange hcl.Range      `hcl:",def_range"`
}

type axisBlock struct {
	Key      string `hcl:"key,label"`
	Position *int   `hcl:"position,optional"`
}

type stockBlock struct {
	Key        string            `hcl:"key,optional"`
	Attributes map[string]string `hcl:"attributes,optional"`
	Available  int64             `hcl:"available"`
	DefRange   hcl.Range         `hcl:",def_range"`
}

// Loader decodes HCL catalog files into a catalog
type Loader struct {
	parser *hclparse.Parser
	logger *zap.Logger
}

// NewLoader creates a loader that logs to logger
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		parser: hclparse.NewParser(),
		logger: logger,
	}
}

// LoadPath loads a single catalog file, or every *.hcl file under a directory
// in lexical order, into a new catalog.
func (l *Loader) LoadPath(path string) (*catalog.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeNotFound, "catalog path", err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = catalogFiles(path)
		if err != nil {
			return nil, errors.Internal("failed to walk catalog directory", err)
		}
	}

	cat := catalog.NewCatalog()
	for _, file := range files {
		if err := l.LoadFile(file, cat); err != nil {
			return nil, err
		}
	}

	l.logger.Debug("catalog loaded",
		zap.String("path", path),
		zap.Int("files", len(files)),
		zap.Int("products", cat.Len()),
	)
	return cat, nil
}

func catalogFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, FileExtension) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// LoadFile reads and decodes one catalog file into cat
func (l *Loader) LoadFile(path string, cat *catalog.Catalog) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Parsing(fmt.Sprintf("failed to read %s", path), err)
	}
	return l.Parse(src, path, cat)
}

// Parse decodes catalog source into cat. filename is used in diagnostics.
func (l *Loader) Parse(src []byte, filename string, cat *catalog.Catalog) error {
	file, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return diagnosticsError(filename, diags)
	}

	var decoded catalogFile
	if diags := gohcl.DecodeBody(file.Body, nil, &decoded); diags.HasErrors() {
		return diagnosticsError(filename, diags)
	}

	for _, block := range decoded.Products {
		product, diags := convertProduct(block)
		if diags.HasErrors() {
			return diagnosticsError(filename, diags)
		}
		if err := cat.Register(product); err != nil {
			return err
		}
		l.logger.Debug("product decoded",
			zap.String("product", product.ID),
			zap.String("model", string(product.Pricing.Model)),
			zap.Int("axes", len(product.Axes)),
			zap.Int("stock_records", len(product.Inventory)),
		)
	}
	return nil
}

func convertProduct(block productBlock) (catalog.Product, hcl.Diagnostics) {
	product := catalog.Product{
		ID:     block.ID,
		Name:   block.Name,
		Source: block.DefRange.String(),
	}
	if product.Name == "" {
		product.Name = block.ID
	}

	var diags hcl.Diagnostics
	switch {
	case block.Tiered != nil && block.RateBased != nil:
		diags = append(diags, errorAt(block.DefRange, "Conflicting pricing",
			fmt.Sprintf("product %q declares both tiered and rate_based pricing", block.ID)))
	case block.Tiered != nil:
		p, d := convertTiered(block.Tiered)
		diags = append(diags, d...)
		product.Pricing = pricing.Tiered(p)
	case block.RateBased != nil:
		p, d := convertRateBased(block.RateBased)
		diags = append(diags, d...)
		product.Pricing = pricing.RateBased(p)
	default:
		diags = append(diags, errorAt(block.DefRange, "Missing pricing",
			fmt.Sprintf("product %q needs a tiered or rate_based block", block.ID)))
	}

	for i, a := range block.Axes {
		position := i
		if a.Position != nil {
			position = *a.Position
		}
		product.Axes = append(product.Axes, attributes.Axis{
			Key:      attributes.NormalizeAxisKey(a.Key),
			Position: position,
		})
	}

	axisKeys := make(map[string]bool, len(product.Axes))
	for _, axis := range product.Axes {
		axisKeys[axis.Key] = true
	}

	for _, s := range block.Stock {
		for _, key := range determinism.SortedKeys(s.Attributes) {
			if !axisKeys[attributes.NormalizeAxisKey(key)] {
				diags = append(diags, errorAt(s.DefRange, "Unknown stock attribute",
					fmt.Sprintf("product %q has no axis %q", block.ID, key)))
			}
		}
		attrs := attributes.Canonicalize(product.Axes, s.Attributes)
		if len(product.Axes) > 0 && len(attrs) < len(product.Axes) {
			diags = append(diags, errorAt(s.DefRange, "Incomplete stock record",
				fmt.Sprintf("product %q stock records must set every axis", block.ID)))
		}
		key := s.Key
		if key == "" {
			key = attributes.BuildCombinationKey(product.Axes, attrs)
		}
		product.Inventory = append(product.Inventory, allocation.Combination{
			Key:        key,
			Attributes: attrs,
			Available:  s.Available,
		})
	}

	return product, diags
}

func convertTiered(block *tieredBlock) (pricing.ProductPricing, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	p := pricing.ProductPricing{}

	var d hcl.Diagnostics
	p.BasePrice, d = decodeMoney(block.BasePrice)
	diags = append(diags, d...)
	p.Deposit, d = decodeMoney(block.Deposit)
	diags = append(diags, d...)

	mode, err := duration.ParseUnit(block.Mode)
	if err != nil {
		diags = append(diags, errorAt(block.DefRange, "Invalid pricing mode", err.Error()))
	}
	p.Mode = mode

	for _, t := range block.Tiers {
		pct, d := decodeDecimal(t.DiscountPercent)
		diags = append(diags, d...)
		p.Tiers = append(p.Tiers, pricing.PricingTier{
			MinDurationUnits: t.MinDuration,
			DiscountPercent:  pct,
		})
	}
	return p, diags
}

func convertRateBased(block *rateBasedBlock) (pricing.RateBasedPricing, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	p := pricing.RateBasedPricing{}

	var d hcl.Diagnostics
	p.BasePrice, d = decodeMoney(block.BasePrice)
	diags = append(diags, d...)
	p.Deposit, d = decodeMoney(block.Deposit)
	diags = append(diags, d...)

	minutes, d := periodMinutes(block.BasePeriod, block.BaseUnit, block.DefRange)
	diags = append(diags, d...)
	p.BasePeriodMinutes = minutes

	for _, r := range block.Rates {
		price, d := decodeMoney(r.Price)
		diags = append(diags, d...)
		minutes, d := periodMinutes(r.Period, r.Unit, r.DefRange)
		diags = append(diags, d...)
		p.Rates = append(p.Rates, pricing.Rate{
			ID:            r.ID,
			Price:         price,
			PeriodMinutes: minutes,
		})
	}
	return p, diags
}

// periodMinutes converts "period units" to minutes; period defaults to 1
func periodMinutes(period *float64, unitName string, rng hcl.Range) (int64, hcl.Diagnostics) {
	unit, err := duration.ParseUnit(unitName)
	if err != nil {
		return 0, hcl.Diagnostics{errorAt(rng, "Invalid period unit", err.Error())}
	}
	amount := 1.0
	if period != nil {
		amount = *period
	}
	if amount <= 0 {
		return 0, hcl.Diagnostics{errorAt(rng, "Invalid period", fmt.Sprintf("period must be positive, got %v", amount))}
	}
	return duration.ToMinutes(amount, unit), nil
}

func errorAt(rng hcl.Range, summary, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}
}

func diagnosticsError(filename string, diags hcl.Diagnostics) error {
	err := errors.Parsing(fmt.Sprintf("invalid catalog file %s", filename), diags)
	for _, diag := range diags {
		if diag.Severity == hcl.DiagError && diag.Subject != nil {
			err.WithContext("line", diag.Subject.Start.Line)
			break
		}
	}
	return err
}
