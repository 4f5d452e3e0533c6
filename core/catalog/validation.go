// Package catalog - Catalog validation
// Configuration errors are caught here, before any product reaches a calculator.
package catalog

import (
	"fmt"

	"rental-engine/core/attributes"
	"rental-engine/core/determinism"
	"rental-engine/internal/errors"
)

// ValidationRule is a catalog validation rule
type ValidationRule func(*Product) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validatePricing,
		validateAxes,
		validateInventoryKeys,
		validateInventoryQuantities,
	}
}

// Validate checks a catalog against validation rules
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error

	for _, product := range c.List() {
		for _, rule := range rules {
			if err := rule(product); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", product.ID, err))
			}
		}
	}

	return errs
}

// validatePricing rejects tiers and rates the calculators assume are valid
func validatePricing(p *Product) error {
	return p.Pricing.Validate()
}

// validateAxes enforces the axis cap and key uniqueness
func validateAxes(p *Product) error {
	return attributes.ValidateAxes(p.Axes)
}

// validateInventoryKeys requires each stock record's key to be the canonical
// key of its attributes, so exact-match lookups agree with the allocator.
// On a product with axes every record names every axis and nothing else.
func validateInventoryKeys(p *Product) error {
	axes := make(map[string]bool, len(p.Axes))
	for _, axis := range p.Axes {
		axes[attributes.NormalizeAxisKey(axis.Key)] = true
	}

	seen := make(map[string]bool, len(p.Inventory))
	for _, c := range p.Inventory {
		want := attributes.BuildCombinationKey(p.Axes, c.Attributes)
		if c.Key != want {
			return errors.Config("stock record %q should have key %q", c.Key, want)
		}
		for _, key := range determinism.SortedKeys(c.Attributes) {
			if !axes[attributes.NormalizeAxisKey(key)] {
				return errors.Config("stock record %q has attribute %q that is not an axis", c.Key, key)
			}
		}
		if len(p.Axes) > 0 && c.Key == attributes.DefaultCombinationKey {
			return errors.Config("stock record %q does not set every axis", c.Key)
		}
		if seen[c.Key] {
			return errors.Config("stock record %q defined twice", c.Key)
		}
		seen[c.Key] = true
	}
	return nil
}

// validateInventoryQuantities rejects negative availability
func validateInventoryQuantities(p *Product) error {
	for _, c := range p.Inventory {
		if c.Available < 0 {
			return fmt.Errorf("stock record %q has negative availability %d", c.Key, c.Available)
		}
	}
	return nil
}
