// Package catalog - Product catalog
// Holds the validated pricing and stock configuration of every rentable product.
package catalog

import (
	"sort"
	"sync"

	"rental-engine/core/allocation"
	"rental-engine/core/attributes"
	"rental-engine/core/pricing"
	"rental-engine/internal/errors"
)

// Product is a rentable product as loaded from storage
type Product struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Pricing pricing.Pricing `json:"pricing"`

	// Axes are the attribute dimensions stock is tracked by; empty for untracked products
	Axes []attributes.Axis `json:"axes,omitempty"`

	// Inventory is the availability snapshot, one record per combination
	Inventory []allocation.Combination `json:"inventory,omitempty"`

	// Source is where the product was defined, for diagnostics
	Source string `json:"source,omitempty"`
}

// TracksInventory reports whether the product has any stock records
func (p *Product) TracksInventory() bool {
	return len(p.Inventory) > 0
}

// Catalog is an in-memory product registry. It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]*Product
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		products: make(map[string]*Product),
	}
}

// Register adds a product, rejecting a second product with the same id
func (c *Catalog) Register(product Product) error {
	if product.ID == "" {
		return errors.Config("product id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.products[product.ID]; ok {
		return errors.Config("product %q defined twice", product.ID).
			WithContext("first", existing.Source).
			WithContext("second", product.Source)
	}
	c.products[product.ID] = &product
	return nil
}

// Get returns a product by id
func (c *Catalog) Get(id string) (*Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	return p, ok
}

// List returns every product ordered by id
func (c *Catalog) List() []*Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of products
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}
