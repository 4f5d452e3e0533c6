// Package pricing - Rate plan cache
// Plans depend only on the duration, the rate set and the table ceiling, so
// they can be shared between quotes of the same product.
package pricing

import (
	"strconv"
	"strings"
	"sync"
)

// DefaultPlanCacheEntries is the default plan cache capacity
const DefaultPlanCacheEntries = 4096

// PlanCache memoizes optimizer plans. It is safe for concurrent use.
type PlanCache struct {
	maxEntries int

	// entries by key; order is insertion order for eviction
	entries map[string]RatePlan
	order   []string

	hits      int64
	misses    int64
	evictions int64

	mu sync.Mutex
}

// CacheStats contains cache statistics
type CacheStats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// NewPlanCache creates a cache holding at most maxEntries plans
func NewPlanCache(maxEntries int) *PlanCache {
	if maxEntries <= 0 {
		maxEntries = DefaultPlanCacheEntries
	}
	return &PlanCache{
		maxEntries: maxEntries,
		entries:    make(map[string]RatePlan),
	}
}

// Get returns a copy of the cached plan for key
func (c *PlanCache) Get(key string) (*RatePlan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	plan, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return plan.clone(), true
}

// Put stores a copy of plan, evicting the oldest entry when full
func (c *PlanCache) Put(key string, plan *RatePlan) {
	if plan == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = *plan.clone()
		return
	}
	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.evictions++
	}
	c.entries[key] = *plan.clone()
	c.order = append(c.order, key)
}

// Invalidate drops every entry, for example after the catalog is reloaded
func (c *PlanCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]RatePlan)
	c.order = nil
}

// Stats returns cache statistics
func (c *PlanCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

func (p RatePlan) clone() *RatePlan {
	out := p
	out.Lines = append([]PlanLine(nil), p.Lines...)
	return &out
}

// planKey identifies a search: table ceiling, duration and the canonical rate set
func planKey(maxSteps int, durationMinutes int64, usable []Rate) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(maxSteps))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(durationMinutes, 10))
	for _, r := range usable {
		b.WriteByte('|')
		b.WriteString(r.ID)
		b.WriteByte('@')
		b.WriteString(r.Price.StringRaw())
		b.WriteByte('/')
		b.WriteString(strconv.FormatInt(r.PeriodMinutes, 10))
	}
	return b.String()
}
