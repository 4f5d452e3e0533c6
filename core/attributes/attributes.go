// Package attributes canonicalizes booking attribute selections such as
// {size: "M", color: "Red"} into deterministic combination keys.
package attributes

import (
	"regexp"
	"sort"
	"strings"

	"rental-engine/core/determinism"
	"rental-engine/internal/errors"
)

// DefaultCombinationKey stands for "no axes apply" or "selection incomplete"
const DefaultCombinationKey = "__default"

// MaxAxes is the most attribute axes a product may define
const MaxAxes = 3

// Axis is one dimension a product's stock varies along
type Axis struct {
	Key      string `json:"key"`
	Position int    `json:"position"`
}

// Attributes maps normalized axis keys to normalized values
type Attributes map[string]string

// SelectionMode describes how much of a selection has been made
type SelectionMode string

const (
	SelectionNone    SelectionMode = "none"
	SelectionPartial SelectionMode = "partial"
	SelectionFull    SelectionMode = "full"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	invalidKey  = regexp.MustCompile(`[^a-z0-9_-]`)
	underscores = regexp.MustCompile(`_+`)
)

// NormalizeAxisKey lowercases, collapses whitespace, maps characters outside
// [a-z0-9_-] to '_', collapses runs of '_' and trims them from both ends.
func NormalizeAxisKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = whitespace.ReplaceAllString(k, " ")
	k = invalidKey.ReplaceAllString(k, "_")
	k = underscores.ReplaceAllString(k, "_")
	return strings.Trim(k, "_")
}

// NormalizeAttributeValue trims and collapses whitespace. Case is preserved.
func NormalizeAttributeValue(value string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(value), " ")
}

// SortAxes returns a copy of axes ordered by position, then key
func SortAxes(axes []Axis) []Axis {
	sorted := make([]Axis, len(axes))
	copy(sorted, axes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return NormalizeAxisKey(sorted[i].Key) < NormalizeAxisKey(sorted[j].Key)
	})
	return sorted
}

// ValidateAxes rejects more than MaxAxes axes and blank or repeated keys
func ValidateAxes(axes []Axis) error {
	var errs []error
	if len(axes) > MaxAxes {
		errs = append(errs, errors.Config("at most %d attribute axes are allowed, got %d", MaxAxes, len(axes)))
	}
	seen := make(map[string]bool, len(axes))
	for _, axis := range axes {
		key := NormalizeAxisKey(axis.Key)
		if key == "" {
			errs = append(errs, errors.Config("axis key %q is empty after normalization", axis.Key))
			continue
		}
		if seen[key] {
			errs = append(errs, errors.Config("duplicate axis %q", key))
		}
		seen[key] = true
	}
	return errors.Join(errs)
}

// normalizeMap re-keys raw by normalized axis key and drops blank values.
// Keys are visited in sorted order so colliding spellings resolve the same way every time.
func normalizeMap(raw map[string]string) Attributes {
	out := make(Attributes, len(raw))
	for _, key := range determinism.SortedKeys(raw) {
		k := NormalizeAxisKey(key)
		v := NormalizeAttributeValue(raw[key])
		if k == "" || v == "" {
			continue
		}
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// Canonicalize keeps the values of raw that belong to an axis, normalized.
// Missing or blank axes are omitted; that is an incomplete selection, not an error.
func Canonicalize(axes []Axis, raw map[string]string) Attributes {
	normalized := normalizeMap(raw)
	out := make(Attributes, len(axes))
	for _, axis := range SortAxes(axes) {
		key := NormalizeAxisKey(axis.Key)
		if v, ok := normalized[key]; ok {
			out[key] = v
		}
	}
	return out
}

// BuildCombinationKey joins every axis as key:value in position order with '|'.
// It returns DefaultCombinationKey when there are no axes or any axis is missing.
func BuildCombinationKey(axes []Axis, raw map[string]string) string {
	if len(axes) == 0 {
		return DefaultCombinationKey
	}
	canonical := Canonicalize(axes, raw)
	parts := make([]string, 0, len(axes))
	for _, axis := range SortAxes(axes) {
		key := NormalizeAxisKey(axis.Key)
		v, ok := canonical[key]
		if !ok {
			return DefaultCombinationKey
		}
		parts = append(parts, key+":"+v)
	}
	return strings.Join(parts, "|")
}

// BuildPartialCombinationKey is BuildCombinationKey that skips missing axes.
// With nothing selected it returns DefaultCombinationKey.
func BuildPartialCombinationKey(axes []Axis, raw map[string]string) string {
	canonical := Canonicalize(axes, raw)
	parts := make([]string, 0, len(canonical))
	for _, axis := range SortAxes(axes) {
		key := NormalizeAxisKey(axis.Key)
		if v, ok := canonical[key]; ok {
			parts = append(parts, key+":"+v)
		}
	}
	if len(parts) == 0 {
		return DefaultCombinationKey
	}
	return strings.Join(parts, "|")
}

// MatchesSelected reports whether every non-empty entry of selected equals the
// candidate's value for that key. Extra candidate attributes do not matter.
func MatchesSelected(selected, candidate map[string]string) bool {
	want := normalizeMap(selected)
	have := normalizeMap(candidate)
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

// SelectionModeOf classifies selected against axes
func SelectionModeOf(axes []Axis, selected map[string]string) SelectionMode {
	count := len(Canonicalize(axes, selected))
	switch {
	case count == 0:
		return SelectionNone
	case count < len(axes):
		return SelectionPartial
	default:
		return SelectionFull
	}
}
