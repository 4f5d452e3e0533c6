// Package duration converts rental durations between units.
// Minutes are the canonical unit; every billable span occupies at least one.
package duration

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Unit is a duration unit
type Unit string

const (
	Minute Unit = "minute"
	Hour   Unit = "hour"
	Day    Unit = "day"
	Week   Unit = "week"
)

// Minutes returns the number of minutes in one unit, 0 for unknown units
func (u Unit) Minutes() int64 {
	switch u {
	case Minute:
		return 1
	case Hour:
		return 60
	case Day:
		return 1440
	case Week:
		return 10080
	default:
		return 0
	}
}

// Valid reports whether u is a known unit
func (u Unit) Valid() bool {
	return u.Minutes() > 0
}

// IsPricingMode reports whether u can be a tiered product's pricing mode
func (u Unit) IsPricingMode() bool {
	return u == Hour || u == Day || u == Week
}

// String returns the singular unit name
func (u Unit) String() string {
	return string(u)
}

// MaxMinutes is the longest rental a request may ask for, one hundred years
const MaxMinutes int64 = 100 * 366 * 1440

// largestFirst is the search order for FromMinutes
var largestFirst = []Unit{Week, Day, Hour, Minute}

// ParseUnit accepts singular or plural unit names in any case
func ParseUnit(s string) (Unit, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	switch Unit(name) {
	case Minute, Hour, Day, Week:
		return Unit(name), nil
	case "min":
		return Minute, nil
	}
	return "", fmt.Errorf("unknown duration unit %q", s)
}

// ToMinutes converts amount units to whole minutes, rounding to the nearest
// minute and never returning less than one. Amounts too large for an int64,
// +Inf included, saturate at math.MaxInt64; NaN counts as no time at all.
func ToMinutes(amount float64, unit Unit) int64 {
	if math.IsNaN(amount) || amount <= 0 {
		return 1
	}
	if math.IsInf(amount, 1) {
		return math.MaxInt64
	}
	minutes := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromInt(unit.Minutes())).
		Round(0)
	if minutes.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return math.MaxInt64
	}
	if m := minutes.IntPart(); m >= 1 {
		return m
	}
	return 1
}

// FromMinutes expresses minutes in the largest unit that divides it evenly
func FromMinutes(minutes int64) (int64, Unit) {
	for _, u := range largestFirst {
		if minutes%u.Minutes() == 0 {
			return minutes / u.Minutes(), u
		}
	}
	return minutes, Minute
}

// CeilUnits converts minutes to whole units of unit. A partial unit bills as a full one.
func CeilUnits(minutes int64, unit Unit) int64 {
	per := unit.Minutes()
	if per <= 0 {
		return minutes
	}
	units := (minutes + per - 1) / per
	if units < 1 {
		return 1
	}
	return units
}

// CalculateDuration returns the elapsed time between start and end in whole
// units of mode, rounded up. The result is never below one.
func CalculateDuration(start, end time.Time, mode Unit) int64 {
	per := time.Duration(mode.Minutes()) * time.Minute
	if per <= 0 {
		per = time.Minute
	}
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 1
	}
	units := int64(elapsed / per)
	if elapsed%per != 0 {
		units++
	}
	if units < 1 {
		return 1
	}
	return units
}

// Label renders an amount of units such as "1 week" or "3 days"
func Label(amount int64, unit Unit) string {
	if amount == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", amount, unit)
}

// MinutesLabel renders minutes in their largest even unit
func MinutesLabel(minutes int64) string {
	return Label(FromMinutes(minutes))
}
